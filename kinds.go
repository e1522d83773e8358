package tvp

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies the SQL Server parameter type a value is sent as.
type Kind int

const (
	// KindString maps to NVARCHAR(MAX)
	KindString Kind = iota
	// KindUniqueIdentifier maps to UNIQUEIDENTIFIER
	KindUniqueIdentifier
	// KindInt64 maps to BIGINT
	KindInt64
	// KindBytes maps to VARBINARY(MAX)
	KindBytes
	// KindBool maps to BIT
	KindBool
	// KindDateTime maps to DATETIME2
	KindDateTime
	// KindDecimal maps to DECIMAL(38,18)
	KindDecimal
	// KindFloat64 maps to FLOAT
	KindFloat64
	// KindInt32 maps to INT
	KindInt32
	// KindFloat32 maps to REAL
	KindFloat32
	// KindInt16 maps to SMALLINT
	KindInt16
	// KindByte maps to TINYINT
	KindByte
	// KindVariant maps to SQL_VARIANT
	KindVariant
	// KindTable is a nested table-valued parameter
	KindTable
	// KindDateTimeOffset maps to DATETIMEOFFSET
	KindDateTimeOffset
)

// DateTimeOffset marks a column as DATETIMEOFFSET rather than DATETIME2.
// Values are sent as the underlying time.Time, offset included.
type DateTimeOffset time.Time

var (
	int32Type          = reflect.TypeOf(int32(0))
	dateTimeOffsetType = reflect.TypeOf(DateTimeOffset{})
)

// kindByType is the fixed scalar kind table. Types outside it are not sent to
// the server, with the single exception of the integer coercion rule in
// KindFor.
var kindByType = map[reflect.Type]Kind{
	reflect.TypeOf(""):                 KindString,
	reflect.TypeOf(uuid.UUID{}):        KindUniqueIdentifier,
	reflect.TypeOf(int64(0)):           KindInt64,
	reflect.TypeOf([]byte(nil)):        KindBytes,
	reflect.TypeOf(false):              KindBool,
	reflect.TypeOf(time.Time{}):        KindDateTime,
	reflect.TypeOf(decimal.Decimal{}):  KindDecimal,
	reflect.TypeOf(float64(0)):         KindFloat64,
	int32Type:                          KindInt32,
	reflect.TypeOf(float32(0)):         KindFloat32,
	reflect.TypeOf(int16(0)):           KindInt16,
	reflect.TypeOf(byte(0)):            KindByte,
	reflect.TypeOf((*any)(nil)).Elem(): KindVariant,
	reflect.TypeOf((*Rows)(nil)):       KindTable,
	dateTimeOffsetType:                 KindDateTimeOffset,
}

// KindFor returns the SQL parameter kind for a Go type. Types absent from the
// fixed table fail with an UnsupportedTypeError, except that named integer
// types (Go's enum idiom) coerce to KindInt32 and are sent as their 32-bit
// value.
func KindFor(t reflect.Type) (Kind, error) {
	if t == nil {
		return 0, ErrNilType
	}
	if k, ok := kindByType[t]; ok {
		return k, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt32, nil
	}
	return 0, &UnsupportedTypeError{Type: t}
}

// String returns the kind's name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUniqueIdentifier:
		return "uniqueidentifier"
	case KindInt64:
		return "int64"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindDecimal:
		return "decimal"
	case KindFloat64:
		return "float64"
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindInt16:
		return "int16"
	case KindByte:
		return "byte"
	case KindVariant:
		return "variant"
	case KindTable:
		return "table"
	case KindDateTimeOffset:
		return "datetimeoffset"
	default:
		return "unknown"
	}
}

// SQLType returns the SQL Server column type used when declaring a column of
// this kind in a table type.
func (k Kind) SQLType() (string, error) {
	switch k {
	case KindString:
		return "NVARCHAR(MAX)", nil
	case KindUniqueIdentifier:
		return "UNIQUEIDENTIFIER", nil
	case KindInt64:
		return "BIGINT", nil
	case KindBytes:
		return "VARBINARY(MAX)", nil
	case KindBool:
		return "BIT", nil
	case KindDateTime:
		return "DATETIME2", nil
	case KindDecimal:
		return "DECIMAL(38,18)", nil
	case KindFloat64:
		return "FLOAT", nil
	case KindInt32:
		return "INT", nil
	case KindFloat32:
		return "REAL", nil
	case KindInt16:
		return "SMALLINT", nil
	case KindByte:
		return "TINYINT", nil
	case KindVariant:
		return "SQL_VARIANT", nil
	case KindDateTimeOffset:
		return "DATETIMEOFFSET", nil
	case KindTable:
		return "", errors.New("table-valued columns cannot be nested in a table type")
	default:
		return "", fmt.Errorf("unknown kind %d", int(k))
	}
}
