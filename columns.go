package tvp

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Column describes one column of a table type: its SQL name, parameter kind,
// and the struct field it is read from.
type Column struct {
	Name string
	Kind Kind

	index int
	typ   reflect.Type
}

// Value extracts the column's value from one record.
func (c Column) Value(rec reflect.Value) any {
	fv := rec.Field(c.index)
	if c.Kind == KindInt32 && c.typ != int32Type {
		// named integer types are sent as their 32-bit value
		if fv.CanInt() {
			return int32(fv.Int())
		}
		return int32(fv.Uint())
	}
	if c.typ == dateTimeOffsetType {
		return time.Time(fv.Interface().(DateTimeOffset))
	}
	return fv.Interface()
}

// resolveColumns derives the ordered column set for a record type: exported
// fields in declaration order, skipping collection-valued fields (they have
// no flat tabular representation; []byte and string stay, they are scalars on
// the wire) and fields tagged `tvp:"-"`. A `tvp:"name"` tag renames a column.
func resolveColumns(t reflect.Type) ([]Column, error) {
	if t == nil {
		return nil, fmt.Errorf("tvp: resolve columns: %w", ErrNilType)
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tvp: %s is not a struct type", t)
	}

	cols := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("tvp")
		if tag == "-" {
			continue
		}
		if _, fixed := kindByType[f.Type]; !fixed {
			// uuid.UUID is an array and []byte a slice; both sit in the
			// fixed table and are checked above before being skipped here
			switch f.Type.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan, reflect.Func:
				continue
			}
		}

		kind, err := KindFor(f.Type)
		if err != nil {
			return nil, fmt.Errorf("tvp: field %s.%s: %w", t.Name(), f.Name, err)
		}

		name := f.Name
		if tag != "" {
			name, _, _ = strings.Cut(tag, ",")
		}
		cols = append(cols, Column{Name: name, Kind: kind, index: i, typ: f.Type})
	}
	return cols, nil
}
