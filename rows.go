package tvp

import (
	"reflect"
)

// Rows is the wire-ready form of one table-valued argument: the table type
// name, the column layout, and one value row per record in input order.
// Records keeps the original slice for drivers that prefer to walk the
// source values themselves (see the mssql subpackage).
type Rows struct {
	TypeName string
	Columns  []Column
	Data     [][]any
	Records  any
}

// Len returns the number of rows.
func (rs *Rows) Len() int { return len(rs.Data) }

// Convert turns a record slice into the schema's tabular payload. The
// argument must be a slice whose element type is assignable to the schema's
// record type. Input iteration order is preserved exactly; there is no row
// limit, dedup, or sorting. An empty slice yields zero rows with the full
// column list.
func (ts *TableSchema) Convert(records any) (*Rows, error) {
	rv := reflect.ValueOf(records)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || !rv.Type().Elem().AssignableTo(ts.GoType) {
		got := "untyped nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return nil, &TypeMismatchError{Want: "[]" + ts.GoType.String(), Got: got}
	}

	data := make([][]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		rec := rv.Index(i)
		row := make([]any, len(ts.Columns))
		for j, c := range ts.Columns {
			row[j] = c.Value(rec)
		}
		data[i] = row
	}
	return &Rows{TypeName: ts.TypeName, Columns: ts.Columns, Data: data, Records: records}, nil
}
