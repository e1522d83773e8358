package tvp

import (
	"fmt"
	"strings"
)

// TableTypeDDL renders the CREATE TYPE statement matching a table schema, so
// the server-side table type a registration assumes can be created from the
// same column derivation the invocations use.
func TableTypeDDL(ts *TableSchema) (string, error) {
	if ts == nil || len(ts.Columns) == 0 {
		return "", fmt.Errorf("tvp: table schema has no columns")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TYPE %s AS TABLE (\n", ts.TypeName)
	for i, c := range ts.Columns {
		sqlType, err := c.Kind.SQLType()
		if err != nil {
			return "", fmt.Errorf("tvp: column %s: %w", c.Name, err)
		}
		fmt.Fprintf(&b, "  [%s] %s", c.Name, sqlType)
		if i < len(ts.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String(), nil
}
