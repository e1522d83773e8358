package tvp

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// DefaultSchema is the schema qualifier applied when Naming.Schema is empty.
// The trailing dot is part of the value.
const DefaultSchema = "dbo."

// Naming holds the process-wide naming conventions used when deriving table
// type and procedure names. The zero value uses the defaults: schema "dbo.",
// no prefix. Set it once at startup; it is read at registration time only and
// carries no guard against concurrent mutation.
type Naming struct {
	// Schema qualifies derived names, trailing dot included, e.g. "sales.".
	Schema string
	// Prefix is inserted between schema and type name, e.g. "TT_".
	Prefix string
}

func (n Naming) schema() string {
	if n.Schema == "" {
		return DefaultSchema
	}
	return n.Schema
}

// TableTypeName derives the table type name for a record type:
// <schema><prefix><TypeName>, e.g. dbo.Contact.
func (n Naming) TableTypeName(t reflect.Type) string {
	return n.schema() + n.Prefix + t.Name()
}

// ProcedureName derives the default procedure name for a record type:
// <schema>Save<TypeName, pluralized>, e.g. dbo.SaveContacts.
func (n Naming) ProcedureName(t reflect.Type) string {
	return n.schema() + "Save" + Pluralize(t.Name())
}

// NamingFromViper reads naming configuration from the keys "tvp.schema" and
// "tvp.prefix". Missing keys fall back to the convention defaults.
func NamingFromViper(v *viper.Viper) Naming {
	return Naming{
		Schema: v.GetString("tvp.schema"),
		Prefix: v.GetString("tvp.prefix"),
	}
}

// Pluralize forms the plural used by the Save<Type>s procedure convention.
func Pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "z"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !isVowel(s[len(s)-2]):
		return s[:len(s)-1] + "ies"
	default:
		return s + "s"
	}
}

func isVowel(c byte) bool {
	switch c | 0x20 {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
