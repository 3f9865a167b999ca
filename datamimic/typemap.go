package datamimic

import "strings"

// Generator-type tokens understood by the DataMimic data generator.
// The vocabulary is closed; every native type maps to exactly one token.
const (
	TypeInt      = "int"
	TypeBigInt   = "bigint"
	TypeBool     = "bool"
	TypeString   = "string"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeFloat    = "float"
	TypeBinary   = "binary"
)

var postgresTypes = map[string]string{
	"integer": TypeInt,
	"int4":    TypeInt,

	"bigint": TypeBigInt,
	"int8":   TypeBigInt,

	"boolean": TypeBool,
	"bool":    TypeBool,

	"text":              TypeString,
	"varchar":           TypeString,
	"character varying": TypeString,

	"date": TypeDate,

	"timestamp":                   TypeDateTime,
	"timestamp without time zone": TypeDateTime,
}

var mysqlTypes = map[string]string{
	"int":     TypeInt,
	"integer": TypeInt,

	"bigint": TypeBigInt,

	// MySQL has no boolean type; tinyint is the conventional stand-in
	"tinyint": TypeBool,

	"varchar": TypeString,
	"text":    TypeString,
	"char":    TypeString,

	"date": TypeDate,

	"datetime":  TypeDateTime,
	"timestamp": TypeDateTime,
}

var sqliteTypes = map[string]string{
	"integer": TypeInt,
	"real":    TypeFloat,
	"text":    TypeString,
	"blob":    TypeBinary,
}

// MapType maps a native catalog type to a generator token. Both arguments
// are matched case-insensitively; "postgresql" is an alias for postgres.
// Unknown native types and unknown engine tags fall back to string.
func MapType(nativeType, engineTag string) string {
	var types map[string]string

	switch strings.ToLower(engineTag) {
	case "postgres", "postgresql":
		types = postgresTypes
	case "mysql":
		types = mysqlTypes
	case "sqlite":
		types = sqliteTypes
	default:
		return TypeString
	}

	if token, ok := types[strings.ToLower(nativeType)]; ok {
		return token
	}

	return TypeString
}
