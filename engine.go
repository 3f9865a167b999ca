package metaextractor

import (
	"fmt"
	"strings"
)

// Engine identifies a supported database engine.
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
	EngineMySQL    Engine = "mysql"
)

// ParseEngine normalizes an engine tag. Matching is case-insensitive;
// "postgresql" is an alias for postgres and "mariadb" for mysql.
func ParseEngine(tag string) (Engine, error) {
	switch strings.ToLower(tag) {
	case "sqlite":
		return EngineSQLite, nil
	case "postgres", "postgresql":
		return EnginePostgres, nil
	case "mysql", "mariadb":
		return EngineMySQL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEngine, tag)
	}
}
