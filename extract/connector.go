package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/datamimic/metaextractor"
)

// Connector opens database handles from URL-form connection strings
// (postgres://..., mysql://..., sqlite://...).
type Connector struct {
	poolSettings PoolSettings
}

// PoolSettings defines connection pool configuration.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// ConnectionInfo contains parsed database connection information.
type ConnectionInfo struct {
	Engine   metaextractor.Engine
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Options  map[string]string
}

// NewConnector creates a connector with default pool settings.
func NewConnector() *Connector {
	return &Connector{
		poolSettings: PoolSettings{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 300, // 5 minutes
		},
	}
}

// SetPoolSettings configures connection pool settings.
func (c *Connector) SetPoolSettings(settings PoolSettings) {
	c.poolSettings = settings
}

// GetPoolSettings returns current connection pool settings.
func (c *Connector) GetPoolSettings() PoolSettings {
	return c.poolSettings
}

// EngineFromURL extracts the database engine from a connection URL.
func (c *Connector) EngineFromURL(databaseURL string) (metaextractor.Engine, error) {
	if databaseURL == "" {
		return "", ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", ErrInvalidDatabaseURL
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return metaextractor.EnginePostgres, nil
	case "mysql":
		return metaextractor.EngineMySQL, nil
	case "sqlite", "sqlite3":
		return metaextractor.EngineSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", metaextractor.ErrUnsupportedEngine, u.Scheme)
	}
}

// ValidateURL validates the format of a database connection string.
func (c *Connector) ValidateURL(databaseURL string) error {
	if databaseURL == "" {
		return ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return ErrInvalidDatabaseURL
	}

	switch u.Scheme {
	case "postgres", "postgresql", "mysql":
		if u.Host == "" {
			return ErrInvalidDatabaseURL
		}

		if strings.TrimPrefix(u.Path, "/") == "" {
			return ErrInvalidDatabaseURL
		}

		return nil
	case "sqlite", "sqlite3":
		if u.Path == "" && u.Host == "" {
			return ErrInvalidDatabaseURL
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", metaextractor.ErrUnsupportedEngine, u.Scheme)
	}
}

// Connect validates the URL and opens a database handle with the
// configured pool settings. The handle is not pinged yet.
func (c *Connector) Connect(databaseURL string) (*sql.DB, error) {
	if err := c.ValidateURL(databaseURL); err != nil {
		return nil, err
	}

	engine, err := c.EngineFromURL(databaseURL)
	if err != nil {
		return nil, err
	}

	connStr, err := c.driverString(databaseURL, engine)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName(engine), connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(c.poolSettings.MaxOpenConns)
	db.SetMaxIdleConns(c.poolSettings.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(c.poolSettings.ConnMaxLifetime) * time.Second)

	return db, nil
}

// Ping verifies the database connection is usable.
func (c *Connector) Ping(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrConnectionFailed
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return nil
}

// Close closes a database handle.
func (c *Connector) Close(db *sql.DB) error {
	if db == nil {
		return nil
	}

	return db.Close()
}

// ParseConnectionInfo parses a database URL into connection information.
func (c *Connector) ParseConnectionInfo(databaseURL string) (ConnectionInfo, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ConnectionInfo{}, ErrInvalidDatabaseURL
	}

	info := ConnectionInfo{
		Options: make(map[string]string),
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		info.Engine = metaextractor.EnginePostgres
		info.Host = u.Hostname()

		info.Port = u.Port()
		if info.Port == "" {
			info.Port = "5432"
		}
	case "mysql":
		info.Engine = metaextractor.EngineMySQL
		info.Host = u.Hostname()

		info.Port = u.Port()
		if info.Port == "" {
			info.Port = "3306"
		}
	case "sqlite", "sqlite3":
		info.Engine = metaextractor.EngineSQLite
		if u.Host == "" {
			// sqlite:///path/to/db.db format
			info.Database = u.Path
		} else {
			// sqlite://./db.db format
			info.Database = u.Host + u.Path
		}
	default:
		return ConnectionInfo{}, fmt.Errorf("%w: %s", metaextractor.ErrUnsupportedEngine, u.Scheme)
	}

	if info.Engine != metaextractor.EngineSQLite {
		info.Database = strings.TrimPrefix(u.Path, "/")

		if u.User != nil {
			info.Username = u.User.Username()
			if password, ok := u.User.Password(); ok {
				info.Password = password
			}
		}
	}

	for key, values := range u.Query() {
		if len(values) > 0 {
			info.Options[key] = values[0]
		}
	}

	return info, nil
}

// BuildConnectionString assembles the URL form used across the tool from
// connection parameters. Credentials are inserted as-is, without percent
// encoding. The trailing /database is omitted when the database is empty.
func BuildConnectionString(info ConnectionInfo) string {
	switch info.Engine {
	case metaextractor.EngineSQLite:
		return fmt.Sprintf("sqlite://%s", info.Database)
	case metaextractor.EnginePostgres, metaextractor.EngineMySQL:
		s := fmt.Sprintf("%s://%s:%s@%s:%s",
			info.Engine, info.Username, info.Password, info.Host, info.Port)
		if info.Database != "" {
			s += "/" + info.Database
		}

		return s
	default:
		return ""
	}
}

func (c *Connector) driverString(databaseURL string, engine metaextractor.Engine) (string, error) {
	info, err := c.ParseConnectionInfo(databaseURL)
	if err != nil {
		return "", err
	}

	switch engine {
	case metaextractor.EnginePostgres:
		// pgx accepts the URL form directly; default sslmode to disable
		// so local extraction works without TLS setup
		if info.Host == "" || info.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		connStr := databaseURL
		if !strings.Contains(connStr, "sslmode=") {
			if strings.Contains(connStr, "?") {
				connStr += "&sslmode=disable"
			} else {
				connStr += "?sslmode=disable"
			}
		}

		return connStr, nil

	case metaextractor.EngineMySQL:
		// go-sql-driver DSN: user:pass@tcp(host:port)/dbname
		var b strings.Builder

		if info.Username != "" {
			b.WriteString(info.Username)

			if info.Password != "" {
				b.WriteString(":")
				b.WriteString(info.Password)
			}

			b.WriteString("@")
		}

		if info.Host != "" {
			b.WriteString("tcp(")
			b.WriteString(info.Host)

			if info.Port != "" {
				b.WriteString(":")
				b.WriteString(info.Port)
			}

			b.WriteString(")")
		}

		b.WriteString("/")
		b.WriteString(info.Database)

		return b.String(), nil

	case metaextractor.EngineSQLite:
		// the driver takes the file path directly
		return info.Database, nil

	default:
		return "", fmt.Errorf("%w: %s", metaextractor.ErrUnsupportedEngine, engine)
	}
}

func driverName(engine metaextractor.Engine) string {
	switch engine {
	case metaextractor.EnginePostgres:
		return "pgx"
	case metaextractor.EngineMySQL:
		return "mysql"
	case metaextractor.EngineSQLite:
		return "sqlite3"
	default:
		return ""
	}
}
