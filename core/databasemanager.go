package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelSilent:
		return logger.Silent
	default:
		return logger.Info
	}
}

type Options struct {
	Driver         string
	DSN            string
	MaxConnections int
	LogLevel       LogLevel
}

type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel
	driver   string
	dsn      string
}

func sqlDriverName(driver string) string {
	if driver == DriverPostgres {
		// registered by the pgx stdlib package the gorm postgres driver imports
		return "pgx"
	}
	return "mysql"
}

// New creates the global pool (e.g. 30 conns).
// For mysql the dsn may omit the schema; the tenant is selected per connection.
func New(opts Options) (*DatabaseManager, error) {
	if opts.Driver == "" {
		opts.Driver = DriverMySQL
	}
	if opts.Driver != DriverMySQL && opts.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = 10
	}

	sqlDB, err := sql.Open(sqlDriverName(opts.Driver), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(opts.MaxConnections)
	sqlDB.SetMaxIdleConns(opts.MaxConnections)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB, LogLevel: opts.LogLevel, driver: opts.Driver, dsn: opts.DSN}, nil
}

func (dm *DatabaseManager) Driver() string {
	return dm.driver
}

// Schema is the tenant schema GetDB switches to for host.
func (dm *DatabaseManager) Schema(host string) string {
	return ResolveSchema(host, dm.driver, dm.dsn)
}

// ResolveSchema maps a request host to a tenant schema:
// "ccs.ojt.example.net" -> "ccs", "localhost" -> the schema named in the DSN.
func ResolveSchema(host, driver, dsn string) string {
	if host == "localhost" || host == "127.0.0.1" || host == "" {
		return schemaFromDSN(driver, dsn)
	}
	parts := strings.Split(host, ".")
	return parts[0]
}

func schemaFromDSN(driver, dsn string) string {
	if driver == DriverPostgres {
		for _, kv := range strings.Fields(dsn) {
			if v, ok := strings.CutPrefix(kv, "search_path="); ok {
				return v
			}
		}
		return "public"
	}

	// Split on "?" to remove query params
	parts := strings.SplitN(dsn, "?", 2)
	segments := strings.Split(parts[0], "/")
	return segments[len(segments)-1]
}

func quoteIdent(driver, name string) string {
	if driver == DriverPostgres {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// GetDB gets a *gorm.DB bound to a single connection
// and switches it to the tenant schema for host.
func (dm *DatabaseManager) GetDB(ctx context.Context, host string) (*gorm.DB, *sql.Conn, error) {
	schema := ResolveSchema(host, dm.driver, dm.dsn)
	if schema == "" {
		return nil, nil, fmt.Errorf("no schema for host %q", host)
	}

	// Get a dedicated connection from pool
	conn, err := dm.SqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conn: %w", err)
	}

	var dialector gorm.Dialector
	switch dm.driver {
	case DriverPostgres:
		_, err = conn.ExecContext(ctx, "SET search_path TO "+quoteIdent(dm.driver, schema))
		dialector = postgres.New(postgres.Config{Conn: conn})
	default:
		_, err = conn.ExecContext(ctx, "USE "+quoteIdent(dm.driver, schema))
		dialector = mysql.New(mysql.Config{Conn: conn})
	}
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to use schema %s: %w", schema, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(dm.LogLevel.gorm()),
		TranslateError: true,
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db, conn, nil
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}

func (dm *DatabaseManager) Exec(ctx context.Context, host string, fn func(db *gorm.DB) error) error {
	db, conn, err := dm.GetDB(ctx, host)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(db)
}

// GetAllDatabases lists the tenant schemas on the server.
func (dm *DatabaseManager) GetAllDatabases(ctx context.Context) ([]string, error) {
	query := "SHOW DATABASES"
	if dm.driver == DriverPostgres {
		query = "SELECT schema_name FROM information_schema.schemata"
	}
	rows, err := dm.SqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var db string
		if err := rows.Scan(&db); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		if isSystemSchema(db) {
			continue
		}
		databases = append(databases, db)
	}

	return databases, rows.Err()
}

func isSystemSchema(name string) bool {
	switch name {
	case "information_schema", "mysql", "performance_schema", "sys":
		return true
	}
	return strings.HasPrefix(name, "pg_")
}

// The process-wide manager is opened on first use and closed at shutdown.
// defaultMu guards all of it. A failed open is not cached.
var (
	defaultMu   sync.Mutex
	defaultOpts *Options
	defaultDM   *DatabaseManager
)

var ErrNotConfigured = errors.New("database manager is not configured")

// Configure records the options Default will open the pool with.
func Configure(opts Options) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultOpts = &opts
}

func Default() (*DatabaseManager, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDM != nil {
		return defaultDM, nil
	}
	if defaultOpts == nil {
		return nil, ErrNotConfigured
	}
	dm, err := New(*defaultOpts)
	if err != nil {
		return nil, err
	}
	defaultDM = dm
	return defaultDM, nil
}

// Shutdown closes the process-wide pool if it was opened.
func Shutdown() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	var err error
	if defaultDM != nil {
		err = defaultDM.Close()
	}
	defaultOpts = nil
	defaultDM = nil
	return err
}
