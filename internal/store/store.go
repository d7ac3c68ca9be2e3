package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres through database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver accepts the config spelling of a driver. Empty means sqlite.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("unsupported store driver %q", s)
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sql.DB
	driver  Driver
	dialect string
	seq     *sequenceCounter
}

// Open connects to dsn with the given driver, applies SQLite pragmas and
// migrates the schema.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var (
		drvName string
		dia     string
	)
	switch driver {
	case DriverSQLite:
		drvName, dia = "sqlite", dialect.SQLite
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
		drvName, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, dia, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, driver: driver, dialect: dia, seq: seq}, nil
}

// OpenSQLite is Open for a SQLite file path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	return Open(ctx, DriverSQLite, path)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports which backend the store talks to.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{store: s}
}

// HistoryRepo returns the history table.
func (s *Store) HistoryRepo() HistoryRepo {
	return &historyRepo{store: s}
}

// SettingsRepo returns the key-value settings table.
func (s *Store) SettingsRepo() SettingsRepo {
	return &settingsRepo{store: s}
}

// builder returns a dialect-aware SQL builder for this store.
func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// migrate creates or upgrades the tables in schema.go.
func migrate(ctx context.Context, dia string, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dia, db))
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// sqlitePragmas are applied by the driver on every new connection, so the
// whole pool shares them.
var sqlitePragmas = []string{
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=synchronous(NORMAL)",
}

// sqliteDSN turns a bare path into a file URI carrying the pragmas. A DSN
// that already sets pragmas is left alone.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(sqlitePragmas, "&")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. KNOWFLOW_DB environment variable
// 2. $XDG_DATA_HOME/knowflow/knowflow.db
// 3. ~/.local/share/knowflow/knowflow.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("KNOWFLOW_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "knowflow", "knowflow.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
