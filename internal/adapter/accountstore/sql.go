package accountstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	// blank import для драйвера SQL Server
	_ "github.com/denisenkom/go-mssqldb"
	// blank import для драйвера SQLite (pure Go, без cgo)
	_ "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Kargones/authgate/internal/pkg/apperrors"
	"github.com/Kargones/authgate/internal/pkg/urlutil"
)

// Поддерживаемые драйверы database/sql.
const (
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
)

// Номера ошибок SQL Server для нарушения уникальности.
const (
	mssqlUniqueConstraint = 2627
	mssqlUniqueIndex      = 2601
)

// Compile-time проверка реализации интерфейса
var _ Store = (*SQLStore)(nil)

// Options содержит параметры подключения.
type Options struct {
	// Driver: DriverSQLite или DriverSQLServer.
	Driver string
	// DSN: строка подключения драйвера.
	DSN string
	// MaxOpenConns: ограничение пула; 0: без ограничения.
	MaxOpenConns int
}

// dialect описывает различия SQL между драйверами.
type dialect struct {
	name        string
	createTable string
	numbered    bool // плейсхолдеры @p1..@pN вместо ?
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name: DriverSQLite,
		createTable: `CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash BLOB NOT NULL,
	created_at    TIMESTAMP NOT NULL
)`,
	},
	DriverSQLServer: {
		name: DriverSQLServer,
		createTable: `IF OBJECT_ID(N'dbo.accounts', N'U') IS NULL
CREATE TABLE dbo.accounts (
	id            NVARCHAR(36)  NOT NULL PRIMARY KEY,
	email         NVARCHAR(254) NOT NULL UNIQUE,
	name          NVARCHAR(100) NOT NULL,
	password_hash VARBINARY(100) NOT NULL,
	created_at    DATETIME2     NOT NULL
)`,
		numbered: true,
	},
}

// rebind заменяет ? на @pN для диалектов с нумерованными параметрами.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("@p")
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const (
	insertAccountSQL = `INSERT INTO accounts (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	selectByEmailSQL = `SELECT id, email, name, password_hash, created_at FROM accounts WHERE email = ?`
)

// SQLStore: реализация Store поверх database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// Open открывает соединение и проверяет его через Ping.
// DSN в тексте ошибок маскируется.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	if _, ok := dialects[opts.Driver]; !ok {
		return nil, fmt.Errorf("%s: unsupported driver %q", apperrors.ErrStoreQuery, opts.Driver)
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %s", apperrors.ErrStoreQuery,
			urlutil.MaskDSN(opts.DSN), urlutil.MaskSecret(err.Error(), opts.DSN))
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // исходная ошибка важнее
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: context cancelled during ping: %w", apperrors.ErrStoreQuery, ctx.Err())
		}
		return nil, fmt.Errorf("%s: ping %s: %w", apperrors.ErrStoreQuery, urlutil.MaskDSN(opts.DSN), err)
	}

	return NewSQLStore(db, opts.Driver)
}

// NewSQLStore оборачивает готовый *sql.DB (используется в тестах со sqlmock).
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported driver %q", apperrors.ErrStoreQuery, driver)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// Migrate создаёт таблицу accounts, если её нет. Повторный вызов безопасен.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("%s: migrate: %w", apperrors.ErrStoreQuery, err)
	}
	return nil
}

// Create сохраняет учётную запись.
func (s *SQLStore) Create(ctx context.Context, account *Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.dialect.rebind(insertAccountSQL),
		account.ID,
		account.Email,
		account.Name,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("%s: insert account: %w", apperrors.ErrStoreQuery, err)
	}
	return nil
}

// FindByEmail ищет учётную запись по нормализованному email.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(selectByEmailSQL), email)

	var a Account
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: select account: %w", apperrors.ErrStoreQuery, err)
	}
	return &a, nil
}

// Ping проверяет доступность базы (для /healthz).
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", apperrors.ErrStoreQuery, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// sqliteCoded: ошибка modernc.org/sqlite.
type sqliteCoded interface {
	Code() int
}

// mssqlNumbered: ошибка go-mssqldb.
type mssqlNumbered interface {
	SQLErrorNumber() int32
}

// isUniqueViolation распознаёт нарушение уникальности в обоих драйверах.
func isUniqueViolation(err error) bool {
	var me mssqlNumbered
	if errors.As(err, &me) {
		n := me.SQLErrorNumber()
		return n == mssqlUniqueConstraint || n == mssqlUniqueIndex
	}

	var se sqliteCoded
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	// Без extended result codes sqlite сообщает только SQLITE_CONSTRAINT.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
