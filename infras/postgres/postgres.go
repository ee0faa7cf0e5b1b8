package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"hotelops/config"
	"hotelops/shared/constant"
	"hotelops/shared/retry"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
)

const (
	defaultQueryTimeout = 3 * time.Second
	defaultMaxAttempts  = 3
)

// Executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type Executor interface {
	sqlx.ExtContext
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Transactor runs fn inside a single database transaction carried in ctx.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB

	queryTimeout time.Duration
	policy       retry.Policy
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:         CreatePostgresReadConn(*config),
		Write:        CreatePostgresWriteConn(*config),
		queryTimeout: queryTimeout(*config),
		policy:       retryPolicy(*config),
	}
}

func queryTimeout(config config.Config) time.Duration {
	if config.DB.Postgres.QueryTimeoutMs <= 0 {
		return defaultQueryTimeout
	}

	return time.Duration(config.DB.Postgres.QueryTimeoutMs) * time.Millisecond
}

func retryPolicy(config config.Config) retry.Policy {
	attempts := config.DB.Postgres.MaxAttempts
	if attempts == 0 {
		attempts = defaultMaxAttempts
	}

	return retry.Policy{MaxAttempts: attempts}
}

// TxFromContext returns the transaction opened by RunInTx, if any.
func TxFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(constant.ContextKeyTx).(*sqlx.Tx)

	return tx, ok && tx != nil
}

// Writer returns the open transaction or the primary pool.
func (c *Connection) Writer(ctx context.Context) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}

	return c.Write
}

// Reader returns the open transaction or the replica pool. Reads that must
// observe their own writes go through Writer instead.
func (c *Connection) Reader(ctx context.Context) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}

	return c.Read
}

// Do runs a single store call under the query timeout. Outside a transaction
// transient failures are retried; inside one the enclosing RunInTx retries the
// whole unit instead.
func (c *Connection) Do(ctx context.Context, op func(ctx context.Context) error) error {
	call := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout())
		defer cancel()

		return op(ctx)
	}

	if _, ok := TxFromContext(ctx); ok {
		return call(ctx)
	}

	return retry.Do(ctx, c.policy, call) //nolint:wrapcheck
}

// RunInTx executes fn in one transaction. A transaction already present in ctx
// is joined. Transient failures roll back and retry the entire unit.
func (c *Connection) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) error { //nolint:wrapcheck
		tx, err := c.Write.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		txCtx := context.WithValue(ctx, constant.ContextKeyTx, tx)

		if err := fn(txCtx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}

			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		return nil
	})
}

// IsErrorCode reports whether err carries the given postgres SQLSTATE.
func IsErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}

// ConstraintName returns the violated constraint, if any.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

func (c *Connection) timeout() time.Duration {
	if c.queryTimeout <= 0 {
		return defaultQueryTimeout
	}

	return c.queryTimeout
}

// getDBName returns the database name with prefix if configured
func getDBName(config config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// CreatePostgresWriteConn creates a database connection for write access.
func CreatePostgresWriteConn(config config.Config) *sqlx.DB {
	return CreatePostgresConnection(
		"write",
		config.DB.Postgres.Write.Username,
		config.DB.Postgres.Write.Password,
		config.DB.Postgres.Write.Host,
		config.DB.Postgres.Write.Port,
		getDBName(config, config.DB.Postgres.Write.Name),
		config.DB.Postgres.Write.SSLMode,
		config.DB.Postgres.MaxRetry,
		config.DB.Postgres.RetryWaitTime,
	)
}

// CreatePostgresReadConn creates a database connection for read access.
func CreatePostgresReadConn(config config.Config) *sqlx.DB {
	return CreatePostgresConnection(
		"read",
		config.DB.Postgres.Read.Username,
		config.DB.Postgres.Read.Password,
		config.DB.Postgres.Read.Host,
		config.DB.Postgres.Read.Port,
		getDBName(config, config.DB.Postgres.Read.Name),
		config.DB.Postgres.Read.SSLMode,
		config.DB.Postgres.MaxRetry,
		config.DB.Postgres.RetryWaitTime,
	)
}

// CreatePostgresConnection creates a database connection.
func CreatePostgresConnection(name, username, password, host, port, dbName, sslMode string, maxRetry, waitTime int) *sqlx.DB {
	descriptor := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		username,
		password,
		net.JoinHostPort(host, port),
		dbName,
		sslMode,
	)

	for attempt := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			log.
				Info().
				Str("name", name).
				Str("host", host).
				Str("port", port).
				Str("dbName", dbName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", name).
			Str("host", host).
			Str("dbName", dbName).
			Int("attempt", attempt+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	log.Fatal().Str("name", name).Str("host", host).Msg("Could not connect to database")

	return nil
}
