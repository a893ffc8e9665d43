package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/pkg/jdbc"
	"github.com/datazip-inc/dskit/utils/logger"
)

// Connection owns a single MySQL session. Calls are blocking and must not be
// issued concurrently.
type Connection struct {
	config *Config
	client *sqlx.DB
}

// Connect opens and verifies a connection limited to one session
func Connect(ctx context.Context, config *Config) (*Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %s", err)
	}

	uri, err := config.URI()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection uri: %s", err)
	}

	client, err := sqlx.Open("mysql", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", err)
	}
	// a single connection keeps session state such as autocommit consistent
	client.SetMaxOpenConns(1)
	client.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultConnectTimeout)
	defer cancel()
	if err := client.PingContext(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping database: %s", err)
	}

	if flavor, major, minor, err := jdbc.MySQLVersion(ctx, client); err != nil {
		logger.Warnf("failed to detect server version: %s", err)
	} else {
		logger.Debugf("connected to %s %d.%d at %s:%d", flavor, major, minor, config.Host, config.Port)
	}

	return &Connection{config: config, client: client}, nil
}

// NewConnection wraps an already opened handle
func NewConnection(client *sqlx.DB) *Connection {
	return &Connection{client: client}
}

// Table returns a handle on name keyed by primaryKey; an empty key means "id"
func (c *Connection) Table(name, primaryKey string) *Table {
	if primaryKey == "" {
		primaryKey = constants.MySQLDefaultPrimaryKey
	}
	return &Table{
		client:     c.client,
		name:       name,
		primaryKey: primaryKey,
	}
}

// Commit commits the open session transaction when autocommit is disabled
func (c *Connection) Commit(ctx context.Context) error {
	if _, err := c.client.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit: %s", err)
	}
	return nil
}

// Client exposes the underlying handle
func (c *Connection) Client() *sqlx.DB {
	return c.client
}

// Close releases the session
func (c *Connection) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// isMissingTable reports whether err is MySQL's "table doesn't exist" (1146)
func isMissingTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1146
}
