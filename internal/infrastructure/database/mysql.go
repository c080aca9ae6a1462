package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/HARIPRASAD-2003/form-builder/internal/config"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
)

const tlsConfigName = "formstore"

// tlsOnce ensures the TLS config is registered only once
var tlsOnce sync.Once

// Connection wraps the MySQL/TiDB pool backing the form store.
// sql.DB is already safe for concurrent use, so no extra locking is added.
type Connection struct {
	db *sql.DB
}

// NewConnection wraps an existing pool (used by tests with sqlmock)
func NewConnection(db *sql.DB) *Connection {
	return &Connection{db: db}
}

// Open connects to MySQL/TiDB and verifies the connection
func Open(ctx context.Context, cfg config.DBConfig) (*Connection, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Keep idle equal to open connections to avoid reconnect churn
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// DSN builds the driver DSN. Remote hosts use TLS with server name
// verification; localhost connects in plain text.
func DSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}

	if cfg.Host != "" && cfg.Host != "127.0.0.1" && cfg.Host != "localhost" {
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig(tlsConfigName, &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: cfg.Host,
			}); err != nil {
				log.Printf("⚠️  Failed to register TLS config: %v", err)
			}
		})
		mc.TLSConfig = tlsConfigName
	}
	return mc.FormatDSN()
}

// createFormsTable is the DDL of the form store
var createFormsTable = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s VARCHAR(36) NOT NULL PRIMARY KEY,
	%s VARCHAR(255) NOT NULL,
	%s TEXT,
	%s VARCHAR(64) NOT NULL,
	%s JSON NOT NULL,
	%s DATETIME(6) NOT NULL,
	%s DATETIME(6) NOT NULL,
	INDEX idx_form_owner (%s)
)`,
	constants.TableForms,
	constants.ColumnID,
	constants.ColumnName,
	constants.ColumnDescription,
	constants.ColumnOwnerID,
	constants.ColumnFields,
	constants.ColumnCreatedAt,
	constants.ColumnUpdatedAt,
	constants.ColumnOwnerID,
)

// EnsureSchema creates the form store table when missing
func (c *Connection) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createFormsTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", constants.TableForms, err)
	}
	return nil
}

// DB returns the underlying *sql.DB connection
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
