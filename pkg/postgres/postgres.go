package postgres

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const driverName = "pgx"

type DB struct {
	Host            string        `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port            string        `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username        string        `yaml:"user" envconfig:"DB_USER" default:"postgres"`
	Password        string        `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB          string        `yaml:"dbname" envconfig:"DB_NAME" default:"library"`
	SSLMode         string        `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `yaml:"maxOpenConns" envconfig:"DB_MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns    int           `yaml:"maxIdleConns" envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime" envconfig:"DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

func (cfg *DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.NameDB,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// NewPostgresDB opens the pool, checks the connection and applies
// the embedded migrations when migrationFiles is not nil.
func NewPostgresDB(ctx context.Context, cfg *DB, migrationFiles *embed.FS) (*sqlx.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if migrationFiles != nil {
		if err := MigrateUp(db, migrationFiles); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func Open(ctx context.Context, cfg *DB) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Open")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "db.PingContext")
	}
	return db, nil
}

func MigrateUp(db *sqlx.DB, migrationFiles *embed.FS) error {
	if err := setupGoose(migrationFiles); err != nil {
		return err
	}
	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("goose.Up: %w", err)
	}
	return nil
}

func MigrateDown(db *sqlx.DB, migrationFiles *embed.FS) error {
	if err := setupGoose(migrationFiles); err != nil {
		return err
	}
	if err := goose.Down(db.DB, "."); err != nil {
		return fmt.Errorf("goose.Down: %w", err)
	}
	return nil
}

func MigrateStatus(db *sqlx.DB, migrationFiles *embed.FS) error {
	if err := setupGoose(migrationFiles); err != nil {
		return err
	}
	return goose.Status(db.DB, ".")
}

func setupGoose(migrationFiles *embed.FS) error {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose.SetDialect: %w", err)
	}
	return nil
}
