package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DIRECTORY_DSN"`
	Timeout time.Duration `envconfig:"DIRECTORY_TIMEOUT" default:"5s"`
	// Seed creates the table and inserts DefaultEntries on startup.
	Seed bool `envconfig:"DIRECTORY_SEED" default:"false"`
}

type credentialRow struct {
	bun.BaseModel `bun:"table:credential_directory,alias:cd"`

	Key       string    `bun:"credential_key,pk"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Postgres reads directory entries from the credential_directory table.
// The gateway only ever reads; Seed exists for provisioning.
type Postgres struct {
	db      *bun.DB
	timeout time.Duration
}

var _ contractx.Directory = (*Postgres)(nil)

func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("directory dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return &Postgres{
		db:      bun.NewDB(sqldb, pgdialect.New()),
		timeout: timeout,
	}, nil
}

func (p *Postgres) Contains(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ok, err := p.db.NewSelect().
		Model((*credentialRow)(nil)).
		Where("credential_key = ?", key).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", contractx.ErrDirectory, err)
	}
	return ok, nil
}

// Seed creates the table if needed and inserts keys, skipping existing ones.
func (p *Postgres) Seed(ctx context.Context, keys ...string) error {
	if _, err := p.db.NewCreateTable().
		Model((*credentialRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create directory table: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	rows := make([]credentialRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, credentialRow{Key: k})
	}
	if _, err := p.db.NewInsert().
		Model(&rows).
		On("CONFLICT (credential_key) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("seed directory: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrDirectory, err)
	}
	return nil
}

// Ready lets the directory take part in readiness checks.
func (p *Postgres) Ready(ctx context.Context) error {
	return p.Ping(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
