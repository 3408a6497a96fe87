package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type DBOptions struct {
	DSN    string
	PingTO time.Duration
}

// OpenAuditDB connects to the relational audit database. The DSN is
// optional at the call site; callers skip this entirely when it is empty.
func OpenAuditDB(ctx context.Context, opt DBOptions) (*sql.DB, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("AUDIT_DB_DSN is not set")
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	db, err := sql.Open("postgres", opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, opt.PingTO)
	defer cancel()

	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}
