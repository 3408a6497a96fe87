package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplist-app/shoplist-backend/internal/admin/domain"
)

// AuditRepository persists the admin audit log in Postgres. Application data
// lives in the document store; this table is the one relational concern.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table if it does not exist yet.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS admin_audit_log (
			id          UUID PRIMARY KEY,
			actor_email TEXT NOT NULL,
			action      TEXT NOT NULL,
			subject     TEXT NOT NULL,
			detail      TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensuring audit schema: %w", err)
	}
	return nil
}

// Record inserts the entry and fills in its generated ID and created_at.
func (r *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO admin_audit_log (id, actor_email, action, subject, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.ActorEmail,
		entry.Action,
		entry.Subject,
		entry.Detail,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}

	return nil
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, actor_email, action, subject, detail, created_at
		FROM admin_audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorEmail, &e.Action, &e.Subject, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// PurgeOlderThan deletes entries past the retention window and returns how
// many rows were removed.
func (r *AuditRepository) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_audit_log WHERE created_at < $1`,
		time.Now().UTC().Add(-retention),
	)
	if err != nil {
		return 0, fmt.Errorf("purging audit entries: %w", err)
	}

	return result.RowsAffected()
}
