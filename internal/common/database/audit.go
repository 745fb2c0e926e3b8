// internal/common/database/audit.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type AuditEntry struct {
	EventType    string
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	CreatedAt    time.Time
}

// InsertAudit appends a row to audit_log. Details are stored as JSON.
func InsertAudit(ctx context.Context, db Execer, e AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil || e.Details == nil {
		details = []byte("{}")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.EventType,
		e.ResourceType,
		e.ResourceID,
		string(details),
		e.CreatedAt.Format(time.RFC3339),
	)
	return err
}
