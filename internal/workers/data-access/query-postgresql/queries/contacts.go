// internal/workers/data-access/query-postgresql/queries/contacts.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"volunteer-workers/internal/models"
)

const (
	RecipientAgency    = "agency"
	RecipientVolunteer = "volunteer"
)

// FindContact returns the delivery address for an agency or a volunteer.
func FindContact(ctx context.Context, db *sql.DB, recipientType, recipientID string) (*models.Contact, error) {
	var query string
	switch recipientType {
	case RecipientAgency:
		query = `SELECT id, name, email, phone FROM agencies WHERE id = $1`
	case RecipientVolunteer:
		query = `SELECT id, full_name, email, phone FROM volunteers WHERE id = $1`
	default:
		return nil, fmt.Errorf("%w: recipientType %q", ErrInvalidParam, recipientType)
	}

	c := models.Contact{Type: recipientType}
	var phone sql.NullString
	if err := db.QueryRowContext(ctx, query, recipientID).Scan(&c.ID, &c.Name, &c.Email, &phone); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	return &c, nil
}

func RecipientContact(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	recipientID, err := stringParam(params, "recipientId")
	if err != nil {
		return nil, 0, 0, err
	}
	recipientType, err := stringParam(params, "recipientType")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	c, err := FindContact(ctx, db, recipientType, recipientID)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return c, 1, execTime, nil
}
