// internal/workers/data-access/query-postgresql/queries/applications.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"volunteer-workers/internal/models"
)

// FindApplication loads a single application. It returns sql.ErrNoRows when
// the id is unknown.
func FindApplication(ctx context.Context, db *sql.DB, applicationID string) (*models.Application, error) {
	var a models.Application
	var skills []byte

	err := db.QueryRowContext(ctx, `
		SELECT id, volunteer_id, project_id, motivation, availability,
		       skills, status, created_at, updated_at
		FROM applications
		WHERE id = $1`, applicationID).Scan(
		&a.ID, &a.VolunteerID, &a.ProjectID, &a.Motivation, &a.Availability,
		&skills, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skills, &a.Skills); err != nil {
		a.Skills = []string{}
	}
	return &a, nil
}

func ApplicationDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	applicationID, err := stringParam(params, "applicationId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	a, err := FindApplication(ctx, db, applicationID)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return a, 1, execTime, nil
}
