// internal/workers/data-access/query-postgresql/queries/projects.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"volunteer-workers/internal/models"
)

// FindProjectByID loads a single project. It returns sql.ErrNoRows when the id
// is unknown.
func FindProjectByID(ctx context.Context, db *sql.DB, projectID string) (*models.Project, error) {
	var p models.Project
	var lga, state, country sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, agency_id, title, description, lga, state, country,
		       status, created_at, updated_at
		FROM projects
		WHERE id = $1`, projectID).Scan(
		&p.ID, &p.AgencyID, &p.Title, &p.Description,
		&lga, &state, &country,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.LGA, p.State, p.Country = lga.String, state.String, country.String
	return &p, nil
}

func ProjectLocation(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	projectID, err := stringParam(params, "projectId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	var lga, state, country sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT lga, state, country
		FROM projects
		WHERE id = $1`, projectID).Scan(&lga, &state, &country)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"projectId": projectID,
		"lga":       lga.String,
		"state":     state.String,
		"country":   country.String,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func ProjectDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	projectID, err := stringParam(params, "projectId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	p, err := FindProjectByID(ctx, db, projectID)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return p, 1, execTime, nil
}
