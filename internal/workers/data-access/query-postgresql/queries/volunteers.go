// internal/workers/data-access/query-postgresql/queries/volunteers.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"volunteer-workers/internal/models"
)

const defaultVolunteerLimit = 500

// ListActiveVolunteers returns active volunteers ordered by id. A non-empty
// ids slice restricts the result to those volunteers.
func ListActiveVolunteers(ctx context.Context, db *sql.DB, ids []string, limit int) ([]models.Volunteer, error) {
	if limit <= 0 {
		limit = defaultVolunteerLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if len(ids) > 0 {
		rows, err = db.QueryContext(ctx, `
			SELECT id, user_id, full_name, email, phone, status,
			       volunteer_countries, volunteer_states, volunteer_lgas
			FROM volunteers
			WHERE status = $1 AND id = ANY($2)
			ORDER BY id
			LIMIT $3`, models.VolunteerStatusActive, pq.Array(ids), limit)
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT id, user_id, full_name, email, phone, status,
			       volunteer_countries, volunteer_states, volunteer_lgas
			FROM volunteers
			WHERE status = $1
			ORDER BY id
			LIMIT $2`, models.VolunteerStatusActive, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volunteers := make([]models.Volunteer, 0)
	for rows.Next() {
		var v models.Volunteer
		var phone sql.NullString
		err := rows.Scan(
			&v.ID, &v.UserID, &v.FullName, &v.Email, &phone, &v.Status,
			pq.Array(&v.Countries), pq.Array(&v.States), pq.Array(&v.LGAs),
		)
		if err != nil {
			return nil, err
		}
		v.Phone = phone.String
		volunteers = append(volunteers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return volunteers, nil
}

func VolunteerProfiles(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	var ids []string
	switch v := params["volunteerIds"].(type) {
	case []string:
		ids = v
	case []interface{}:
		for _, id := range v {
			if s, ok := id.(string); ok {
				ids = append(ids, s)
			}
		}
	}

	start := time.Now()

	volunteers, err := ListActiveVolunteers(ctx, db, ids, intParam(params, "limit", defaultVolunteerLimit))
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return volunteers, len(volunteers), execTime, nil
}
