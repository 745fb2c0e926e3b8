// internal/workers/data-access/query-postgresql/queries/store.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"volunteer-workers/internal/location"
	"volunteer-workers/internal/models"
)

// Store exposes the project and volunteer queries in the shapes the
// location matcher consumes.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// FindProjectLocation implements location.ProjectFinder.
func (s *Store) FindProjectLocation(ctx context.Context, projectID string) (location.Descriptor, error) {
	var lga, state, country sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT lga, state, country
		FROM projects
		WHERE id = $1`, projectID).Scan(&lga, &state, &country)
	if errors.Is(err, sql.ErrNoRows) {
		return location.Descriptor{}, location.ErrProjectNotFound
	}
	if err != nil {
		return location.Descriptor{}, err
	}
	return location.Descriptor{LGA: lga.String, State: state.String, Country: country.String}, nil
}

// candidatePageSize is the keyset page used by ListCandidates.
const candidatePageSize = 500

// areaColumns maps a tier to the volunteer column holding its areas.
var areaColumns = map[location.Tier]string{
	location.TierLGA:     "volunteer_lgas",
	location.TierState:   "volunteer_states",
	location.TierCountry: "volunteer_countries",
}

// ListCandidates returns the active volunteers whose areas for c's tier
// contain c's name, ordered by id. Rows are read in keyset pages so every
// eligible volunteer is returned. A positive limit caps the result; when
// more volunteers are eligible it fails with location.ErrTooManyCandidates.
func (s *Store) ListCandidates(ctx context.Context, c location.Constraint, limit int) ([]location.Profile, error) {
	column, ok := areaColumns[c.Tier]
	if !ok {
		return []location.Profile{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, volunteer_countries, volunteer_states, volunteer_lgas
		FROM volunteers
		WHERE status = $1 AND $2 = ANY(%s) AND id > $3
		ORDER BY id
		LIMIT $4`, column)

	profiles := make([]location.Profile, 0)
	after := ""
	for {
		page, err := s.candidatePage(ctx, query, c.Name, after)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, page...)

		if limit > 0 && len(profiles) > limit {
			return nil, fmt.Errorf("%w: more than %d volunteers in %s", location.ErrTooManyCandidates, limit, c)
		}
		if len(page) < candidatePageSize {
			return profiles, nil
		}
		after = page[len(page)-1].VolunteerID
	}
}

func (s *Store) candidatePage(ctx context.Context, query, area, after string) ([]location.Profile, error) {
	rows, err := s.DB.QueryContext(ctx, query, models.VolunteerStatusActive, area, after, candidatePageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := make([]location.Profile, 0, candidatePageSize)
	for rows.Next() {
		var p location.Profile
		if err := rows.Scan(&p.VolunteerID, pq.Array(&p.Countries), pq.Array(&p.States), pq.Array(&p.LGAs)); err != nil {
			return nil, err
		}
		page = append(page, p)
	}
	return page, rows.Err()
}
