// internal/workers/data-access/query-elasticsearch/queries/source.go
package queries

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"volunteer-workers/internal/location"
)

// VolunteerIndex serves match candidates from the volunteer search index.
// The constraint is pushed down as a term filter, so the index returns only
// volunteers that can satisfy it; the matcher still filters exactly.
type VolunteerIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewVolunteerIndex(client *elasticsearch.Client, index string) *VolunteerIndex {
	return &VolunteerIndex{Client: client, Index: index}
}

// ListCandidates pages through every matching volunteer with search_after
// on volunteer_id. A positive limit caps the result; when more volunteers
// match it fails with location.ErrTooManyCandidates.
func (v *VolunteerIndex) ListCandidates(ctx context.Context, c location.Constraint, limit int) ([]location.Profile, error) {
	if c.Tier == location.TierNone {
		return []location.Profile{}, nil
	}

	filters := FiltersFor(c)
	filters.ActiveOnly = true

	profiles := make([]location.Profile, 0)
	var after []interface{}
	for {
		res, err := Execute(ctx, v.Client, ElasticsearchQuery{
			Index:      v.Index,
			QueryType:  QueryTypeVolunteersByLocation,
			Filters:    filters,
			Pagination: Pagination{Size: MaxPageSize, SearchAfter: after},
		})
		if err != nil {
			return nil, err
		}

		for _, doc := range res.Data {
			profiles = append(profiles, ProfileFromSource(doc))
		}

		if limit > 0 && len(profiles) > limit {
			return nil, fmt.Errorf("%w: more than %d volunteers in %s", location.ErrTooManyCandidates, limit, c)
		}
		if len(res.Data) < MaxPageSize {
			return profiles, nil
		}
		after = []interface{}{profiles[len(profiles)-1].VolunteerID}
	}
}

// ProfileFromSource reads the location sets off a volunteer document.
func ProfileFromSource(src map[string]interface{}) location.Profile {
	id, _ := src[FieldVolunteerID].(string)
	return location.Profile{
		VolunteerID: id,
		Countries:   stringSlice(src[FieldCountries]),
		States:      stringSlice(src[FieldStates]),
		LGAs:        stringSlice(src[FieldLGAs]),
	}
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
