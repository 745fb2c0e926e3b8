// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"volunteer-workers/internal/location"
)

const (
	QueryTypeVolunteersByLocation = "volunteers_by_location"
	QueryTypeVolunteerDirectory   = "volunteer_directory"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field names in the volunteer index.
const (
	FieldVolunteerID = "volunteer_id"
	FieldFullName    = "full_name"
	FieldBio         = "bio"
	FieldSkills      = "skills"
	FieldStatus      = "status"
	FieldCountries   = "volunteer_countries"
	FieldStates      = "volunteer_states"
	FieldLGAs        = "volunteer_lgas"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrIndexNotFound    = errors.New("index not found")
)

// Filters narrows a volunteer search. Location values are canonical names
// as stored on volunteer documents.
type Filters struct {
	LGA      string   `json:"lga,omitempty"`
	State    string   `json:"state,omitempty"`
	Country  string   `json:"country,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Keywords string   `json:"keywords,omitempty"`
	// ActiveOnly restricts hits to volunteers with status "active".
	ActiveOnly bool `json:"activeOnly,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
	// SearchAfter holds the sort values of the last hit of the previous
	// page. When set, From is ignored.
	SearchAfter []interface{} `json:"searchAfter,omitempty"`
}

// Normalize clamps the page size to [1, MaxPageSize] and from to >= 0.
func (p Pagination) Normalize() Pagination {
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.From < 0 {
		p.From = 0
	}
	return p
}

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index      string
	QueryType  string
	Filters    Filters
	Pagination Pagination
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}
	switch eq.QueryType {
	case QueryTypeVolunteersByLocation:
		queryBody = buildLocationQuery(eq.Filters)
	case QueryTypeVolunteerDirectory:
		queryBody = buildDirectoryQuery(eq.Filters)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	from, size := eq.Pagination.From, eq.Pagination.Size
	if len(eq.Pagination.SearchAfter) > 0 {
		queryBody["search_after"] = eq.Pagination.SearchAfter
		from = 0
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}, nil
}

// buildLocationQuery filters on the most specific location given, using
// the same precedence as the matcher.
func buildLocationQuery(f Filters) map[string]interface{} {
	filter := locationClauses(f)
	if len(filter) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_none": map[string]interface{}{}},
		}
	}
	if f.ActiveOnly {
		filter = append(filter, term(FieldStatus, "active"))
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter},
		},
		"sort": []map[string]interface{}{{FieldVolunteerID: "asc"}},
	}
}

func buildDirectoryQuery(f Filters) map[string]interface{} {
	must := []interface{}{}
	if f.Keywords != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Keywords,
				"fields": []string{FieldFullName + "^2", FieldBio, FieldSkills},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filter := locationClauses(f)
	if len(f.Skills) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{FieldSkills: f.Skills},
		})
	}
	if f.ActiveOnly {
		filter = append(filter, term(FieldStatus, "active"))
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func locationClauses(f Filters) []interface{} {
	switch {
	case f.LGA != "":
		return []interface{}{term(FieldLGAs, f.LGA)}
	case f.State != "":
		return []interface{}{term(FieldStates, f.State)}
	case f.Country != "":
		return []interface{}{term(FieldCountries, f.Country)}
	default:
		return nil
	}
}

func term(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

// FiltersFor converts a resolved location constraint into search filters.
func FiltersFor(c location.Constraint) Filters {
	switch c.Tier {
	case location.TierLGA:
		return Filters{LGA: c.Name}
	case location.TierState:
		return Filters{State: c.Name}
	case location.TierCountry:
		return Filters{Country: c.Name}
	default:
		return Filters{}
	}
}
