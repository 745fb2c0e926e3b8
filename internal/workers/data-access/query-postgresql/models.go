// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "volunteer-workers/internal/models"

type Input struct {
	QueryType     string   `json:"queryType"`
	ProjectID     string   `json:"projectId,omitempty"`
	ApplicationID string   `json:"applicationId,omitempty"`
	VolunteerIDs  []string `json:"volunteerIds,omitempty"`
	RecipientID   string   `json:"recipientId,omitempty"`
	RecipientType string   `json:"recipientType,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeProjectLocation    = models.QueryTypeProjectLocation
	QueryTypeProjectDetails     = models.QueryTypeProjectDetails
	QueryTypeVolunteerProfiles  = models.QueryTypeVolunteerProfiles
	QueryTypeApplicationDetails = models.QueryTypeApplicationDetails
	QueryTypeRecipientContact   = models.QueryTypeRecipientContact
)
