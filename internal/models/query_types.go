// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeProjectLocation    QueryType = "project_location"
	QueryTypeProjectDetails     QueryType = "project_details"
	QueryTypeVolunteerProfiles  QueryType = "volunteer_profiles"
	QueryTypeApplicationDetails QueryType = "application_details"
	QueryTypeRecipientContact   QueryType = "recipient_contact"
)
