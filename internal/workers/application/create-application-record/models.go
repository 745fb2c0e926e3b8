// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "volunteer-workers/internal/models"

type Input struct {
	VolunteerID     string                 `json:"volunteerId"`
	ProjectID       string                 `json:"projectId"`
	ApplicationData models.ApplicationData `json:"applicationData"`
	// ValidatedData is the sanitized form from validate-application-data and
	// takes precedence when present.
	ValidatedData *models.ApplicationData `json:"validatedData,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
