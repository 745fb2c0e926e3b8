// internal/workers/application/update-application-status/models.go
package updateapplicationstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	// ActorID is the agency member or volunteer making the change.
	ActorID string `json:"actorId,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	PreviousStatus    string `json:"previousStatus"`
	ApplicationStatus string `json:"applicationStatus"`
	VolunteerID       string `json:"volunteerId"`
	ProjectID         string `json:"projectId"`
	UpdatedAt         string `json:"updatedAt"`
}
