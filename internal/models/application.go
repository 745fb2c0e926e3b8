// internal/models/application.go
package models

// Application statuses.
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

type Application struct {
	ID           string   `json:"id"`
	VolunteerID  string   `json:"volunteerId"`
	ProjectID    string   `json:"projectId"`
	Motivation   string   `json:"motivation"`
	Availability string   `json:"availability"`
	Skills       []string `json:"skills"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// ApplicationData is the form a volunteer submits when applying to a project.
type ApplicationData struct {
	Motivation   string   `json:"motivation"`
	Availability string   `json:"availability"`
	Skills       []string `json:"skills"`
	Phone        string   `json:"phone,omitempty"`
	HoursPerWeek int      `json:"hoursPerWeek,omitempty"`
}

// applicationTransitions lists the statuses each status may move to.
var applicationTransitions = map[string][]string{
	ApplicationStatusSubmitted: {ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusAccepted:  {ApplicationStatusWithdrawn},
}

// CanTransitionApplication reports whether an application in status from may
// move to status to.
func CanTransitionApplication(from, to string) bool {
	for _, allowed := range applicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
