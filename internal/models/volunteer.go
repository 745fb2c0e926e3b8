// internal/models/volunteer.go
package models

const VolunteerStatusActive = "active"

type Volunteer struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	FullName  string   `json:"fullName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Status    string   `json:"status"`
	Skills    []string `json:"skills,omitempty"`
	Countries []string `json:"volunteerCountries"`
	States    []string `json:"volunteerStates"`
	LGAs      []string `json:"volunteerLgas"`
}

// Contact is the delivery address of a notification recipient.
type Contact struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // "agency" or "volunteer"
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
