// internal/models/project.go
package models

// Project statuses.
const (
	ProjectStatusPendingReview = "pending_review"
	ProjectStatusApproved      = "approved"
	ProjectStatusRejected      = "rejected"
	ProjectStatusClosed        = "closed"
)

type Project struct {
	ID          string `json:"id"`
	AgencyID    string `json:"agencyId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LGA         string `json:"lga,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ProjectReview struct {
	ID         string `json:"id"`
	ProjectID  string `json:"projectId"`
	ReviewerID string `json:"reviewerId"`
	Decision   string `json:"decision"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"createdAt"`
}
