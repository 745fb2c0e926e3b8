// internal/workers/project/review-project/models.go
package reviewproject

import "volunteer-workers/internal/models"

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// decisionStatus maps a review decision to the project status it produces.
var decisionStatus = map[string]string{
	DecisionApprove: models.ProjectStatusApproved,
	DecisionReject:  models.ProjectStatusRejected,
}

type Input struct {
	ProjectID  string `json:"projectId"`
	ReviewerID string `json:"reviewerId"`
	Decision   string `json:"decision"`
	Notes      string `json:"notes,omitempty"`
}

type Output struct {
	ProjectID     string `json:"projectId"`
	ProjectStatus string `json:"projectStatus"`
	ReviewID      string `json:"reviewId"`
	ReviewedAt    string `json:"reviewedAt"`
	AgencyID      string `json:"agencyId"`
}
