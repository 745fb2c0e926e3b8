// internal/workers/matching/match-volunteers/models.go
package matchvolunteers

import "volunteer-workers/internal/location"

type Input struct {
	ProjectID string `json:"projectId"`
	// Project, when present, is used instead of loading the stored project.
	Project *location.Descriptor `json:"project,omitempty"`
	// Limit caps matchedVolunteerIds. Zero means no cap.
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	ProjectID           string             `json:"projectId"`
	MatchedVolunteerIDs []string           `json:"matchedVolunteerIds"`
	MatchCount          int                `json:"matchCount"`
	CandidateCount      int                `json:"candidateCount"`
	Tier                location.Tier      `json:"tier"`
	Constraint          string             `json:"constraint"`
	Warnings            []location.Warning `json:"warnings"`
	MatchedAt           string             `json:"matchedAt"`
}
