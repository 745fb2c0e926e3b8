// internal/workers/application/send-notification/models.go
package sendnotification

import "volunteer-workers/internal/models"

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "agency" or "volunteer"
	NotificationType string                 `json:"notificationType"`
	ProjectID        string                 `json:"projectId,omitempty"`
	ApplicationID    string                 `json:"applicationId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string            `json:"notificationId"`
	Status         string            `json:"status"` // "sent", "failed", "disabled"
	Channels       map[string]string `json:"channels"`
	SentAt         string            `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeProjectApproved     = "project_approved"
	TypeProjectRejected     = "project_rejected"
	TypeApplicationReceived = "application_received"
	TypeApplicationAccepted = "application_accepted"
	TypeApplicationRejected = "application_rejected"
	TypeVolunteerMatch      = "volunteer_match"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

var priorityRank = map[string]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
}

func defaultTemplates() map[string]models.NotificationTemplate {
	return map[string]models.NotificationTemplate{
		TypeProjectApproved: {
			Subject: "Your project {{projectTitle}} is live",
			Body:    "Hello {{recipientName}}, your project {{projectTitle}} was approved and is now visible to volunteers.",
			SMS:     "Project {{projectTitle}} approved.",
		},
		TypeProjectRejected: {
			Subject: "Your project {{projectTitle}} needs changes",
			Body:    "Hello {{recipientName}}, your project {{projectTitle}} was not approved. Reviewer notes: {{notes}}",
			SMS:     "Project {{projectTitle}} was not approved.",
		},
		TypeApplicationReceived: {
			Subject: "New volunteer application",
			Body:    "Hello {{recipientName}}, {{volunteerName}} applied to {{projectTitle}} (application {{applicationId}}).",
			SMS:     "New application for {{projectTitle}}.",
		},
		TypeApplicationAccepted: {
			Subject: "You're in: {{projectTitle}}",
			Body:    "Hello {{recipientName}}, your application {{applicationId}} to {{projectTitle}} was accepted.",
			SMS:     "Accepted for {{projectTitle}}.",
		},
		TypeApplicationRejected: {
			Subject: "Update on your application",
			Body:    "Hello {{recipientName}}, your application {{applicationId}} to {{projectTitle}} was not successful this time.",
			SMS:     "Application {{applicationId}} was not successful.",
		},
		TypeVolunteerMatch: {
			Subject: "A project near you needs volunteers",
			Body:    "Hello {{recipientName}}, {{projectTitle}} is looking for volunteers in your area.",
			SMS:     "{{projectTitle}} needs volunteers near you.",
		},
	}
}
