// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"volunteer-workers/internal/common/validation"
	"volunteer-workers/internal/models"
)

type Input struct {
	VolunteerID     string                 `json:"volunteerId"`
	ProjectID       string                 `json:"projectId"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidatedData    *models.ApplicationData      `json:"validatedData"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}

// Availability values a volunteer can choose from.
var availabilityOptions = []string{"weekdays", "weekends", "evenings", "flexible"}

const (
	minMotivationLength = 20
	maxMotivationLength = 2000
	maxSkills           = 20
	maxSkillLength      = 100
)

func applicationSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"volunteerId", "projectId", "applicationData"},
		Properties: map[string]validation.Property{
			"volunteerId": {Type: "string", MinLength: validation.Int(1)},
			"projectId":   {Type: "string", MinLength: validation.Int(1)},
			"applicationData": {
				Type:     "object",
				Required: []string{"motivation", "availability", "skills"},
				Properties: map[string]validation.Property{
					"motivation": {
						Type:      "string",
						MinLength: validation.Int(minMotivationLength),
						MaxLength: validation.Int(maxMotivationLength),
					},
					"availability": {Type: "string", Enum: availabilityOptions},
					"skills": {
						Type:     "array",
						MinItems: validation.Int(1),
						MaxItems: validation.Int(maxSkills),
						Items: &validation.Property{
							Type:      "string",
							MinLength: validation.Int(1),
							MaxLength: validation.Int(maxSkillLength),
						},
					},
					"phone": {Type: "string", Pattern: validation.String(validation.E164Pattern)},
					"hoursPerWeek": {
						Type:    "integer",
						Minimum: validation.Float(1),
						Maximum: validation.Float(80),
					},
				},
			},
		},
	}
}
