// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/common/validation"
	"volunteer-workers/internal/models"
)

const (
	TaskType = "validate-application-data"
)

type Handler struct {
	config   *Config
	logger   logger.Logger
	failures *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		logger:   l,
		failures: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	doc := map[string]interface{}{
		"volunteerId": strings.TrimSpace(input.VolunteerID),
		"projectId":   strings.TrimSpace(input.ProjectID),
	}
	if input.ApplicationData != nil {
		doc["applicationData"] = input.ApplicationData
	}

	result := validation.ValidateInput(doc, applicationSchema())

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    result.Valid,
		"errorCount": len(result.Errors),
	})

	if !result.Valid {
		return nil, apperrors.NewApplicationValidationFailedError(
			fmt.Sprintf("%d validation errors: %s", len(result.Errors), strings.Join(result.GetErrorMessages(), "; ")),
		).WithMetadata("validationErrors", result.Errors)
	}

	return &Output{
		IsValid:          true,
		ValidatedData:    sanitize(input.ApplicationData),
		ValidationErrors: []validation.ValidationError{},
	}, nil
}

// sanitize copies schema-valid data into its typed form, trimming text and
// dropping duplicate skills.
func sanitize(data map[string]interface{}) *models.ApplicationData {
	out := &models.ApplicationData{
		Motivation:   strings.TrimSpace(data["motivation"].(string)),
		Availability: data["availability"].(string),
		Skills:       []string{},
	}

	seen := make(map[string]bool)
	for _, skill := range stringList(data["skills"]) {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Skills = append(out.Skills, skill)
	}

	if phone, ok := data["phone"].(string); ok {
		out.Phone = phone
	}
	switch hours := data["hoursPerWeek"].(type) {
	case float64:
		out.HoursPerWeek = int(hours)
	case int:
		out.HoursPerWeek = hours
	}
	return out
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.RecordCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.failures.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
