// internal/workers/application/update-application-status/handler.go
package updateapplicationstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"volunteer-workers/internal/common/database"
	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/models"
)

const (
	TaskType = "update-application-status"
)

var ErrMissingApplicationID = errors.New("applicationId is required")

type Handler struct {
	config   *Config
	db       *sql.DB
	logger   logger.Logger
	failures *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		db:       db,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ApplicationID) == "" {
		return nil, apperrors.NewBusinessRuleError(ErrMissingApplicationID.Error(), "update-application-status input")
	}

	out := &Output{
		ApplicationID:     input.ApplicationID,
		ApplicationStatus: input.Status,
	}
	now := time.Now().UTC()

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT status, volunteer_id, project_id
			FROM applications
			WHERE id = $1
			FOR UPDATE`, input.ApplicationID).Scan(&out.PreviousStatus, &out.VolunteerID, &out.ProjectID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewApplicationNotFoundError(input.ApplicationID)
		}
		if err != nil {
			return apperrors.NewDatabaseUpdateFailedError(fmt.Errorf("load application: %w", err))
		}

		if !models.CanTransitionApplication(out.PreviousStatus, input.Status) {
			return apperrors.NewInvalidStatusTransitionError(out.PreviousStatus, input.Status).
				WithMetadata("applicationId", input.ApplicationID)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, updated_at = $2
			WHERE id = $3`, input.Status, now.Format(time.RFC3339), input.ApplicationID); err != nil {
			return apperrors.NewDatabaseUpdateFailedError(err)
		}

		err = database.InsertAudit(ctx, tx, database.AuditEntry{
			EventType:    "application_status_changed",
			ResourceType: "application",
			ResourceID:   input.ApplicationID,
			Details: map[string]interface{}{
				"from":    out.PreviousStatus,
				"to":      input.Status,
				"actorId": input.ActorID,
				"reason":  input.Reason,
			},
			CreatedAt: now,
		})
		if err != nil {
			return apperrors.NewDatabaseUpdateFailedError(fmt.Errorf("audit: %w", err))
		}
		return nil
	})
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return nil, err
		}
		return nil, apperrors.NewDatabaseUpdateFailedError(err)
	}

	out.UpdatedAt = now.Format(time.RFC3339)

	h.logger.Info("application status updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"from":          out.PreviousStatus,
		"to":            input.Status,
	})
	return out, nil
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
		h.logger.Error("failed to send complete job command", map[string]interface{}{
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
