// internal/workers/project/review-project/handler.go
package reviewproject

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"volunteer-workers/internal/common/database"
	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/models"
)

const (
	TaskType = "review-project"
)

var ErrMissingProjectID = errors.New("projectId is required")

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
	if strings.TrimSpace(input.ProjectID) == "" {
		return nil, apperrors.NewBusinessRuleError(ErrMissingProjectID.Error(), "review-project input")
	}
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	newStatus, ok := decisionStatus[decision]
	if !ok {
		return nil, apperrors.NewInvalidReviewDecisionError(input.Decision)
	}

	out := &Output{
		ProjectID:     input.ProjectID,
		ProjectStatus: newStatus,
		ReviewID:      uuid.New().String(),
	}
	now := time.Now().UTC()
	reviewedAt := now.Format(time.RFC3339)

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `
			SELECT status, agency_id
			FROM projects
			WHERE id = $1
			FOR UPDATE`, input.ProjectID).Scan(&current, &out.AgencyID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewProjectNotFoundError(input.ProjectID)
		}
		if err != nil {
			return apperrors.NewProjectLookupFailedError(input.ProjectID, err)
		}

		if current != models.ProjectStatusPendingReview {
			return apperrors.NewInvalidStatusTransitionError(current, newStatus).
				WithMetadata("projectId", input.ProjectID)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET status = $1, updated_at = $2
			WHERE id = $3`, newStatus, reviewedAt, input.ProjectID); err != nil {
			return apperrors.NewDatabaseUpdateFailedError(err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO project_reviews (id, project_id, reviewer_id, decision, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			out.ReviewID, input.ProjectID, input.ReviewerID, decision, input.Notes, reviewedAt); err != nil {
			return apperrors.NewDatabaseInsertFailedError(fmt.Errorf("project review: %w", err))
		}

		err = database.InsertAudit(ctx, tx, database.AuditEntry{
			EventType:    "project_reviewed",
			ResourceType: "project",
			ResourceID:   input.ProjectID,
			Details: map[string]interface{}{
				"reviewId":   out.ReviewID,
				"reviewerId": input.ReviewerID,
				"decision":   decision,
				"from":       current,
				"to":         newStatus,
			},
			CreatedAt: now,
		})
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(fmt.Errorf("audit: %w", err))
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

	out.ReviewedAt = reviewedAt

	h.logger.Info("project reviewed", map[string]interface{}{
		"projectId":  input.ProjectID,
		"reviewerId": input.ReviewerID,
		"decision":   decision,
		"status":     newStatus,
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
