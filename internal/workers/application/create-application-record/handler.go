// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"volunteer-workers/internal/common/database"
	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/models"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
	ErrProjectNotFound      = errors.New("PROJECT_NOT_FOUND")
)

// pgUniqueViolation is the SQLSTATE Postgres reports for a unique index hit.
const pgUniqueViolation = "23505"

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
		h.failJob(client, job, toStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

func toStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrDuplicateApplication):
		return apperrors.NewDuplicateApplicationError(fmt.Sprintf("volunteerId: %s, projectId: %s",
			input.VolunteerID, input.ProjectID))
	case errors.Is(err, ErrProjectNotFound):
		return apperrors.NewProjectNotFoundError(input.ProjectID)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	default:
		return err
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	data := input.ApplicationData
	if input.ValidatedData != nil {
		data = *input.ValidatedData
	}

	appID := uuid.New().String()
	now := time.Now().UTC()
	createdAt := now.Format(time.RFC3339)

	skills := data.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal skills: %v", ErrDatabaseInsertFailed, err)
	}

	// The project row lock serialises concurrent applications to the same
	// project, so the duplicate check and the insert see the same state.
	err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, input.ProjectID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, input.ProjectID)
		}
		if err != nil {
			return fmt.Errorf("%w: project lock failed: %v", ErrDatabaseInsertFailed, err)
		}

		// Withdrawn applications do not block a new one.
		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM applications
				WHERE volunteer_id = $1 AND project_id = $2 AND status <> $3
			)`, input.VolunteerID, input.ProjectID, models.ApplicationStatusWithdrawn).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
		}
		if exists {
			return fmt.Errorf("%w: application already exists for volunteer %s and project %s",
				ErrDuplicateApplication, input.VolunteerID, input.ProjectID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications (
				id, volunteer_id, project_id, motivation, availability,
				skills, hours_per_week, phone, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			appID,
			input.VolunteerID,
			input.ProjectID,
			data.Motivation,
			data.Availability,
			string(skillsJSON),
			nullableInt(data.HoursPerWeek),
			nullableString(data.Phone),
			models.ApplicationStatusSubmitted,
			createdAt,
		)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateApplication, pqErr.Message)
		}
		if err != nil {
			return fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateApplication) || errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrDatabaseInsertFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, err)
	}

	// The audit row is best-effort.
	err = database.InsertAudit(ctx, h.db, database.AuditEntry{
		EventType:    "application_created",
		ResourceType: "application",
		ResourceID:   appID,
		Details: map[string]interface{}{
			"volunteerId": input.VolunteerID,
			"projectId":   input.ProjectID,
			"skillCount":  len(skills),
		},
		CreatedAt: now,
	})
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": appID,
		})
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": appID,
		"volunteerId":   input.VolunteerID,
		"projectId":     input.ProjectID,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: models.ApplicationStatusSubmitted,
		CreatedAt:         createdAt,
	}, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
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
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.failures.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
