// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/models"
	"volunteer-workers/internal/workers/data-access/query-postgresql/queries"
)

const (
	TaskType = "query-postgresql"
)

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
	if input == nil {
		return nil, apperrors.NewInvalidQueryTypeError("input cannot be nil")
	}

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, apperrors.NewInvalidQueryTypeError(input.QueryType)
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, input.params(h.config.MaxRows))
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError(input.QueryType)
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperrors.NewResourceNotFoundError("postgresql", input.QueryType+": no matching row")
		case errors.Is(err, queries.ErrMissingParam), errors.Is(err, queries.ErrInvalidParam):
			return nil, apperrors.NewBusinessRuleError(err.Error(), "invalid query parameters")
		default:
			return nil, apperrors.NewQueryExecutionFailedError(input.QueryType, err)
		}
	}

	if h.config.SlowQuery > 0 && time.Duration(execTime)*time.Millisecond > h.config.SlowQuery {
		h.logger.Warn("slow query", map[string]interface{}{
			"queryType":       input.QueryType,
			"executionTimeMs": execTime,
			"rowCount":        rowCount,
		})
	}

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

// params flattens the input into query parameters. A positive maxRows caps
// the requested limit.
func (in *Input) params(maxRows int) map[string]interface{} {
	params := make(map[string]interface{})
	if in.ProjectID != "" {
		params["projectId"] = in.ProjectID
	}
	if in.ApplicationID != "" {
		params["applicationId"] = in.ApplicationID
	}
	if len(in.VolunteerIDs) > 0 {
		params["volunteerIds"] = in.VolunteerIDs
	}
	if in.RecipientID != "" {
		params["recipientId"] = in.RecipientID
	}
	if in.RecipientType != "" {
		params["recipientType"] = in.RecipientType
	}
	if in.Limit > 0 {
		limit := in.Limit
		if maxRows > 0 && limit > maxRows {
			limit = maxRows
		}
		params["limit"] = limit
	}
	return params
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
