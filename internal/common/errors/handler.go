// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"volunteer-workers/internal/common/metrics"
)

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Outcome describes what the handler will do with a failed job.
type Outcome struct {
	BPMN    *BPMNError
	Std     *StandardError
	Retries int32
	// Throw is true when the error goes to a BPMN boundary event instead
	// of being retried by the broker.
	Throw bool
}

// Decide maps err onto the job's retry budget without talking to the broker.
func Decide(job entities.Job, err error) Outcome {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	// job.Retries counts the current attempt
	remaining := job.Retries - 1
	if max := int32(bpmnErr.Retries); remaining > max {
		remaining = max
	}

	if bpmnErr.Retries > 0 && remaining > 0 {
		return Outcome{BPMN: bpmnErr, Std: stdErr, Retries: remaining}
	}
	return Outcome{BPMN: bpmnErr, Std: stdErr, Throw: true}
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Outcome {
	out := Decide(job, err)
	h.logError(job, out)
	metrics.RecordFailed(job.Type, out.BPMN.Code)

	if out.Throw {
		h.throwBPMNError(ctx, client, job, out.BPMN)
	} else {
		h.failJobWithRetries(ctx, client, job, out.BPMN, out.Retries)
	}
	return out
}

// Normalize ensures we always have a StandardError, unwrapping when a
// StandardError sits somewhere in the chain.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure(job, err)
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure(job, err)
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) logSendFailure(job entities.Job, err error) {
	h.logger.Error("failed to report job failure", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, out Outcome) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(out.Std.Code),
		"bpmnErrorCode":    out.BPMN.Code,
		"message":          out.BPMN.Message,
		"details":          out.Std.Details,
		"retryable":        out.Std.Retryable,
		"retriesLeft":      out.Retries,
		"thrown":           out.Throw,
		"errorCategory":    GetErrorCategory(out.Std.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
