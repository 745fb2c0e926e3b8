package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:     42,
		Type:    "match-volunteers",
		Retries: retries,
	}}
}

// ==========================
// Conversion Tests
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"project not found is thrown", NewProjectNotFoundError("p-1"), "PROJECT_NOT_FOUND", 0},
		{"lookup failure retries", NewProjectLookupFailedError("p-1", fmt.Errorf("conn reset")), "PROJECT_LOOKUP_FAILED", 3},
		{"timeout retries twice", NewQueryTimeoutError("project_location"), "QUERY_TIMEOUT", 2},
		{"unresolved code is business", NewUnresolvedRegionCodeError("state: ZZ"), "UNRESOLVED_REGION_CODE", 0},
		{"unknown code falls back", &StandardError{Code: "SOMETHING_ELSE", Retryable: true}, "SOMETHING_ELSE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	stdErr := NewUnresolvedRegionCodeError("state: ZZ").WithMetadata("projectId", "p-9")

	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, "p-9", vars["projectId"])
	assert.Equal(t, "UNRESOLVED_REGION_CODE", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeProjectNotFound))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeVolunteerLookupFailed))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeCandidateLimit))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "APPLICATION", GetErrorCategory(ErrCodeInvalidStatusTransition))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseUpdateFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateApplication))
}

// ==========================
// Decision Tests
// ==========================

func TestNormalize_UnwrapsStandardError(t *testing.T) {
	inner := NewProjectNotFoundError("p-1")
	wrapped := fmt.Errorf("match volunteers: %w", inner)

	assert.Same(t, inner, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		retries     int32
		err         error
		wantThrow   bool
		wantRetries int32
	}{
		{"retryable with budget left", 3, NewDatabaseInsertFailedError(fmt.Errorf("x")), false, 2},
		{"retry budget capped by code", 10, NewSearchTimeoutError("volunteers_by_location"), false, 2},
		{"last attempt is thrown", 1, NewDatabaseInsertFailedError(fmt.Errorf("x")), true, 0},
		{"business error is thrown", 3, NewDuplicateApplicationError("v-1/p-1"), true, 0},
		{"plain error is thrown", 3, stderrors.New("unexpected"), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Decide(jobWithRetries(tt.retries), tt.err)
			require.NotNil(t, out.BPMN)
			assert.Equal(t, tt.wantThrow, out.Throw)
			assert.Equal(t, tt.wantRetries, out.Retries)
		})
	}
}
