package reviewproject

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func newHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(createTestConfig(), db, logger.NewTestLogger(t)), mock
}

func expectLoad(mock sqlmock.Sqlmock, status string) {
	mock.ExpectQuery(`SELECT status, agency_id\s+FROM projects\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "agency_id"}).AddRow(status, "agency-1"))
}

func TestHandler_Execute_Decisions(t *testing.T) {
	tests := []struct {
		decision string
		status   string
	}{
		{"approve", models.ProjectStatusApproved},
		{"reject", models.ProjectStatusRejected},
		{" Approve ", models.ProjectStatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.decision, func(t *testing.T) {
			h, mock := newHandler(t)

			mock.ExpectBegin()
			expectLoad(mock, models.ProjectStatusPendingReview)
			mock.ExpectExec(`UPDATE projects`).
				WithArgs(tt.status, sqlmock.AnyArg(), "proj-1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO project_reviews`).
				WithArgs(sqlmock.AnyArg(), "proj-1", "admin-7", sqlmock.AnyArg(), "Looks good", sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO audit_log`).
				WithArgs("project_reviewed", "project", "proj-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			out, err := h.Execute(context.Background(), &Input{
				ProjectID:  "proj-1",
				ReviewerID: "admin-7",
				Decision:   tt.decision,
				Notes:      "Looks good",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.status, out.ProjectStatus)
			assert.Equal(t, "agency-1", out.AgencyID)
			_, parseErr := uuid.Parse(out.ReviewID)
			assert.NoError(t, parseErr)
			assert.NotEmpty(t, out.ReviewedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_InvalidDecision(t *testing.T) {
	h, mock := newHandler(t)

	_, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Decision: "maybe"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidReviewDecision, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AlreadyReviewed(t *testing.T) {
	for _, status := range []string{models.ProjectStatusApproved, models.ProjectStatusRejected, models.ProjectStatusClosed} {
		t.Run(status, func(t *testing.T) {
			h, mock := newHandler(t)

			mock.ExpectBegin()
			expectLoad(mock, status)
			mock.ExpectRollback()

			_, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Decision: DecisionApprove})

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, apperrors.ErrCodeInvalidStatusTransition, stdErr.Code)
			assert.Equal(t, "proj-1", stdErr.Metadata["projectId"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_ProjectNotFound(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM projects`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "agency_id"}))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Decision: DecisionReject})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeProjectNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_MissingProjectID(t *testing.T) {
	h, mock := newHandler(t)

	for _, id := range []string{"", "  "} {
		_, err := h.Execute(context.Background(), &Input{ProjectID: id, Decision: DecisionApprove})

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrorCode("BUSINESS_RULE_VIOLATION"), stdErr.Code)
		assert.Equal(t, ErrMissingProjectID.Error(), stdErr.Message)
		assert.False(t, stdErr.Retryable)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ReviewInsertFailsRollsBack(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectBegin()
	expectLoad(mock, models.ProjectStatusPendingReview)
	mock.ExpectExec(`UPDATE projects`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO project_reviews`).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Decision: DecisionApprove})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_LookupFails(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM projects`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Decision: DecisionApprove})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeProjectLookupFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
