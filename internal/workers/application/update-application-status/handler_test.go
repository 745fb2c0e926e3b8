package updateapplicationstatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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
	mock.ExpectQuery(`SELECT status, volunteer_id, project_id\s+FROM applications\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "volunteer_id", "project_id"}).
			AddRow(status, "vol-1", "proj-1"))
}

func TestHandler_Execute_AllowedTransitions(t *testing.T) {
	tests := []struct {
		from, to string
	}{
		{models.ApplicationStatusSubmitted, models.ApplicationStatusAccepted},
		{models.ApplicationStatusSubmitted, models.ApplicationStatusRejected},
		{models.ApplicationStatusSubmitted, models.ApplicationStatusWithdrawn},
		{models.ApplicationStatusAccepted, models.ApplicationStatusWithdrawn},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			h, mock := newHandler(t)

			mock.ExpectBegin()
			expectLoad(mock, tt.from)
			mock.ExpectExec(`UPDATE applications`).
				WithArgs(tt.to, sqlmock.AnyArg(), "app-1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO audit_log`).
				WithArgs("application_status_changed", "application", "app-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			out, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Status: tt.to, ActorID: "agency-user-1"})
			require.NoError(t, err)

			assert.Equal(t, tt.from, out.PreviousStatus)
			assert.Equal(t, tt.to, out.ApplicationStatus)
			assert.Equal(t, "vol-1", out.VolunteerID)
			assert.Equal(t, "proj-1", out.ProjectID)
			assert.NotEmpty(t, out.UpdatedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RejectedTransitions(t *testing.T) {
	tests := []struct {
		from, to string
	}{
		{models.ApplicationStatusRejected, models.ApplicationStatusAccepted},
		{models.ApplicationStatusWithdrawn, models.ApplicationStatusSubmitted},
		{models.ApplicationStatusAccepted, models.ApplicationStatusRejected},
		{models.ApplicationStatusSubmitted, models.ApplicationStatusSubmitted},
		{models.ApplicationStatusSubmitted, "archived"},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			h, mock := newHandler(t)

			mock.ExpectBegin()
			expectLoad(mock, tt.from)
			mock.ExpectRollback()

			out, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Status: tt.to})
			require.Error(t, err)
			assert.Nil(t, out)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, apperrors.ErrCodeInvalidStatusTransition, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_NotFound(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM applications`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "volunteer_id", "project_id"}))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Status: models.ApplicationStatusAccepted})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpdateFails(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectBegin()
	expectLoad(mock, models.ApplicationStatusSubmitted)
	mock.ExpectExec(`UPDATE applications`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Status: models.ApplicationStatusAccepted})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseUpdateFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_BeginFails(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Status: models.ApplicationStatusAccepted})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseUpdateFailed, stdErr.Code)
}

func TestHandler_Execute_MissingID(t *testing.T) {
	h, _ := newHandler(t)

	for _, id := range []string{"", "   "} {
		_, err := h.Execute(context.Background(), &Input{ApplicationID: id, Status: models.ApplicationStatusAccepted})

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrorCode("BUSINESS_RULE_VIOLATION"), stdErr.Code)
		assert.Equal(t, ErrMissingApplicationID.Error(), stdErr.Message)
		assert.False(t, stdErr.Retryable)
	}
}
