// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	calls         []*ses.SendEmailInput
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type MockSNSService struct {
	calls       []*sns.PublishInput
	PublishFunc func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params)
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@volunteer.ng",
		SMSPriority:  PriorityHigh,
		Timeout:      30 * time.Second,
	}
}

func createTestInput(notificationType, priority string) *Input {
	return &Input{
		RecipientID:      "vol-001",
		RecipientType:    "volunteer",
		NotificationType: notificationType,
		ProjectID:        "proj-001",
		ApplicationID:    "app-001",
		Priority:         priority,
		Metadata: map[string]interface{}{
			"projectTitle": "Lagos Beach Cleanup",
		},
	}
}

type fixture struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	ses     *MockSESService
	sns     *MockSNSService
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{mock: mock, ses: &MockSESService{}, sns: &MockSNSService{}}
	f.handler = NewHandler(cfg, db, f.ses, f.sns, logger.NewTestLogger(t))
	return f
}

func (f *fixture) expectContact(email, phone interface{}) {
	f.mock.ExpectQuery(`SELECT id, full_name, email, phone FROM volunteers WHERE id = \$1`).
		WithArgs("vol-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone"}).
			AddRow("vol-001", "Ada Obi", email, phone))
}

func (f *fixture) expectInsert() {
	f.mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "vol-001", "volunteer", sqlmock.AnyArg(), ChannelInApp, StatusSent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.expectContact("ada@example.com", "+2348012345678")
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeApplicationAccepted, PriorityHigh))
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, StatusSent, out.Channels[ChannelEmail])
	assert.Equal(t, StatusSent, out.Channels[ChannelSMS])
	assert.NotEmpty(t, out.NotificationID)

	require.Len(t, f.ses.calls, 1)
	email := f.ses.calls[0]
	assert.Equal(t, []string{"ada@example.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "You're in: Lagos Beach Cleanup", aws.ToString(email.Message.Subject.Data))
	assert.Contains(t, aws.ToString(email.Message.Body.Text.Data), "Hello Ada Obi")
	assert.Equal(t, "noreply@volunteer.ng", aws.ToString(email.Source))

	require.Len(t, f.sns.calls, 1)
	assert.Equal(t, "+2348012345678", aws.ToString(f.sns.calls[0].PhoneNumber))
	assert.Equal(t, "Accepted for Lagos Beach Cleanup.", aws.ToString(f.sns.calls[0].Message))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSOnlyForHighPriority(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.expectContact("ada@example.com", "+2348012345678")
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeVolunteerMatch, PriorityNormal))
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Len(t, f.ses.calls, 1)
	assert.Empty(t, f.sns.calls)
	_, smsTried := out.Channels[ChannelSMS]
	assert.False(t, smsTried)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	f := newFixture(t, cfg)
	f.expectContact("ada@example.com", "+2348012345678")
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeProjectApproved, PriorityHigh))
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, out.Status)
	assert.Equal(t, StatusSent, out.Channels[ChannelInApp])
	assert.Empty(t, f.ses.calls)
	assert.Empty(t, f.sns.calls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoPhoneSkipsSMS(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.expectContact("ada@example.com", nil)
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeApplicationRejected, PriorityHigh))
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Empty(t, f.sns.calls)
}

func TestHandler_Execute_EmailFailureMarksFailed(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.ses.SendEmailFunc = func(context.Context, *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
		return nil, errors.New("MessageRejected: Email address is not verified")
	}
	f.expectContact("ada@example.com", "+2348012345678")
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeApplicationAccepted, PriorityHigh))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, StatusFailed, out.Channels[ChannelEmail])
	assert.Equal(t, StatusSent, out.Channels[ChannelSMS], "sms still attempted after email failure")
}

func TestHandler_Execute_InvalidEmailNotSent(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.expectContact("not-an-email", nil)
	f.expectInsert()

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeApplicationAccepted, PriorityLow))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Channels[ChannelEmail])
	assert.Empty(t, f.ses.calls)
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.mock.ExpectQuery(`FROM volunteers`).
		WithArgs("vol-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone"}))

	out, err := f.handler.Execute(context.Background(), createTestInput(TypeVolunteerMatch, PriorityHigh))
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, f.ses.calls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownType(t *testing.T) {
	f := newFixture(t, createTestConfig())

	_, err := f.handler.Execute(context.Background(), createTestInput("franchise_lead", PriorityHigh))

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrorCode("BUSINESS_RULE_VIOLATION"), stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_UnknownRecipientType(t *testing.T) {
	f := newFixture(t, createTestConfig())
	in := createTestInput(TypeProjectApproved, PriorityHigh)
	in.RecipientType = "seeker"

	_, err := f.handler.Execute(context.Background(), in)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrorCode("BUSINESS_RULE_VIOLATION"), stdErr.Code)
}

func TestHandler_Execute_InsertFailureIsRetryable(t *testing.T) {
	f := newFixture(t, createTestConfig())
	f.expectContact("ada@example.com", "+2348012345678")
	f.mock.ExpectExec(`INSERT INTO notifications`).WillReturnError(errors.New("connection reset"))

	_, err := f.handler.Execute(context.Background(), createTestInput(TypeApplicationAccepted, PriorityHigh))

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Empty(t, f.ses.calls, "nothing goes out before the row is stored")
	assert.Empty(t, f.sns.calls)
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]interface{}
		want string
	}{
		{"substitutes", "Hi {{name}}", map[string]interface{}{"name": "Ada"}, "Hi Ada"},
		{"drops missing", "Hi {{name}}{{missing}}!", map[string]interface{}{"name": "Ada"}, "Hi Ada!"},
		{"formats numbers", "{{count}} volunteers", map[string]interface{}{"count": 12}, "12 volunteers"},
		{"nil value", "[{{x}}]", map[string]interface{}{"x": nil}, "[]"},
		{"unterminated", "Hi {{name", map[string]interface{}{}, "Hi {{name"},
		{"repeated key", "{{name}} and {{name}}", map[string]interface{}{"name": "Ada"}, "Ada and Ada"},
		{"braces in value kept", "Hi {{title}}", map[string]interface{}{"title": "a {{b}} c", "b": "x"}, "Hi a {{b}} c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderTemplate(tt.tmpl, tt.data))
		})
	}
}

func TestRenderTemplate_ValuesAreNotRescanned(t *testing.T) {
	data := map[string]interface{}{
		"projectTitle":  "Beach {{recipientName}} cleanup",
		"recipientName": "Ada",
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, "Hi Beach {{recipientName}} cleanup", renderTemplate("Hi {{projectTitle}}", data))
	}
}

func TestDefaultTemplates_CoverEveryType(t *testing.T) {
	templates := defaultTemplates()
	for _, typ := range []string{
		TypeProjectApproved, TypeProjectRejected, TypeApplicationReceived,
		TypeApplicationAccepted, TypeApplicationRejected, TypeVolunteerMatch,
	} {
		tmpl, ok := templates[typ]
		require.True(t, ok, typ)
		assert.NotEmpty(t, tmpl.Subject, typ)
		assert.NotEmpty(t, tmpl.Body, typ)
	}
}

func TestSMSEligible(t *testing.T) {
	h := &Handler{config: &Config{SMSPriority: PriorityNormal}}
	assert.True(t, h.smsEligible("HIGH"))
	assert.True(t, h.smsEligible(PriorityNormal))
	assert.False(t, h.smsEligible(PriorityLow))
	assert.False(t, h.smsEligible(""))

	h.config.SMSPriority = "bogus"
	assert.False(t, h.smsEligible(PriorityNormal))
	assert.True(t, h.smsEligible(PriorityHigh))
}
