// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/common/validation"
	"volunteer-workers/internal/models"
	"volunteer-workers/internal/workers/data-access/query-postgresql/queries"
)

const (
	TaskType = "send-notification"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	logger    logger.Logger
	failures  *apperrors.ErrorHandler
	sesClient SESService
	snsClient SNSService
	templates map[string]models.NotificationTemplate
}

// NewHandler builds the worker. A nil sesClient or snsClient disables that
// channel regardless of config.
func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		logger:    l,
		failures:  apperrors.NewErrorHandler(l),
		sesClient: sesClient,
		snsClient: snsClient,
		templates: defaultTemplates(),
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
	tmpl, ok := h.templates[input.NotificationType]
	if !ok {
		return nil, apperrors.NewBusinessRuleError("Unknown notification type",
			fmt.Sprintf("notificationType: %s", input.NotificationType))
	}

	sentAt := time.Now().UTC()
	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       map[string]string{},
		SentAt:         sentAt.Format(time.RFC3339),
	}

	contact, err := queries.FindContact(ctx, h.db, input.RecipientType, input.RecipientID)
	switch {
	case errors.Is(err, queries.ErrInvalidParam):
		return nil, apperrors.NewBusinessRuleError("Unsupported recipient type", err.Error())
	case errors.Is(err, sql.ErrNoRows):
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"type":        input.RecipientType,
		})
		return out, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewQueryTimeoutError(string(models.QueryTypeRecipientContact))
	case err != nil:
		return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryTypeRecipientContact), err)
	}

	data := templateData(input, contact)
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)
	smsText := renderTemplate(tmpl.SMS, data)
	if smsText == "" {
		smsText = body
	}

	// in-app row first; a failed insert is retried before anything goes out
	if err := h.storeNotification(ctx, out.NotificationID, input, subject, body, sentAt); err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("notification: %w", err))
	}
	out.Channels[ChannelInApp] = StatusSent

	if h.config.EmailEnabled && h.sesClient != nil && contact.Email != "" {
		status := StatusSent
		if !validation.ValidateEmail(contact.Email) {
			status = StatusFailed
			h.logger.Warn("invalid recipient email", map[string]interface{}{"recipientId": contact.ID})
		} else if err := h.sendEmail(ctx, contact.Email, subject, body); err != nil {
			status = StatusFailed
			h.logger.Error("email send failed", map[string]interface{}{
				"error":       err.Error(),
				"recipientId": contact.ID,
			})
		}
		out.Channels[ChannelEmail] = status
		metrics.NotificationsDelivered.WithLabelValues(ChannelEmail, status).Inc()
	}

	if h.config.SMSEnabled && h.snsClient != nil && contact.Phone != "" && h.smsEligible(input.Priority) {
		status := StatusSent
		if !validation.ValidatePhone(contact.Phone) {
			status = StatusFailed
			h.logger.Warn("invalid recipient phone", map[string]interface{}{"recipientId": contact.ID})
		} else if err := h.sendSMS(ctx, contact.Phone, smsText); err != nil {
			status = StatusFailed
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err.Error(),
				"recipientId": contact.ID,
			})
		}
		out.Channels[ChannelSMS] = status
		metrics.NotificationsDelivered.WithLabelValues(ChannelSMS, status).Inc()
	}

	out.Status = overallStatus(out.Channels)

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId":   out.NotificationID,
		"notificationType": input.NotificationType,
		"recipientId":      input.RecipientID,
		"status":           out.Status,
	})
	return out, nil
}

// overallStatus reports delivery over external channels only; the in-app
// row alone counts as disabled.
func overallStatus(channels map[string]string) string {
	status := StatusDisabled
	for ch, s := range channels {
		if ch == ChannelInApp {
			continue
		}
		if s == StatusFailed {
			return StatusFailed
		}
		status = StatusSent
	}
	return status
}

func (h *Handler) smsEligible(priority string) bool {
	threshold, ok := priorityRank[h.config.SMSPriority]
	if !ok {
		threshold = priorityRank[PriorityHigh]
	}
	rank, ok := priorityRank[strings.ToLower(priority)]
	return ok && rank >= threshold
}

func templateData(input *Input, contact *models.Contact) map[string]interface{} {
	data := map[string]interface{}{
		"recipientId":      input.RecipientID,
		"recipientName":    contact.Name,
		"notificationType": input.NotificationType,
		"projectId":        input.ProjectID,
		"applicationId":    input.ApplicationID,
		"priority":         input.Priority,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}
	return data
}

func (h *Handler) storeNotification(ctx context.Context, id string, input *Input, subject, body string, createdAt time.Time) error {
	payload, err := json.Marshal(map[string]interface{}{
		"subject":       subject,
		"body":          body,
		"projectId":     input.ProjectID,
		"applicationId": input.ApplicationID,
		"priority":      input.Priority,
	})
	if err != nil {
		return err
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, recipient_type, type, channel, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, input.RecipientID, input.RecipientType, input.NotificationType,
		ChannelInApp, StatusSent, string(payload), createdAt,
	)
	return err
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
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

// renderTemplate substitutes {{key}} placeholders in one left-to-right pass.
// Placeholders without a value are dropped and substituted text is never
// rescanned.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end == -1 {
			break
		}
		end += start + 2

		b.WriteString(rest[:start])
		switch v := data[rest[start+2:end]].(type) {
		case string:
			b.WriteString(v)
		case nil:
		default:
			fmt.Fprintf(&b, "%v", v)
		}
		rest = rest[end+2:]
	}
	b.WriteString(rest)

	return b.String()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
