// internal/workers/matching/match-volunteers/handler.go
package matchvolunteers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "volunteer-workers/internal/common/errors"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/location"
)

const (
	TaskType = "match-volunteers"
)

var ErrMissingProjectID = errors.New("projectId is required")

// VolunteerSource lists match candidates. Implementations may use the
// constraint to narrow the fetch; the matcher filters exactly either way.
type VolunteerSource interface {
	ListCandidates(ctx context.Context, c location.Constraint, limit int) ([]location.Profile, error)
}

type Handler struct {
	config   *Config
	matcher  *location.Matcher
	projects location.ProjectFinder
	source   VolunteerSource
	logger   logger.Logger
	failures *apperrors.ErrorHandler
}

func NewHandler(config *Config, matcher *location.Matcher, projects location.ProjectFinder, source VolunteerSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		matcher:  matcher,
		projects: projects,
		source:   source,
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
		return nil, apperrors.NewBusinessRuleError(ErrMissingProjectID.Error(), "match-volunteers input")
	}

	project, err := h.projectLocation(ctx, input)
	if err != nil {
		return nil, err
	}

	constraint, warnings := h.matcher.Resolve(project)
	if err := h.reportWarnings(input.ProjectID, warnings); err != nil {
		return nil, err
	}

	candidates := []location.Profile{}
	if constraint.Tier != location.TierNone {
		candidates, err = h.source.ListCandidates(ctx, constraint, h.config.MaxCandidates)
		switch {
		case err == nil:
		case errors.Is(err, location.ErrTooManyCandidates):
			return nil, apperrors.NewCandidateLimitError(h.config.MaxCandidates, err)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError("volunteer_candidates")
		default:
			return nil, apperrors.NewVolunteerLookupFailedError(err)
		}
	}
	candidateCount := len(candidates)
	result := h.matcher.MatchVolunteers(project, candidates)

	tier := constraint.Tier.String()
	metrics.MatchAttempts.WithLabelValues(tier).Inc()
	metrics.MatchedVolunteers.WithLabelValues(tier).Observe(float64(len(result.Matched)))

	ids := result.MatchedIDs()
	if input.Limit > 0 && len(ids) > input.Limit {
		ids = ids[:input.Limit]
	}

	if warnings == nil {
		warnings = []location.Warning{}
	}

	h.logger.Info("volunteers matched", map[string]interface{}{
		"projectId":      input.ProjectID,
		"constraint":     constraint.String(),
		"candidateCount": candidateCount,
		"matchCount":     len(result.Matched),
	})

	return &Output{
		ProjectID:           input.ProjectID,
		MatchedVolunteerIDs: ids,
		MatchCount:          len(result.Matched),
		CandidateCount:      candidateCount,
		Tier:                constraint.Tier,
		Constraint:          constraint.String(),
		Warnings:            warnings,
		MatchedAt:           time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// projectLocation returns the inline descriptor if given, otherwise loads
// the stored project.
func (h *Handler) projectLocation(ctx context.Context, input *Input) (location.Descriptor, error) {
	if input.Project != nil {
		return *input.Project, nil
	}

	d, err := location.LoadProject(ctx, h.projects, input.ProjectID)
	if err == nil {
		return d, nil
	}

	var resErr *location.ResolutionError
	switch {
	case errors.As(err, &resErr) && resErr.NotFound():
		return location.Descriptor{}, apperrors.NewProjectNotFoundError(input.ProjectID)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return location.Descriptor{}, apperrors.NewQueryTimeoutError("project_location")
	default:
		return location.Descriptor{}, apperrors.NewProjectLookupFailedError(input.ProjectID, err)
	}
}
