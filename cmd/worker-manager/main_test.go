package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"volunteer-workers/internal/common/camunda"
	"volunteer-workers/internal/common/config"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/location"
)

func TestRetryWithBackoff_EventuallySucceeds(t *testing.T) {
	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "postgres")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		return errors.New("no route to host")
	}, 3, time.Millisecond, logger.NewTestLogger(t), "redis")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "redis failed after 3 attempts")
}

func TestServeMux_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newServeMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestServeMux_Ready(t *testing.T) {
	defer goleak.VerifyNone(t)

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all up", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServeMux(map[string]func(context.Context) error{"postgres": ok, "redis": ok}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("one down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServeMux(map[string]func(context.Context) error{"postgres": ok, "redis": down}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}

func TestServeMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newServeMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestBuildRegistrations_RespectsEnabledFlags(t *testing.T) {
	cfg := &config.Config{
		Locations: config.LocationsConfig{
			VolunteerSource: config.VolunteerSourcePostgres,
			CacheTTLSeconds: 60,
			MaxCandidates:   100,
		},
		Workers: map[string]config.WorkerConfig{
			"match-volunteers":          {Enabled: true, MaxJobsActive: 4, Timeout: 15000},
			"query-postgresql":          {Enabled: false},
			"query-elasticsearch":       {Enabled: false},
			"validate-application-data": {Enabled: true, MaxJobsActive: 2, Timeout: 5000},
			"create-application-record": {Enabled: false},
			"update-application-status": {Enabled: false},
			"review-project":            {Enabled: true, MaxJobsActive: 1, Timeout: 10000},
			"send-notification":         {Enabled: false},
		},
	}

	regs, err := buildRegistrations(context.Background(), &dependencies{
		cfg:     cfg,
		regions: location.DefaultRegionTable(),
		log:     logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	got := map[string]camunda.Registration{}
	for _, r := range regs {
		got[r.TaskType] = r
	}
	require.Len(t, got, 3)
	assert.Equal(t, 4, got["match-volunteers"].MaxJobsActive)
	assert.Equal(t, 15*time.Second, got["match-volunteers"].Timeout)
	assert.Contains(t, got, "validate-application-data")
	assert.Contains(t, got, "review-project")
}

func TestCheckCatalog_ToleratesMissingFile(t *testing.T) {
	checkCatalog(filepath.Join(t.TempDir(), "missing.json"), nil, logger.NewTestLogger(t))
}

func TestCheckCatalog_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[{"id":"project.review.decide","taskType":"review-project"}]}`), 0o600))

	checkCatalog(path, []camunda.Registration{{TaskType: "review-project"}, {TaskType: "match-volunteers"}}, logger.NewTestLogger(t))
}
