package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-workers/pkg/registry"
)

func TestRun_AddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	var out bytes.Buffer

	err := run([]string{"add", "--path", path,
		"--id", "project.review.decide",
		"--displayName", "Review Project",
		"--description", "Approve or reject a pending project",
		"--category", "project",
		"--taskType", "review-project",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added activity: project.review.decide")

	require.NoError(t, run([]string{"update", "--path", path,
		"--id", "project.review.decide", "--field", "retries", "--value", "3"}, &out))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Lookup("review-project")
	require.True(t, ok)
	assert.Equal(t, 3, a.Retries)
	assert.NotEmpty(t, reg.LastUpdated)

	out.Reset()
	require.NoError(t, run([]string{"validate", "--path", path}, &out))
	assert.Contains(t, out.String(), "Found 1 activities")
}

func TestRun_AddRejectsDuplicateAndBadNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	add := func(id, taskType string) error {
		return run([]string{"add", "--path", path, "--id", id, "--displayName", "X",
			"--description", "d", "--category", "c", "--taskType", taskType}, &bytes.Buffer{})
	}

	require.NoError(t, add("matching.volunteers.match", "match-volunteers"))
	assert.Error(t, add("matching.volunteers.match", "other-task"))
	assert.Error(t, add("MatchVolunteers", "match-volunteers-v2"))
}

func TestRun_UpdateErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"activities":[{"id":"project.review.decide","taskType":"review-project","displayName":"R","category":"project"}]}`), 0o600))

	assert.Error(t, run([]string{"update", "--path", path, "--id", "nope.nope.nope", "--field", "status", "--value", "x"}, &bytes.Buffer{}))
	assert.Error(t, run([]string{"update", "--path", path, "--id", "project.review.decide", "--field", "colour", "--value", "x"}, &bytes.Buffer{}))
	assert.Error(t, run([]string{"update", "--path", path, "--id", "project.review.decide", "--field", "timeout", "--value", "soon"}, &bytes.Buffer{}))
}

func TestRun_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"activities":[{"id":"project.review.decide","taskType":"review-project"}]}`), 0o600))

	var out bytes.Buffer
	err := run([]string{"missing", "--path", path, "--taskTypes", "review-project, send-notification"}, &out)

	require.Error(t, err)
	assert.Equal(t, "send-notification\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "registry-updater")
	assert.Contains(t, out.String(), "missing")

	assert.Error(t, run([]string{"add", "--path", filepath.Join(t.TempDir(), "r.json"), "--id", "a.b.c"}, &out),
		"required flags are enforced")
	assert.Error(t, run([]string{"frobnicate"}, &out))
}
