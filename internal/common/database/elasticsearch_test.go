package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func fakeES(t *testing.T, fn roundTripFunc) *ElasticsearchClient {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: fn,
	})
	require.NoError(t, err)
	return &ElasticsearchClient{Client: es}
}

func statusResponse(status int) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		status  int
		want    bool
		wantErr bool
	}{
		{http.StatusOK, true, false},
		{http.StatusNotFound, false, false},
		{http.StatusForbidden, false, true},
	}

	for _, tt := range tests {
		es := fakeES(t, func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "/volunteers", r.URL.Path)
			return statusResponse(tt.status), nil
		})

		got, err := es.IndexExists(context.Background(), "volunteers")
		if tt.wantErr {
			assert.Error(t, err, tt.status)
			continue
		}
		require.NoError(t, err, tt.status)
		assert.Equal(t, tt.want, got, tt.status)
	}
}

func TestPing(t *testing.T) {
	es := fakeES(t, func(*http.Request) (*http.Response, error) {
		return statusResponse(http.StatusOK), nil
	})
	assert.NoError(t, es.Ping(context.Background()))

	down := fakeES(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	assert.Error(t, down.Ping(context.Background()))
}
