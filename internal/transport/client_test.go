package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/pkg/errors"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ubuntu": {"ubuntu_manual_2.4": []}}`))
	}))
	defer srv.Close()

	var doc map[string]map[string][]string
	err := New(&BearerAuth{}, "secret").GetJSON(context.Background(), srv.URL, &doc)
	require.NoError(t, err)
	assert.Contains(t, doc["ubuntu"], "ubuntu_manual_2.4")
}

func TestGetJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var doc map[string]any
	err := New(nil, "").GetJSON(context.Background(), srv.URL, &doc)
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "maintenance")
}

func TestGetJSONMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ubuntu": [`))
	}))
	defer srv.Close()

	var doc map[string]any
	err := New(nil, "").GetJSON(context.Background(), srv.URL, &doc)
	require.Error(t, err)
	var parseErr *errors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "json", parseErr.Format)
}
