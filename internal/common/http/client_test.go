package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SendsBodyAndHeaders(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/applications", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second).WithHeader("Authorization", "Bearer key")
	resp, err := client.DoJSON(context.Background(), http.MethodPost, "/applications", map[string]string{"job_id": "j1"})

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, `{"success":true}`, string(resp.Body))
	assert.Equal(t, "j1", got["job_id"])
}

func TestDoJSON_ReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"duplicate"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).DoJSON(context.Background(), http.MethodDelete, "/applications/1", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDoJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL, time.Second).DoJSON(context.Background(), http.MethodGet, "/x", nil)
	assert.Error(t, err)
}
