package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJob() models.JobResponse {
	return models.JobResponse{
		ID:       "job-1",
		Title:    "Data Engineer",
		Company:  "Initech",
		Category: "Data",
		Skills:   []string{"Python", "Spark"},
	}
}

type countingProvider struct {
	calls int
	job   *models.JobResponse
	err   error
}

func (c *countingProvider) GetJob(context.Context, string) (*models.JobResponse, error) {
	c.calls++
	return c.job, c.err
}

// ==========================
// Static Provider
// ==========================

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(sampleJob())

	job, err := p.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", job.Title)

	job.Skills[0] = "mutated"
	again, _ := p.GetJob(context.Background(), "job-1")
	assert.Equal(t, "Python", again.Skills[0])

	_, err = p.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

// ==========================
// Elasticsearch Provider
// ==========================

func newESServer(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchProvider_Found(t *testing.T) {
	source := sampleJob()
	source.ID = ""
	client := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/_doc/job-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_index":  "jobs",
			"_id":     "job-1",
			"found":   true,
			"_source": source,
		})
	})

	job, err := NewElasticsearchProvider(client, "jobs").GetJob(context.Background(), "job-1")

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "Initech", job.Company)
	assert.Equal(t, []string{"Python", "Spark"}, job.Skills)
}

func TestElasticsearchProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"_index":"jobs","_id":"x","found":false}`, ErrJobNotFound},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, ErrJobQueryFailed},
		{"bad body", http.StatusOK, `not-json`, ErrJobQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newESServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewElasticsearchProvider(client, "jobs").GetJob(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// ==========================
// Cached Provider
// ==========================

func TestCachedProvider_ReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	job := sampleJob()
	next := &countingProvider{job: &job}

	p := NewCachedProvider(next, rdb, time.Minute, logger.NewTestLogger(t))

	first, err := p.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	second, err := p.GetJob(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("job:job-1"))
	assert.Equal(t, time.Minute, mr.TTL("job:job-1"))

	mr.FastForward(2 * time.Minute)
	_, err = p.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_CacheErrorFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	job := sampleJob()
	data, _ := json.Marshal(&job)

	mock.ExpectGet("job:job-1").SetErr(errors.New("connection reset"))
	mock.ExpectSet("job:job-1", data, 5*time.Minute).SetErr(errors.New("connection reset"))

	next := &countingProvider{job: &job}
	p := NewCachedProvider(next, rdb, 5*time.Minute, logger.NewTestLogger(t))

	got, err := p.GetJob(context.Background(), "job-1")

	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", got.Title)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProvider_NotFoundIsNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("job:gone").RedisNil()

	next := &countingProvider{err: ErrJobNotFound}
	p := NewCachedProvider(next, rdb, time.Minute, logger.NewTestLogger(t))

	_, err := p.GetJob(context.Background(), "gone")

	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
