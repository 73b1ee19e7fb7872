package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "job:"

// CachedProvider is a read-through Redis cache in front of another
// provider. Cache failures are logged and fall through.
type CachedProvider struct {
	next   Provider
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(next Provider, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "job-cache"}),
	}
}

func (p *CachedProvider) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	key := cacheKeyPrefix + id

	val, err := p.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var job models.JobResponse
		if jsonErr := json.Unmarshal([]byte(val), &job); jsonErr == nil {
			return &job, nil
		}
		p.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		p.logger.Warn("job cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	job, err := p.next.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(job)
	if err == nil {
		if err := p.redis.Set(ctx, key, data, p.ttl).Err(); err != nil {
			p.logger.Warn("job cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return job, nil
}
