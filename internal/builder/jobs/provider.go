// Package jobs loads the job posting a wizard session applies to.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"application-builder/internal/models"
)

var (
	ErrJobNotFound    = errors.New("JOB_NOT_FOUND")
	ErrJobQueryFailed = errors.New("JOB_QUERY_FAILED")
)

type Provider interface {
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
}

// StaticProvider serves a fixed set of jobs.
type StaticProvider struct {
	mu   sync.RWMutex
	jobs map[string]models.JobResponse
}

func NewStaticProvider(jobs ...models.JobResponse) *StaticProvider {
	p := &StaticProvider{jobs: make(map[string]models.JobResponse, len(jobs))}
	for _, j := range jobs {
		p.jobs[j.ID] = j
	}
	return p
}

func (p *StaticProvider) Put(job models.JobResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs[job.ID] = job
}

func (p *StaticProvider) GetJob(_ context.Context, id string) (*models.JobResponse, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	job.Skills = append([]string(nil), job.Skills...)
	return &job, nil
}
