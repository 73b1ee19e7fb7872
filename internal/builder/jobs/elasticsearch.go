package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"application-builder/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchProvider reads job documents by id from the jobs index.
type ElasticsearchProvider struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchProvider(client *elasticsearch.Client, index string) *ElasticsearchProvider {
	return &ElasticsearchProvider{client: client, index: index}
}

type getResponse struct {
	ID     string             `json:"_id"`
	Found  bool               `json:"found"`
	Source models.JobResponse `json:"_source"`
}

func (p *ElasticsearchProvider) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	res, err := p.client.Get(p.index, id, p.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJobQueryFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrJobQueryFailed, res.Status())
	}

	var doc getResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrJobQueryFailed, err)
	}
	if !doc.Found {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	job := doc.Source
	if job.ID == "" {
		job.ID = doc.ID
	}
	return &job, nil
}
