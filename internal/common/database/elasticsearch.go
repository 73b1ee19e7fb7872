package database

import (
	"context"
	"fmt"

	"application-builder/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

func NewElasticsearch(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{Addresses: cfg.Addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return es, nil
}

func ElasticsearchCheck(es *elasticsearch.Client) HealthCheck {
	return func(ctx context.Context) error {
		res, err := es.Ping(es.Ping.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("elasticsearch ping failed: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("elasticsearch ping error: %s", res.Status())
		}
		return nil
	}
}
