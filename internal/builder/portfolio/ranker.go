// Package portfolio supplies the applicant's portfolio items ranked by
// relevance to the target job.
package portfolio

import (
	"errors"
	"sort"

	"application-builder/internal/models"
)

var ErrItemNotFound = errors.New("PORTFOLIO_ITEM_NOT_FOUND")

// Ranker serves a fixed item list with precomputed relevance scores.
type Ranker struct {
	items []models.PortfolioItem
}

func NewRanker(items []models.PortfolioItem) *Ranker {
	return &Ranker{items: append([]models.PortfolioItem(nil), items...)}
}

// NewDefaultRanker serves the built-in sample portfolio.
func NewDefaultRanker() *Ranker {
	return NewRanker(defaultItems)
}

// Ranked returns the items sorted by relevance, highest first. Equal scores
// keep their original order.
func (r *Ranker) Ranked() []models.PortfolioItem {
	return Rank(r.items)
}

func (r *Ranker) Find(id string) (models.PortfolioItem, error) {
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.PortfolioItem{}, ErrItemNotFound
}

// Select returns the items with the given ids, in id order, skipping
// unknown ids.
func (r *Ranker) Select(ids []string) []models.PortfolioItem {
	out := make([]models.PortfolioItem, 0, len(ids))
	for _, id := range ids {
		if it, err := r.Find(id); err == nil {
			out = append(out, it)
		}
	}
	return out
}

// Rank sorts a copy of items by descending relevance score.
func Rank(items []models.PortfolioItem) []models.PortfolioItem {
	out := append([]models.PortfolioItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

var defaultItems = []models.PortfolioItem{
	{
		ID:             "1",
		Title:          "E-commerce Platform",
		Description:    "Full-stack storefront with cart, checkout and an order management back office.",
		Technologies:   []string{"React", "Node.js", "PostgreSQL"},
		RelevanceScore: 0.85,
		URL:            "https://github.com/example/ecommerce-platform",
	},
	{
		ID:             "2",
		Title:          "Machine Learning Pipeline",
		Description:    "Batch feature extraction and model training pipeline with experiment tracking.",
		Technologies:   []string{"Python", "scikit-learn", "Airflow"},
		RelevanceScore: 0.72,
	},
	{
		ID:             "3",
		Title:          "Real-time Chat Service",
		Description:    "Horizontally scaled websocket chat with presence and message history.",
		Technologies:   []string{"Go", "Redis", "WebSockets"},
		RelevanceScore: 0.91,
		URL:            "https://github.com/example/chat-service",
	},
	{
		ID:             "4",
		Title:          "Mobile Fitness Tracker",
		Description:    "Cross-platform app that syncs workouts and visualises progress.",
		Technologies:   []string{"React Native", "Firebase"},
		RelevanceScore: 0.64,
	},
}
