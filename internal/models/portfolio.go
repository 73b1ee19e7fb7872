package models

type PortfolioItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Technologies   []string `json:"technologies"`
	RelevanceScore float64  `json:"relevance_score"`
	URL            string   `json:"url,omitempty"`
}
