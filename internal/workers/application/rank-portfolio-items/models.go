// internal/workers/application/rank-portfolio-items/models.go
package rankportfolioitems

import "application-builder/internal/models"

type Input struct {
	// Items defaults to the built-in portfolio when empty.
	Items    []models.PortfolioItem `json:"items,omitempty"`
	MaxItems int                    `json:"maxItems,omitempty"`
}

type Output struct {
	RankedItems []models.PortfolioItem `json:"rankedItems"`
	TopItemID   string                 `json:"topItemId,omitempty"`
	TotalItems  int                    `json:"totalItems"`
}
