package steps

import (
	"strings"
	"unicode/utf8"

	"application-builder/internal/builder/validate"
	"application-builder/internal/models"
)

// View is the render model of one step.
type View interface {
	Step() Step
}

type TemplateSelectionView struct {
	Templates     []models.CoverLetterTemplate `json:"templates"`
	SelectedID    string                       `json:"selected_id,omitempty"`
	RecommendedID string                       `json:"recommended_id"`
}

func (TemplateSelectionView) Step() Step { return StepTemplate }

type CoverLetterView struct {
	Text         string `json:"text"`
	Length       int    `json:"length"`
	MinLength    int    `json:"min_length"`
	Remaining    int    `json:"remaining"`
	TemplateName string `json:"template_name,omitempty"`
}

func (CoverLetterView) Step() Step { return StepCoverLetter }

type PortfolioOption struct {
	models.PortfolioItem
	Selected bool `json:"selected"`
}

type PortfolioSelectionView struct {
	Items         []PortfolioOption `json:"items"`
	SelectedCount int               `json:"selected_count"`
}

func (PortfolioSelectionView) Step() Step { return StepPortfolio }

type ReviewView struct {
	Job          models.JobResponse     `json:"job"`
	TemplateName string                 `json:"template_name,omitempty"`
	Data         models.ApplicationData `json:"data"`
	Items        []models.PortfolioItem `json:"items"`
	Validation   validate.Result        `json:"validation"`
}

func (ReviewView) Step() Step { return StepReview }

func NewTemplateSelection(catalog []models.CoverLetterTemplate, selectedID, recommendedID string) TemplateSelectionView {
	return TemplateSelectionView{
		Templates:     catalog,
		SelectedID:    selectedID,
		RecommendedID: recommendedID,
	}
}

func NewCoverLetter(text, templateName string) CoverLetterView {
	length := utf8.RuneCountInString(strings.TrimSpace(text))
	remaining := validate.MinCoverLetterLength - length
	if remaining < 0 {
		remaining = 0
	}
	return CoverLetterView{
		Text:         text,
		Length:       length,
		MinLength:    validate.MinCoverLetterLength,
		Remaining:    remaining,
		TemplateName: templateName,
	}
}

// NewPortfolioSelection expects ranked items and marks the selected ones.
func NewPortfolioSelection(ranked []models.PortfolioItem, data models.ApplicationData) PortfolioSelectionView {
	options := make([]PortfolioOption, 0, len(ranked))
	count := 0
	for _, it := range ranked {
		selected := data.HasPortfolioItem(it.ID)
		if selected {
			count++
		}
		options = append(options, PortfolioOption{PortfolioItem: it, Selected: selected})
	}
	return PortfolioSelectionView{Items: options, SelectedCount: count}
}

// NewReview lists the selected items in selection order.
func NewReview(job models.JobResponse, templateName string, data models.ApplicationData, selected []models.PortfolioItem) ReviewView {
	return ReviewView{
		Job:          job,
		TemplateName: templateName,
		Data:         data,
		Items:        selected,
		Validation:   validate.ApplicationData(data),
	}
}
