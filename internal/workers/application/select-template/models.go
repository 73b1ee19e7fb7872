// internal/workers/application/select-template/models.go
package selecttemplate

import "application-builder/internal/models"

type Input struct {
	// TemplateID is optional; when empty the template is recommended from
	// the job.
	TemplateID     string                 `json:"templateId,omitempty"`
	Job            models.JobResponse     `json:"job"`
	PortfolioItems []models.PortfolioItem `json:"portfolioItems,omitempty"`
	UserName       string                 `json:"userName,omitempty"`
}

type Output struct {
	TemplateID   string `json:"templateId"`
	TemplateName string `json:"templateName"`
	Recommended  bool   `json:"recommended"`
	CoverLetter  string `json:"coverLetter"`
}
