// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	JobID                  string   `json:"jobId"`
	StudentID              string   `json:"studentId"`
	CoverLetter            string   `json:"coverLetter"`
	CustomResume           *string  `json:"customResume,omitempty"`
	SelectedPortfolioItems []string `json:"selectedPortfolioItems"`
	AdditionalNotes        string   `json:"additionalNotes,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	EmployerID        string `json:"employerId,omitempty"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
