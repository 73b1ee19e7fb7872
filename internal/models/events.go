package models

// ApplicationSubmittedEvent is emitted once per accepted application.
type ApplicationSubmittedEvent struct {
	ApplicationID  string   `json:"applicationId"`
	JobID          string   `json:"jobId"`
	StudentID      string   `json:"studentId,omitempty"`
	EmployerID     string   `json:"employerId,omitempty"`
	PortfolioItems []string `json:"portfolioItems,omitempty"`
	SubmittedAt    string   `json:"submittedAt"`
}
