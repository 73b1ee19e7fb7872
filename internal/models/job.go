package models

// JobResponse is the job posting an application targets.
type JobResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	EmployerID  string   `json:"employer_id,omitempty"`
}
