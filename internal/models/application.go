package models

// ApplicationData is the form state collected by one wizard session.
type ApplicationData struct {
	CoverLetter            string   `json:"cover_letter"`
	SelectedPortfolioItems []string `json:"selected_portfolio_items"`
	AdditionalNotes        string   `json:"additional_notes"`
	CustomResume           *string  `json:"custom_resume,omitempty"`
}

// HasPortfolioItem reports whether id is selected.
func (d *ApplicationData) HasPortfolioItem(id string) bool {
	for _, existing := range d.SelectedPortfolioItems {
		if existing == id {
			return true
		}
	}
	return false
}

// TogglePortfolioItem adds id at the end of the selection, or removes it
// when already selected. It reports whether id is selected afterwards.
func (d *ApplicationData) TogglePortfolioItem(id string) bool {
	for i, existing := range d.SelectedPortfolioItems {
		if existing == id {
			d.SelectedPortfolioItems = append(d.SelectedPortfolioItems[:i:i], d.SelectedPortfolioItems[i+1:]...)
			return false
		}
	}
	d.SelectedPortfolioItems = append(d.SelectedPortfolioItems, id)
	return true
}

func (d ApplicationData) Clone() ApplicationData {
	out := d
	out.SelectedPortfolioItems = append(make([]string, 0, len(d.SelectedPortfolioItems)), d.SelectedPortfolioItems...)
	if d.CustomResume != nil {
		resume := *d.CustomResume
		out.CustomResume = &resume
	}
	return out
}

// SubmitApplicationRequest is the payload handed to the submission service.
// The portfolio selection and notes are carried for submitters that persist
// the whole application; the remote contract only requires the first three.
type SubmitApplicationRequest struct {
	JobID                  string   `json:"job_id"`
	CoverLetter            string   `json:"cover_letter"`
	CustomResume           *string  `json:"custom_resume,omitempty"`
	StudentID              string   `json:"student_id,omitempty"`
	SelectedPortfolioItems []string `json:"selected_portfolio_items,omitempty"`
	AdditionalNotes        string   `json:"additional_notes,omitempty"`
}

type UpdateApplicationRequest struct {
	CoverLetter  *string `json:"cover_letter,omitempty"`
	CustomResume *string `json:"custom_resume,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// ApiResponse is the envelope every application endpoint answers with.
type ApiResponse struct {
	Success bool            `json:"success"`
	Data    *ApplicationRef `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type ApplicationRef struct {
	ID string `json:"id"`
}

// ApplicationID returns the created id, or "" when absent.
func (r *ApiResponse) ApplicationID() string {
	if r == nil || r.Data == nil {
		return ""
	}
	return r.Data.ID
}

// Application statuses stored on the applications table.
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusWithdrawn = "withdrawn"
)
