package server

import (
	"application-builder/internal/builder/steps"
	"application-builder/internal/builder/wizard"
	"application-builder/internal/models"
)

type CreateSessionRequest struct {
	JobID     string `json:"job_id" validate:"required"`
	UserName  string `json:"user_name" validate:"required,max=200"`
	StudentID string `json:"student_id,omitempty"`
}

type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// Edits take pointers so an explicit empty string is distinguishable from a
// missing field.
type CoverLetterRequest struct {
	CoverLetter *string `json:"cover_letter" validate:"required"`
}

type NotesRequest struct {
	AdditionalNotes *string `json:"additional_notes" validate:"required"`
}

// ResumeRequest clears the resume when CustomResume is null or blank.
type ResumeRequest struct {
	CustomResume *string `json:"custom_resume"`
}

// UpdateApplicationRequest changes a submitted application. Absent fields
// are left untouched.
type UpdateApplicationRequest struct {
	CoverLetter  *string `json:"cover_letter,omitempty" validate:"omitempty,min=1"`
	CustomResume *string `json:"custom_resume,omitempty"`
	Status       *string `json:"status,omitempty"`
}

type SessionResponse struct {
	ID               string                 `json:"id"`
	Job              models.JobResponse     `json:"job"`
	CurrentStep      steps.Step             `json:"current_step"`
	Steps            []steps.Progress       `json:"steps"`
	View             steps.View             `json:"view"`
	SelectedTemplate string                 `json:"selected_template,omitempty"`
	Data             models.ApplicationData `json:"data"`
	IsSubmitting     bool                   `json:"is_submitting"`
	ApplicationID    string                 `json:"application_id,omitempty"`
	Notices          []models.Notice        `json:"notices"`
}

func newSessionResponse(id string, c *wizard.Controller) SessionResponse {
	state := c.State()
	return SessionResponse{
		ID:               id,
		Job:              state.Job,
		CurrentStep:      state.Step,
		Steps:            c.Progress(),
		View:             c.View(),
		SelectedTemplate: state.TemplateID,
		Data:             state.Data,
		IsSubmitting:     state.Submitting,
		ApplicationID:    state.ApplicationID,
		Notices:          c.DrainNotices(),
	}
}
