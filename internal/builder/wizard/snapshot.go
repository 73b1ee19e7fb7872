package wizard

import (
	"fmt"

	"application-builder/internal/builder/steps"
	"application-builder/internal/builder/templates"
	"application-builder/internal/models"
)

// Snapshot is the persisted form of a controller. An in-flight submission
// is never persisted; a restored controller is always interactive or
// already submitted.
type Snapshot struct {
	Job           models.JobResponse     `json:"job"`
	UserName      string                 `json:"user_name"`
	StudentID     string                 `json:"student_id,omitempty"`
	Step          steps.Step             `json:"step"`
	TemplateID    string                 `json:"template_id,omitempty"`
	Data          models.ApplicationData `json:"data"`
	Submitted     bool                   `json:"submitted"`
	ApplicationID string                 `json:"application_id,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Job:           c.job,
		UserName:      c.userName,
		StudentID:     c.studentID,
		Step:          c.step,
		TemplateID:    c.templateID,
		Data:          c.data.Clone(),
		Submitted:     c.submitted,
		ApplicationID: c.applicationID,
	}
}

// Restore rebuilds a controller from a snapshot. The job and user fields of
// opts are taken from the snapshot.
func Restore(opts Options, snap Snapshot) (*Controller, error) {
	if !snap.Step.Valid() {
		return nil, fmt.Errorf("%w: step %d", ErrInvalidSnapshot, int(snap.Step))
	}
	if snap.TemplateID != "" {
		if _, err := templates.Find(snap.TemplateID); err != nil {
			return nil, fmt.Errorf("%w: template %s", ErrInvalidSnapshot, snap.TemplateID)
		}
	} else if snap.Step != steps.StepTemplate {
		return nil, fmt.Errorf("%w: step %s without a template", ErrInvalidSnapshot, snap.Step)
	}

	opts.Job = snap.Job
	opts.UserName = snap.UserName
	opts.StudentID = snap.StudentID
	c := New(opts)
	c.step = snap.Step
	c.templateID = snap.TemplateID
	c.data = snap.Data.Clone()
	if c.data.SelectedPortfolioItems == nil {
		c.data.SelectedPortfolioItems = []string{}
	}
	c.submitted = snap.Submitted
	c.applicationID = snap.ApplicationID
	return c, nil
}
