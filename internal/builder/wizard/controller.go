// Package wizard drives one guided application: the current step, the
// aggregate form state, the validation gate and the final submission.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/steps"
	"application-builder/internal/builder/templates"
	"application-builder/internal/builder/validate"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"
	"application-builder/internal/models"
)

const (
	DefaultFailureMessage = "Failed to submit application"
	SuccessMessage        = "Application submitted successfully!"
)

// Submitter hands a validated application to the submission service. A
// non-nil error means the call itself failed; a rejected application comes
// back as a response with Success false.
type Submitter interface {
	Submit(ctx context.Context, req models.SubmitApplicationRequest) (*models.ApiResponse, error)
}

type Options struct {
	Job       models.JobResponse
	UserName  string
	StudentID string
	Ranker    *portfolio.Ranker
	Submitter Submitter
	Logger    logger.Logger
	// OnSubmitted runs after a successful submission, outside the lock.
	OnSubmitted func(applicationID string)
}

type Controller struct {
	mu sync.Mutex

	job         models.JobResponse
	userName    string
	studentID   string
	ranker      *portfolio.Ranker
	submitter   Submitter
	log         logger.Logger
	onSubmitted func(string)

	step          steps.Step
	templateID    string
	data          models.ApplicationData
	submitting    bool
	submitted     bool
	closed        bool
	applicationID string
	notices       []models.Notice
}

func New(opts Options) *Controller {
	ranker := opts.Ranker
	if ranker == nil {
		ranker = portfolio.NewDefaultRanker()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Controller{
		job:         opts.Job,
		userName:    opts.UserName,
		studentID:   opts.StudentID,
		ranker:      ranker,
		submitter:   opts.Submitter,
		log:         log.WithFields(map[string]interface{}{"jobId": opts.Job.ID}),
		onSubmitted: opts.OnSubmitted,
		step:        steps.FirstStep,
		data:        models.ApplicationData{SelectedPortfolioItems: []string{}},
	}
}

// mutable reports why state cannot change right now. Callers hold mu.
func (c *Controller) mutable() error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	if c.submitted {
		return ErrAlreadySubmitted
	}
	if c.closed {
		return ErrSessionClosed
	}
	return nil
}

// Close ends the wizard without submitting. It fails while a submission is
// in flight; afterwards every mutation returns ErrSessionClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmissionInFlight
	}
	c.closed = true
	return nil
}

// SelectTemplate chooses a template and replaces the cover letter with the
// template populated for this job. The step does not change.
func (c *Controller) SelectTemplate(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	return c.selectTemplate(id)
}

func (c *Controller) selectTemplate(id string) error {
	tpl, err := templates.Find(id)
	if err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}
	c.templateID = tpl.ID
	c.data.CoverLetter = templates.Populate(tpl.Template, &c.job, c.ranker.Ranked(), c.userName)
	return nil
}

// Next advances one step. The template step is gated on a selection and
// the review step is the last one.
func (c *Controller) Next() (steps.Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return c.step, err
	}
	if c.step == steps.StepTemplate && c.templateID == "" {
		metrics.BlockedTransitions.WithLabelValues(c.step.ID(), "template_required").Inc()
		return c.step, ErrTemplateRequired
	}
	if c.step < steps.LastStep {
		c.moveTo(c.step + 1)
	}
	return c.step, nil
}

func (c *Controller) Previous() (steps.Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return c.step, err
	}
	if c.step > steps.FirstStep {
		c.moveTo(c.step - 1)
	}
	return c.step, nil
}

func (c *Controller) moveTo(to steps.Step) {
	metrics.StepTransitions.WithLabelValues(c.step.ID(), to.ID()).Inc()
	c.log.Debug("step changed", map[string]interface{}{"from": c.step.ID(), "to": to.ID()})
	c.step = to
}

// Apply reduces one step edit into the form state.
func (c *Controller) Apply(change steps.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}

	switch ch := change.(type) {
	case steps.TemplateSelected:
		return c.selectTemplate(ch.ID)
	case steps.CoverLetterEdited:
		c.data.CoverLetter = ch.Text
	case steps.PortfolioItemToggled:
		if _, err := c.ranker.Find(ch.ID); err != nil {
			return fmt.Errorf("%w: %s", err, ch.ID)
		}
		c.data.TogglePortfolioItem(ch.ID)
	case steps.NotesEdited:
		c.data.AdditionalNotes = ch.Text
	case steps.ResumeAttached:
		if ch.Resume == nil || strings.TrimSpace(*ch.Resume) == "" {
			c.data.CustomResume = nil
		} else {
			resume := *ch.Resume
			c.data.CustomResume = &resume
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownChange, change)
	}
	return nil
}

// Submit validates the application and hands it to the submitter. It is
// only accepted on the review step. The lock is released for the duration
// of the call; the submitting flag keeps every other mutation out meanwhile.
// The step never changes.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.mutable(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.step != steps.StepReview {
		metrics.BlockedTransitions.WithLabelValues(c.step.ID(), "not_on_review").Inc()
		step := c.step
		c.mu.Unlock()
		return "", fmt.Errorf("%w: current step is %s", ErrNotOnReview, step.ID())
	}

	result := validate.ApplicationData(c.data)
	if !result.IsValid {
		for _, v := range result.Violations {
			metrics.ValidationFailures.WithLabelValues(v.Field + ":" + v.Code).Inc()
		}
		for _, msg := range result.Errors {
			c.notify(models.NoticeError, msg)
		}
		c.mu.Unlock()
		return "", &ValidationError{Errors: result.Errors}
	}

	req := models.SubmitApplicationRequest{
		JobID:                  c.job.ID,
		CoverLetter:            c.data.CoverLetter,
		StudentID:              c.studentID,
		SelectedPortfolioItems: append([]string(nil), c.data.SelectedPortfolioItems...),
		AdditionalNotes:        c.data.AdditionalNotes,
	}
	if c.data.CustomResume != nil {
		resume := *c.data.CustomResume
		req.CustomResume = &resume
	}
	c.submitting = true
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.callSubmitter(ctx, req)

	c.mu.Lock()
	c.submitting = false

	if err != nil {
		c.log.WithError(err).Error("application submission failed", map[string]interface{}{
			"duration": time.Since(start).String(),
		})
		c.notify(models.NoticeError, DefaultFailureMessage)
		metrics.Submissions.WithLabelValues("error").Inc()
		c.mu.Unlock()
		return "", &SubmissionError{Message: DefaultFailureMessage, cause: err}
	}

	if resp == nil || !resp.Success {
		msg := DefaultFailureMessage
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		c.log.Warn("application rejected", map[string]interface{}{"message": msg})
		c.notify(models.NoticeError, msg)
		metrics.Submissions.WithLabelValues("rejected").Inc()
		c.mu.Unlock()
		return "", &SubmissionError{Message: msg}
	}

	id := resp.ApplicationID()
	c.applicationID = id
	c.submitted = true
	c.notify(models.NoticeSuccess, SuccessMessage)
	metrics.Submissions.WithLabelValues("success").Inc()
	c.log.Info("application submitted", map[string]interface{}{
		"applicationId": id,
		"duration":      time.Since(start).String(),
	})
	onSubmitted := c.onSubmitted
	c.mu.Unlock()

	if onSubmitted != nil {
		onSubmitted(id)
	}
	return id, nil
}

// callSubmitter turns a panicking or missing submitter into an error so the
// submitting flag is always cleared.
func (c *Controller) callSubmitter(ctx context.Context, req models.SubmitApplicationRequest) (resp *models.ApiResponse, err error) {
	if c.submitter == nil {
		return nil, fmt.Errorf("no submitter configured")
	}
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("submitter panic: %v", r)
		}
	}()
	return c.submitter.Submit(ctx, req)
}

func (c *Controller) notify(level models.NoticeLevel, msg string) {
	c.notices = append(c.notices, models.Notice{Level: level, Message: msg})
}

// DrainNotices returns the queued notices and clears the queue.
func (c *Controller) DrainNotices() []models.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	if out == nil {
		out = []models.Notice{}
	}
	return out
}

func (c *Controller) Step() steps.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Progress() []steps.Progress {
	return steps.ProgressFor(c.Step())
}

// View builds the view model of the current step.
func (c *Controller) View() steps.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	templateName := ""
	if tpl, err := templates.Find(c.templateID); err == nil {
		templateName = tpl.Name
	}

	switch c.step {
	case steps.StepTemplate:
		return steps.NewTemplateSelection(templates.All(), c.templateID, templates.Recommend(&c.job).ID)
	case steps.StepCoverLetter:
		return steps.NewCoverLetter(c.data.CoverLetter, templateName)
	case steps.StepPortfolio:
		return steps.NewPortfolioSelection(c.ranker.Ranked(), c.data)
	case steps.StepReview:
		data := c.data.Clone()
		return steps.NewReview(c.job, templateName, data, c.ranker.Select(data.SelectedPortfolioItems))
	default:
		panic(fmt.Sprintf("wizard: unhandled step %d", int(c.step)))
	}
}

// State is a consistent read of everything the session API reports.
type State struct {
	Job           models.JobResponse
	Step          steps.Step
	TemplateID    string
	Data          models.ApplicationData
	Submitting    bool
	Submitted     bool
	ApplicationID string
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Job:           c.job,
		Step:          c.step,
		TemplateID:    c.templateID,
		Data:          c.data.Clone(),
		Submitting:    c.submitting,
		Submitted:     c.submitted,
		ApplicationID: c.applicationID,
	}
}
