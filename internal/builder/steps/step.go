// Package steps defines the four wizard steps, the view model each step
// renders and the closed set of edits a step can emit.
package steps

import "fmt"

type Step int

const (
	StepTemplate Step = iota
	StepCoverLetter
	StepPortfolio
	StepReview
)

const (
	FirstStep = StepTemplate
	LastStep  = StepReview
)

// All lists the steps in wizard order.
var All = []Step{StepTemplate, StepCoverLetter, StepPortfolio, StepReview}

func (s Step) ID() string {
	switch s {
	case StepTemplate:
		return "template"
	case StepCoverLetter:
		return "cover-letter"
	case StepPortfolio:
		return "portfolio"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func (s Step) Label() string {
	switch s {
	case StepTemplate:
		return "Choose Template"
	case StepCoverLetter:
		return "Cover Letter"
	case StepPortfolio:
		return "Portfolio"
	case StepReview:
		return "Review & Submit"
	default:
		return ""
	}
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string { return s.ID() }

func ParseStep(id string) (Step, error) {
	for _, s := range All {
		if s.ID() == id {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown wizard step %q", id)
}

func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid wizard step %d", int(s))
	}
	return []byte(s.ID()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	parsed, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Progress is one entry of the step indicator.
type Progress struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// ProgressFor projects the indicator for the given current step.
func ProgressFor(current Step) []Progress {
	out := make([]Progress, 0, len(All))
	for _, s := range All {
		out = append(out, Progress{
			ID:        s.ID(),
			Label:     s.Label(),
			Completed: s < current,
			Current:   s == current,
		})
	}
	return out
}
