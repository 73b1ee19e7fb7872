// Package validate holds the rules an application must satisfy before it
// can be submitted.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"application-builder/internal/models"
)

// MinCoverLetterLength is counted in characters after trimming.
const MinCoverLetterLength = 100

const (
	MsgCoverLetterRequired = "Cover letter is required"
	MsgPortfolioRequired   = "Please select at least one portfolio item"
)

var MsgCoverLetterTooShort = fmt.Sprintf("Cover letter must be at least %d characters", MinCoverLetterLength)

const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeTooShort        = "TOO_SHORT"
)

type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	IsValid    bool        `json:"isValid"`
	Errors     []string    `json:"errors"`
	Violations []Violation `json:"violations,omitempty"`
}

// ApplicationData runs every rule and reports all violations in a fixed
// order: cover letter first, then portfolio selection.
func ApplicationData(data models.ApplicationData) Result {
	var violations []Violation

	letter := strings.TrimSpace(data.CoverLetter)
	switch {
	case letter == "":
		violations = append(violations, Violation{
			Field:   "cover_letter",
			Code:    CodeMissingRequired,
			Message: MsgCoverLetterRequired,
		})
	case utf8.RuneCountInString(letter) < MinCoverLetterLength:
		violations = append(violations, Violation{
			Field:   "cover_letter",
			Code:    CodeTooShort,
			Message: MsgCoverLetterTooShort,
		})
	}

	if len(data.SelectedPortfolioItems) == 0 {
		violations = append(violations, Violation{
			Field:   "selected_portfolio_items",
			Code:    CodeMissingRequired,
			Message: MsgPortfolioRequired,
		})
	}

	errs := make([]string, 0, len(violations))
	for _, v := range violations {
		errs = append(errs, v.Message)
	}
	return Result{
		IsValid:    len(violations) == 0,
		Errors:     errs,
		Violations: violations,
	}
}
