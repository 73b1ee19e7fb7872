package validate

import (
	"strings"
	"testing"

	"application-builder/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestApplicationData(t *testing.T) {
	tests := []struct {
		name      string
		data      models.ApplicationData
		wantValid bool
		wantErrs  []string
	}{
		{
			name:      "empty application reports both rules in order",
			data:      models.ApplicationData{CoverLetter: "", SelectedPortfolioItems: []string{}},
			wantValid: false,
			wantErrs:  []string{MsgCoverLetterRequired, MsgPortfolioRequired},
		},
		{
			name:      "long letter with one item is valid",
			data:      models.ApplicationData{CoverLetter: strings.Repeat("x", 150), SelectedPortfolioItems: []string{"1"}},
			wantValid: true,
			wantErrs:  []string{},
		},
		{
			name:      "whitespace only letter counts as missing",
			data:      models.ApplicationData{CoverLetter: " \n\t ", SelectedPortfolioItems: []string{"1"}},
			wantValid: false,
			wantErrs:  []string{MsgCoverLetterRequired},
		},
		{
			name:      "short letter",
			data:      models.ApplicationData{CoverLetter: strings.Repeat("x", 99), SelectedPortfolioItems: []string{"1"}},
			wantValid: false,
			wantErrs:  []string{MsgCoverLetterTooShort},
		},
		{
			name:      "padding does not count toward the minimum",
			data:      models.ApplicationData{CoverLetter: "   " + strings.Repeat("x", 99) + "   ", SelectedPortfolioItems: []string{"1"}},
			wantValid: false,
			wantErrs:  []string{MsgCoverLetterTooShort},
		},
		{
			name:      "exactly the minimum",
			data:      models.ApplicationData{CoverLetter: strings.Repeat("é", MinCoverLetterLength), SelectedPortfolioItems: []string{"1"}},
			wantValid: true,
			wantErrs:  []string{},
		},
		{
			name:      "short letter and no items",
			data:      models.ApplicationData{CoverLetter: "Hello"},
			wantValid: false,
			wantErrs:  []string{MsgCoverLetterTooShort, MsgPortfolioRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplicationData(tt.data)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantErrs, result.Errors)
			assert.Len(t, result.Violations, len(tt.wantErrs))
		})
	}
}

func TestApplicationData_ViolationFields(t *testing.T) {
	result := ApplicationData(models.ApplicationData{})
	assert.Equal(t, []Violation{
		{Field: "cover_letter", Code: CodeMissingRequired, Message: MsgCoverLetterRequired},
		{Field: "selected_portfolio_items", Code: CodeMissingRequired, Message: MsgPortfolioRequired},
	}, result.Violations)
}
