package steps

// Change is an edit emitted by a step component. The set is closed: only
// the types in this file implement it.
type Change interface {
	Kind() ChangeKind
	isChange()
}

type ChangeKind string

const (
	KindTemplateSelected     ChangeKind = "template_selected"
	KindCoverLetterEdited    ChangeKind = "cover_letter_edited"
	KindPortfolioItemToggled ChangeKind = "portfolio_item_toggled"
	KindNotesEdited          ChangeKind = "notes_edited"
	KindResumeAttached       ChangeKind = "resume_attached"
)

type TemplateSelected struct {
	ID string
}

type CoverLetterEdited struct {
	Text string
}

type PortfolioItemToggled struct {
	ID string
}

type NotesEdited struct {
	Text string
}

// ResumeAttached sets the custom resume; nil clears it.
type ResumeAttached struct {
	Resume *string
}

func (TemplateSelected) Kind() ChangeKind     { return KindTemplateSelected }
func (CoverLetterEdited) Kind() ChangeKind    { return KindCoverLetterEdited }
func (PortfolioItemToggled) Kind() ChangeKind { return KindPortfolioItemToggled }
func (NotesEdited) Kind() ChangeKind          { return KindNotesEdited }
func (ResumeAttached) Kind() ChangeKind       { return KindResumeAttached }

func (TemplateSelected) isChange()     {}
func (CoverLetterEdited) isChange()    {}
func (PortfolioItemToggled) isChange() {}
func (NotesEdited) isChange()          {}
func (ResumeAttached) isChange()       {}
