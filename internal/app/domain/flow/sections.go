package flow

// SectionState is the tri-state used purely for navigation-sidebar display.
type SectionState int

const (
	Locked SectionState = iota
	Current
	Completed
)

func (s SectionState) String() string {
	switch s {
	case Current:
		return "current"
	case Completed:
		return "completed"
	default:
		return "locked"
	}
}

// Section is one sidebar entry of the 1003 navigation.
type Section struct {
	ID    string
	Title string
	State SectionState
}

// sectionOrder lists the top-level 1003 sections in display order, with the
// steps that belong to each.
var sectionOrder = []struct {
	id    string
	title string
	steps []Step
}{
	{"getting-started", "Getting Started", []Step{
		BorrowerInfo1, BorrowerInfo2, CoBorrowerQuestion,
		CoBorrowerInfo1, CoBorrowerInfo2, Review,
	}},
	{"getting-to-know-you", "Loan & Property", []Step{Intro, Loan, LoanCompleted}},
	{"assets", "Assets", nil},
	{"real-estate", "Real Estate", nil},
	{"declarations", "Declarations", nil},
	{"demographic-info", "Demographic Info", nil},
	{"additional-questions", "Additional Questions", nil},
}

// Sections returns the sidebar entries for the given current step. Sections
// before the one containing the step are completed, the containing section
// is current, and everything after stays locked.
func Sections(current Step) []Section {
	current = Resolve(current)

	activeIdx := 0
	for i, group := range sectionOrder {
		for _, s := range group.steps {
			if s == current {
				activeIdx = i
			}
		}
	}

	out := make([]Section, 0, len(sectionOrder))
	for i, group := range sectionOrder {
		state := Locked
		switch {
		case i < activeIdx:
			state = Completed
		case i == activeIdx:
			state = Current
		}
		out = append(out, Section{ID: group.id, Title: group.title, State: state})
	}
	return out
}
