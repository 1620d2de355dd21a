package models

import "time"

// DeckTab identifies which deck the studio UI is showing.
type DeckTab string

const (
	DeckTabIssues    DeckTab = "issues"
	DeckTabStrengths DeckTab = "strengths"
	DeckTabVerdict   DeckTab = "verdict"
)

// RubricRationale records the reviewer's reasoning behind a rubric rating.
type RubricRationale struct {
	Strengths string `json:"strengths,omitempty"`
	Gaps      string `json:"gaps,omitempty"`
}

// StudioState is the aggregate root of a review session: the card decks,
// the annotations anchored to the work, rubric data, and the transient
// UI/save bookkeeping. It is created empty (or hydrated from a persisted
// draft) when a reviewer opens a claimed slot, and every user action
// produces a new state via the reducer.
type StudioState struct {
	IssueCards    []IssueCard    `json:"issueCards"`
	StrengthCards []StrengthCard `json:"strengthCards"`
	Verdict       *VerdictCard   `json:"verdictCard"`
	Annotations   []Annotation   `json:"annotations"`

	FocusAreas       []string                   `json:"focusAreas,omitempty"`
	RubricRatings    map[string]int             `json:"rubricRatings,omitempty"` // dimension -> 1..5
	RubricRationales map[string]RubricRationale `json:"rubricRationales,omitempty"`
	ContentType      string                     `json:"contentType,omitempty"`
	Notes            string                     `json:"notes,omitempty"` // free-form additional notes

	// UI-only, never persisted.
	ActiveCardID  string  `json:"-"`
	EditingCardID string  `json:"-"`
	SelectionMode string  `json:"-"`
	ActiveDeckTab DeckTab `json:"-"`

	// Save bookkeeping, never persisted.
	IsSaving    bool       `json:"-"`
	LastSavedAt *time.Time `json:"-"`
	SaveError   string     `json:"-"`
}

// NewStudioState returns an empty session state.
func NewStudioState() *StudioState {
	return &StudioState{ActiveDeckTab: DeckTabIssues}
}

// FindIssueCard returns the index of the issue card with the given id, or -1.
func (s *StudioState) FindIssueCard(id string) int {
	for i := range s.IssueCards {
		if s.IssueCards[i].ID == id {
			return i
		}
	}
	return -1
}

// FindStrengthCard returns the index of the strength card with the given id, or -1.
func (s *StudioState) FindStrengthCard(id string) int {
	for i := range s.StrengthCards {
		if s.StrengthCards[i].ID == id {
			return i
		}
	}
	return -1
}

// FindAnnotation returns the index of the annotation with the given id, or -1.
func (s *StudioState) FindAnnotation(id string) int {
	for i := range s.Annotations {
		if s.Annotations[i].ID == id {
			return i
		}
	}
	return -1
}

// LinkableCardExists reports whether id names an existing issue or strength
// card. The verdict is never a link target.
func (s *StudioState) LinkableCardExists(id string) bool {
	return s.FindIssueCard(id) >= 0 || s.FindStrengthCard(id) >= 0
}

// AnnotationIDs returns the ids of all annotations linked to the given card,
// in annotation order. This is the derived side of the card/annotation edge.
func (s *StudioState) AnnotationIDs(cardID string) []string {
	var ids []string
	for i := range s.Annotations {
		if s.Annotations[i].LinkedCardID == cardID {
			ids = append(ids, s.Annotations[i].ID)
		}
	}
	return ids
}

// NextIssueOrder returns max order + 1 across the issue deck.
func (s *StudioState) NextIssueOrder() int {
	next := 0
	for i := range s.IssueCards {
		if s.IssueCards[i].Order >= next {
			next = s.IssueCards[i].Order + 1
		}
	}
	return next
}

// NextStrengthOrder returns max order + 1 across the strength deck.
func (s *StudioState) NextStrengthOrder() int {
	next := 0
	for i := range s.StrengthCards {
		if s.StrengthCards[i].Order >= next {
			next = s.StrengthCards[i].Order + 1
		}
	}
	return next
}

// NextAnnotationNumber returns max display number + 1, starting at 1.
func (s *StudioState) NextAnnotationNumber() int {
	next := 1
	for i := range s.Annotations {
		if s.Annotations[i].Number >= next {
			next = s.Annotations[i].Number + 1
		}
	}
	return next
}

// Clone returns a deep copy of the state. The reducer never mutates its
// input; it clones and edits the copy.
func (s *StudioState) Clone() *StudioState {
	out := *s

	out.IssueCards = make([]IssueCard, len(s.IssueCards))
	copy(out.IssueCards, s.IssueCards)
	for i := range out.IssueCards {
		if rs := s.IssueCards[i].Resources; rs != nil {
			out.IssueCards[i].Resources = append([]Resource(nil), rs...)
		}
	}

	out.StrengthCards = make([]StrengthCard, len(s.StrengthCards))
	copy(out.StrengthCards, s.StrengthCards)

	out.Annotations = make([]Annotation, len(s.Annotations))
	copy(out.Annotations, s.Annotations)
	for i := range out.Annotations {
		if te := s.Annotations[i].TimestampEnd; te != nil {
			v := *te
			out.Annotations[i].TimestampEnd = &v
		}
	}

	if s.Verdict != nil {
		v := *s.Verdict
		v.TopTakeaways = append([]Takeaway(nil), s.Verdict.TopTakeaways...)
		if es := s.Verdict.ExecutiveSummary; es != nil {
			esc := *es
			esc.KeyStrengths = append([]string(nil), es.KeyStrengths...)
			esc.KeyActions = append([]string(nil), es.KeyActions...)
			v.ExecutiveSummary = &esc
		}
		out.Verdict = &v
	}

	out.FocusAreas = append([]string(nil), s.FocusAreas...)

	if s.RubricRatings != nil {
		out.RubricRatings = make(map[string]int, len(s.RubricRatings))
		for k, v := range s.RubricRatings {
			out.RubricRatings[k] = v
		}
	}
	if s.RubricRationales != nil {
		out.RubricRationales = make(map[string]RubricRationale, len(s.RubricRationales))
		for k, v := range s.RubricRationales {
			out.RubricRationales[k] = v
		}
	}

	if s.LastSavedAt != nil {
		ts := *s.LastSavedAt
		out.LastSavedAt = &ts
	}

	return &out
}
