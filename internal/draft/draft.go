// Package draft assembles the persisted draft shape from a live session
// state and reconstructs the state on load. The serialized form carries
// format markers so the receiving side can tell this structured format
// apart from the legacy flat-text review format; round-tripping preserves
// card ids, deck order values, verdict content, and annotation links.
// UI-only session fields are transient and never serialized.
package draft

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/critflow/studio/internal/models"
)

// Format is the wire marker distinguishing studio drafts from legacy reviews.
const Format = "studio"

// Version of the draft schema.
const Version = 2

// Draft is the persisted/submitted snapshot of a studio session.
type Draft struct {
	FormatMarker string `json:"_format"`
	Version      int    `json:"_version"`

	ContentType      string                            `json:"contentType,omitempty"`
	FocusAreas       []string                          `json:"focusAreas,omitempty"`
	RubricRatings    map[string]int                    `json:"rubricRatings,omitempty"`
	RubricRationales map[string]models.RubricRationale `json:"rubricRationales,omitempty"`
	Notes            string                            `json:"notes,omitempty"`

	IssueCards    []models.IssueCard    `json:"issueCards"`
	StrengthCards []models.StrengthCard `json:"strengthCards"`
	Verdict       *models.VerdictCard   `json:"verdictCard,omitempty"`
	Annotations   []models.Annotation   `json:"annotations"`

	SavedAt time.Time `json:"savedAt"`
}

// FromState serializes the session state into a draft.
func FromState(st *models.StudioState, now time.Time) *Draft {
	snap := st.Clone()
	return &Draft{
		FormatMarker:     Format,
		Version:          Version,
		ContentType:      snap.ContentType,
		FocusAreas:       snap.FocusAreas,
		RubricRatings:    snap.RubricRatings,
		RubricRationales: snap.RubricRationales,
		Notes:            snap.Notes,
		IssueCards:       snap.IssueCards,
		StrengthCards:    snap.StrengthCards,
		Verdict:          snap.Verdict,
		Annotations:      snap.Annotations,
		SavedAt:          now.UTC(),
	}
}

// State reconstructs a session state from the draft. Card ids, order
// values, and annotation links come back exactly as serialized; no
// validation runs here (the validation gate is consulted on demand).
func (d *Draft) State() *models.StudioState {
	st := models.NewStudioState()
	st.ContentType = d.ContentType
	st.FocusAreas = append([]string(nil), d.FocusAreas...)
	if d.RubricRatings != nil {
		st.RubricRatings = make(map[string]int, len(d.RubricRatings))
		for k, v := range d.RubricRatings {
			st.RubricRatings[k] = v
		}
	}
	if d.RubricRationales != nil {
		st.RubricRationales = make(map[string]models.RubricRationale, len(d.RubricRationales))
		for k, v := range d.RubricRationales {
			st.RubricRationales[k] = v
		}
	}
	st.Notes = d.Notes
	st.IssueCards = append([]models.IssueCard(nil), d.IssueCards...)
	st.StrengthCards = append([]models.StrengthCard(nil), d.StrengthCards...)
	st.Annotations = append([]models.Annotation(nil), d.Annotations...)
	if d.Verdict != nil {
		v := *d.Verdict
		v.TopTakeaways = append([]models.Takeaway(nil), d.Verdict.TopTakeaways...)
		st.Verdict = &v
	}
	return st
}

// Encode marshals the draft to its wire form.
func (d *Draft) Encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return data, nil
}

// Decode parses a serialized draft and checks its format marker. Payloads
// that do not carry the studio marker are rejected; translating legacy
// flat-text reviews is the receiver's concern, not this core's.
func Decode(data []byte) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if d.FormatMarker != Format {
		return nil, fmt.Errorf("unsupported draft format %q (want %q)", d.FormatMarker, Format)
	}
	return &d, nil
}
