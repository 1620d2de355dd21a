package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudioState_AnnotationIDs(t *testing.T) {
	st := NewStudioState()
	st.Annotations = []Annotation{
		{ID: "a1", LinkedCardID: "card-1"},
		{ID: "a2", LinkedCardID: "card-2"},
		{ID: "a3", LinkedCardID: "card-1"},
		{ID: "a4"},
	}

	assert.Equal(t, []string{"a1", "a3"}, st.AnnotationIDs("card-1"))
	assert.Equal(t, []string{"a2"}, st.AnnotationIDs("card-2"))
	assert.Empty(t, st.AnnotationIDs("card-3"))
}

func TestStudioState_LinkableCardExists(t *testing.T) {
	st := NewStudioState()
	st.IssueCards = []IssueCard{{ID: "i1"}}
	st.StrengthCards = []StrengthCard{{ID: "s1"}}
	st.Verdict = NewVerdictCard(time.Now())

	assert.True(t, st.LinkableCardExists("i1"))
	assert.True(t, st.LinkableCardExists("s1"))
	assert.False(t, st.LinkableCardExists(VerdictID), "verdict is never a link target")
	assert.False(t, st.LinkableCardExists("nope"))
}

func TestStudioState_NextOrders(t *testing.T) {
	st := NewStudioState()
	assert.Equal(t, 0, st.NextIssueOrder())
	assert.Equal(t, 0, st.NextStrengthOrder())
	assert.Equal(t, 1, st.NextAnnotationNumber())

	st.IssueCards = []IssueCard{{ID: "i1", Order: 0}, {ID: "i2", Order: 3}}
	st.Annotations = []Annotation{{ID: "a1", Number: 1}, {ID: "a2", Number: 5}}
	assert.Equal(t, 4, st.NextIssueOrder())
	assert.Equal(t, 6, st.NextAnnotationNumber())
}

func TestStudioState_Clone_DeepCopies(t *testing.T) {
	end := 30.0
	st := NewStudioState()
	st.IssueCards = []IssueCard{{
		ID:        "i1",
		Issue:     "original issue",
		Resources: []Resource{{URL: "https://example.com"}},
	}}
	st.StrengthCards = []StrengthCard{{ID: "s1", What: "original what"}}
	st.Annotations = []Annotation{{ID: "a1", Type: AnnotationTimestamp, Timestamp: 10, TimestampEnd: &end}}
	st.Verdict = NewVerdictCard(time.Now())
	st.Verdict.TopTakeaways[0] = Takeaway{Issue: "original", Fix: "original"}
	st.Verdict.ExecutiveSummary = &ExecutiveSummary{KeyStrengths: []string{"fast"}}
	st.FocusAreas = []string{"visual"}
	st.RubricRatings = map[string]int{"clarity": 4}
	st.RubricRationales = map[string]RubricRationale{"clarity": {Strengths: "crisp"}}
	saved := time.Now()
	st.LastSavedAt = &saved

	clone := st.Clone()
	require.NotSame(t, st, clone)

	// Mutating the clone must not touch the original.
	clone.IssueCards[0].Issue = "mutated"
	clone.IssueCards[0].Resources[0].URL = "https://mutated.example"
	clone.StrengthCards[0].What = "mutated"
	clone.Annotations[0].LinkedCardID = "i1"
	*clone.Annotations[0].TimestampEnd = 99
	clone.Verdict.TopTakeaways[0].Issue = "mutated"
	clone.Verdict.ExecutiveSummary.KeyStrengths[0] = "mutated"
	clone.FocusAreas[0] = "mutated"
	clone.RubricRatings["clarity"] = 1
	clone.RubricRationales["clarity"] = RubricRationale{Gaps: "mutated"}

	assert.Equal(t, "original issue", st.IssueCards[0].Issue)
	assert.Equal(t, "https://example.com", st.IssueCards[0].Resources[0].URL)
	assert.Equal(t, "original what", st.StrengthCards[0].What)
	assert.Empty(t, st.Annotations[0].LinkedCardID)
	assert.Equal(t, 30.0, *st.Annotations[0].TimestampEnd)
	assert.Equal(t, "original", st.Verdict.TopTakeaways[0].Issue)
	assert.Equal(t, []string{"fast"}, st.Verdict.ExecutiveSummary.KeyStrengths)
	assert.Equal(t, []string{"visual"}, st.FocusAreas)
	assert.Equal(t, 4, st.RubricRatings["clarity"])
	assert.Equal(t, "crisp", st.RubricRationales["clarity"].Strengths)
}

func TestStudioState_FindHelpers(t *testing.T) {
	st := NewStudioState()
	st.IssueCards = []IssueCard{{ID: "i1"}, {ID: "i2"}}
	st.Annotations = []Annotation{{ID: "a1"}}

	assert.Equal(t, 1, st.FindIssueCard("i2"))
	assert.Equal(t, -1, st.FindIssueCard("i9"))
	assert.Equal(t, 0, st.FindAnnotation("a1"))
	assert.Equal(t, -1, st.FindStrengthCard("i1"))
}
