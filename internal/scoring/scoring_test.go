package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critflow/studio/internal/models"
)

func TestCalculateQualityMetrics_EmptySnapshot(t *testing.T) {
	m := CalculateQualityMetrics(Snapshot{})
	assert.Equal(t, 0, m.CompletenessScore)
	assert.Equal(t, ToneCasual, m.EstimatedTone)
	assert.Equal(t, 0, m.ClarityScore)
	assert.Equal(t, 0, m.ActionabilityScore)
}

func TestCalculateQualityMetrics_Deterministic(t *testing.T) {
	s := Snapshot{
		Rating:       4,
		FocusAreas:   []string{"visual", "copy"},
		Summary:      "A careful pass over the landing page with several concrete findings worth acting on soon.",
		RubricRated:  3,
		Strengths:    []string{"The palette is cohesive", "Navigation is obvious"},
		Improvements: []string{"Fix the contrast on body text", "Add focus outlines to all interactive elements"},
	}
	first := CalculateQualityMetrics(s)
	second := CalculateQualityMetrics(s)
	assert.Equal(t, first, second)
}

func TestCompleteness_FullCredit(t *testing.T) {
	s := Snapshot{
		Rating:      5,
		FocusAreas:  []string{"visual", "copy"},
		Summary:     strings.Repeat("x", 60),
		RubricRated: 4,
		Strengths:   []string{"one strength here", "another strength over here"},
		Improvements: []string{
			"first improvement suggestion",
			"second improvement suggestion",
		},
		Notes: strings.Repeat("n", 120),
	}
	m := CalculateQualityMetrics(s)
	assert.Equal(t, 100, m.CompletenessScore)
}

func TestCompleteness_RubricCapsAtFour(t *testing.T) {
	a := CalculateQualityMetrics(Snapshot{RubricRated: 4})
	b := CalculateQualityMetrics(Snapshot{RubricRated: 9})
	assert.Equal(t, a.CompletenessScore, b.CompletenessScore)
	assert.Equal(t, 40, a.CompletenessScore)
}

func TestCompleteness_PartialSignals(t *testing.T) {
	m := CalculateQualityMetrics(Snapshot{Rating: 3})
	assert.Equal(t, 10, m.CompletenessScore)

	// One focus area is not enough, one strength is not enough.
	m = CalculateQualityMetrics(Snapshot{
		Rating:     3,
		FocusAreas: []string{"visual"},
		Strengths:  []string{"only one"},
	})
	assert.Equal(t, 10, m.CompletenessScore)
}

func TestCompleteness_SummaryFloorCountsRunes(t *testing.T) {
	// 50 CJK runes are 150 bytes; the summary floor is in characters.
	m := CalculateQualityMetrics(Snapshot{Summary: strings.Repeat("評", 50)})
	assert.Equal(t, 10, m.CompletenessScore)

	m = CalculateQualityMetrics(Snapshot{Summary: strings.Repeat("評", 49)})
	assert.Equal(t, 0, m.CompletenessScore)
}

func TestCompleteness_BlankEntriesDoNotCount(t *testing.T) {
	m := CalculateQualityMetrics(Snapshot{
		Strengths: []string{"  ", "", "real strength"},
	})
	assert.Equal(t, 0, m.CompletenessScore)
}

func TestEstimateTone_Encouraging(t *testing.T) {
	text := "Great hero section. I love the palette and the layout is excellent throughout."
	assert.Equal(t, ToneEncouraging, estimateTone(text))
}

func TestEstimateTone_Critical(t *testing.T) {
	text := "The navigation is confusing, the footer is cluttered, and the form flow is broken."
	assert.Equal(t, ToneCritical, estimateTone(text))
}

func TestEstimateTone_Professional(t *testing.T) {
	text := "I would suggest tightening the header. However, the overall structure works."
	assert.Equal(t, ToneProfessional, estimateTone(text))
}

func TestEstimateTone_EncouragingWinsMixedText(t *testing.T) {
	// More than two hits on both lexicons: encouraging is checked first.
	text := "Great work, love it, excellent and awesome, though parts are bad, poor, wrong and broken."
	assert.Equal(t, ToneEncouraging, estimateTone(text))
}

func TestEstimateTone_TwoHitsNotEnough(t *testing.T) {
	// Exactly two encouraging hits fall through to casual.
	text := "Great stuff and an excellent start to the page."
	assert.Equal(t, ToneCasual, estimateTone(text))
}

func TestClarity_IdealBands(t *testing.T) {
	// 17 words per sentence, ~5 chars per word lands in both bonus bands.
	sentence := strings.TrimSpace(strings.Repeat("alpha bravo ", 8) + "alpha")
	score := clarity(sentence + ". " + sentence + ".")
	assert.Equal(t, 100, score)
}

func TestClarity_LongSentencesPenalized(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 32)) + "."
	short := "This sentence has about fifteen words in it which is quite readable overall you know."
	assert.Less(t, clarity(long), clarity(short))
}

func TestClarity_Empty(t *testing.T) {
	assert.Equal(t, 0, clarity(""))
	assert.Equal(t, 0, clarity("   "))
}

func TestActionability_NoImprovements(t *testing.T) {
	m := CalculateQualityMetrics(Snapshot{Strengths: []string{"plenty of strengths"}})
	assert.Equal(t, 0, m.ActionabilityScore)
}

func TestActionability_RewardsVerbsAndDetail(t *testing.T) {
	vague := Snapshot{Improvements: []string{"the header", "the footer"}}
	concrete := Snapshot{Improvements: []string{
		"Fix the contrast ratio on the body text so it passes WCAG AA",
		"Add visible focus outlines to every interactive element on the page",
	}}
	assert.Greater(t,
		CalculateQualityMetrics(concrete).ActionabilityScore,
		CalculateQualityMetrics(vague).ActionabilityScore)
}

func TestActionability_RubricBonus(t *testing.T) {
	base := Snapshot{Improvements: []string{"Fix the broken contact form validation"}}
	withRubric := base
	withRubric.RubricRated = 3
	assert.Equal(t,
		CalculateQualityMetrics(base).ActionabilityScore+15,
		CalculateQualityMetrics(withRubric).ActionabilityScore)
}

func TestScores_AlwaysInRange(t *testing.T) {
	snaps := []Snapshot{
		{},
		{Rating: 5, RubricRated: 10, FocusAreas: []string{"a", "b", "c"},
			Summary:      strings.Repeat("excellent great love amazing ", 20),
			Strengths:    []string{strings.Repeat("solid ", 30), "more", "and more"},
			Improvements: []string{strings.Repeat("fix add remove update improve ", 10), "x", "y", "z", "w"},
			Notes:        strings.Repeat("n", 500)},
	}
	for _, s := range snaps {
		m := CalculateQualityMetrics(s)
		for name, v := range map[string]int{
			"completeness":  m.CompletenessScore,
			"clarity":       m.ClarityScore,
			"actionability": m.ActionabilityScore,
		} {
			assert.GreaterOrEqual(t, v, 0, name)
			assert.LessOrEqual(t, v, 100, name)
		}
	}
}

func TestSnapshotFromState(t *testing.T) {
	st := models.NewStudioState()
	st.FocusAreas = []string{"visual"}
	st.RubricRatings = map[string]int{"clarity": 4, "impact": 3}
	st.Notes = "general notes"
	st.Verdict = models.NewVerdictCard(time.Now())
	st.Verdict.Rating = 4
	st.Verdict.Summary = "the summary"
	st.IssueCards = []models.IssueCard{{Issue: "low contrast", Fix: "darken the text"}}
	st.StrengthCards = []models.StrengthCard{{What: "clean layout", Why: "easy scanning"}}

	snap := SnapshotFromState(st)
	assert.Equal(t, 4, snap.Rating)
	assert.Equal(t, "the summary", snap.Summary)
	assert.Equal(t, 2, snap.RubricRated)
	require.Len(t, snap.Improvements, 1)
	assert.Equal(t, "low contrast darken the text", snap.Improvements[0])
	require.Len(t, snap.Strengths, 1)
	assert.Contains(t, snap.Strengths[0], "clean layout")
}
