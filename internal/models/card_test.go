package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueCard_Complete(t *testing.T) {
	c := IssueCard{
		Issue: "The headline wraps badly on narrow viewports",
		Fix:   "Cap the headline width and reduce the font size below 480px",
	}
	assert.True(t, c.Complete())
}

func TestIssueCard_Complete_ShortIssue(t *testing.T) {
	c := IssueCard{
		Issue: "too small",
		Fix:   "Increase the touch target to at least 44px square",
	}
	assert.False(t, c.Complete())
}

func TestIssueCard_Complete_WhitespacePadding(t *testing.T) {
	// Padding must not count toward the completeness floor.
	c := IssueCard{
		Issue: "   bad    \n\t      ",
		Fix:   "Increase the touch target to at least 44px square",
	}
	assert.False(t, c.Complete())
}

func TestIssueCard_Complete_MissingFix(t *testing.T) {
	c := IssueCard{Issue: "The headline wraps badly on narrow viewports"}
	assert.False(t, c.Complete())
}

func TestIssueCard_IsQuickWin(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		effort   Effort
		want     bool
	}{
		{"critical quick fix", PriorityCritical, EffortQuickFix, true},
		{"important quick fix", PriorityImportant, EffortQuickFix, true},
		{"nice-to-have quick fix", PriorityNiceToHave, EffortQuickFix, false},
		{"critical refactor", PriorityCritical, EffortMajorRefactor, false},
		{"no effort set", PriorityCritical, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := IssueCard{Priority: tt.priority, Effort: tt.effort}
			assert.Equal(t, tt.want, c.IsQuickWin())
		})
	}
}

func TestStrengthCard_Complete(t *testing.T) {
	c := StrengthCard{What: "The onboarding flow is refreshingly short"}
	assert.True(t, c.Complete())

	c.What = "nice"
	assert.False(t, c.Complete())
}

func TestVerdictCard_Complete(t *testing.T) {
	now := time.Now()
	v := NewVerdictCard(now)
	assert.False(t, v.Complete(), "fresh verdict should be incomplete")
	assert.Equal(t, VerdictID, v.ID)
	assert.Len(t, v.TopTakeaways, RequiredTakeaways)

	v.Rating = 4
	v.Summary = "Strong landing page overall, but the checkout flow needs attention before launch. Details in the issue cards."
	for i := range v.TopTakeaways {
		v.TopTakeaways[i] = Takeaway{Issue: "contrast too low", Fix: "darken the text"}
	}
	assert.True(t, v.Complete())
}

func TestVerdictCard_Complete_SummaryBounds(t *testing.T) {
	v := NewVerdictCard(time.Now())
	v.Rating = 3
	for i := range v.TopTakeaways {
		v.TopTakeaways[i] = Takeaway{Issue: "contrast too low", Fix: "darken the text"}
	}

	v.Summary = "too short"
	assert.False(t, v.Complete())

	v.Summary = string(make([]byte, MaxSummaryLen+1))
	assert.False(t, v.Complete())
}

func TestVerdictCard_Complete_MultibyteSummary(t *testing.T) {
	// Summary bounds count characters, not bytes: 150 CJK runes are 450
	// bytes yet still well inside the 50-300 window.
	v := NewVerdictCard(time.Now())
	v.Rating = 4
	for i := range v.TopTakeaways {
		v.TopTakeaways[i] = Takeaway{Issue: "contrast too low", Fix: "darken the text"}
	}

	v.Summary = strings.Repeat("評", 150)
	assert.True(t, v.Complete())

	v.Summary = strings.Repeat("評", MinSummaryLen-1)
	assert.False(t, v.Complete(), "one rune under the floor should fail")
}

func TestIssueCard_Complete_MultibyteFloor(t *testing.T) {
	c := IssueCard{
		Issue: strings.Repeat("改", 4),
		Fix:   "Increase the touch target to at least 44px square",
	}
	assert.False(t, c.Complete(), "4 runes miss the floor even at 12 bytes")

	c.Issue = strings.Repeat("改", MinIssueTextLen)
	assert.True(t, c.Complete())
}

func TestVerdictCard_Complete_RatingBounds(t *testing.T) {
	v := NewVerdictCard(time.Now())
	v.Summary = "Strong landing page overall, but the checkout flow needs attention before launch."
	for i := range v.TopTakeaways {
		v.TopTakeaways[i] = Takeaway{Issue: "contrast too low", Fix: "darken the text"}
	}

	for _, rating := range []int{0, 6, -1} {
		v.Rating = rating
		assert.False(t, v.Complete(), "rating %d should fail", rating)
	}
	v.Rating = 1
	assert.True(t, v.Complete())
	v.Rating = 5
	assert.True(t, v.Complete())
}

func TestTakeaway_Complete(t *testing.T) {
	tw := Takeaway{Issue: "contrast", Fix: "darken"}
	assert.True(t, tw.Complete())

	tw = Takeaway{Issue: "bad", Fix: "darken the text"}
	assert.False(t, tw.Complete())

	tw = Takeaway{}
	assert.False(t, tw.Complete())
}
