package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/critflow/studio/internal/models"
)

func TestBuildFixPrompt(t *testing.T) {
	card := &models.IssueCard{
		Issue:    "The hero section headline wraps to three lines on mobile",
		Category: models.CategoryDesign,
		Severity: models.SeverityMajor,
		Location: "hero section, viewport < 480px",
	}

	system, user := buildFixPrompt(card, "landing page")

	assert.Contains(t, system, "JSON object")
	assert.Contains(t, system, `"fix"`)
	assert.Contains(t, system, `"effort"`)
	assert.Contains(t, user, "landing page")
	assert.Contains(t, user, "design")
	assert.Contains(t, user, "major")
	assert.Contains(t, user, "headline wraps")
	assert.Contains(t, user, "viewport < 480px")
}

func TestBuildFixPromptIncludesExistingFix(t *testing.T) {
	card := &models.IssueCard{
		Issue: "Checkout button label is ambiguous",
		Fix:   "rename it",
	}

	_, user := buildFixPrompt(card, "")

	assert.Contains(t, user, "improve it")
	assert.Contains(t, user, "rename it")
	assert.NotContains(t, user, "Work under review")
}

func TestBuildTakeawaysPrompt(t *testing.T) {
	issues := []models.IssueCard{
		{Issue: "Navigation hides the search box", Severity: models.SeverityCritical, Priority: models.PriorityCritical},
		{Issue: "Footer links are low contrast", Severity: models.SeverityMinor, Priority: models.PriorityNiceToHave, Fix: "Raise contrast to 4.5:1"},
	}

	system, user := buildTakeawaysPrompt(issues)

	assert.Contains(t, system, "exactly 3")
	assert.Contains(t, system, `"issue"`)
	assert.Contains(t, system, `"fix"`)
	assert.Contains(t, user, "1. [critical/critical] Navigation hides the search box")
	assert.Contains(t, user, "2. [minor/nice-to-have] Footer links are low contrast")
	assert.Contains(t, user, "proposed fix: Raise contrast to 4.5:1")
}

func TestNewClient(t *testing.T) {
	c := NewClient("test-key", "claude-sonnet-4-5")
	assert.NotNil(t, c.api)
	assert.Equal(t, "claude-sonnet-4-5", string(c.model))
}
