package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CardType discriminates the three kinds of feedback cards.
type CardType string

const (
	CardTypeIssue    CardType = "issue"
	CardTypeStrength CardType = "strength"
	CardTypeVerdict  CardType = "verdict"
)

// IssueCategory classifies what aspect of the work an issue concerns.
type IssueCategory string

const (
	CategoryPerformance     IssueCategory = "performance"
	CategoryUX              IssueCategory = "ux"
	CategorySecurity        IssueCategory = "security"
	CategoryAccessibility   IssueCategory = "accessibility"
	CategoryMaintainability IssueCategory = "maintainability"
	CategoryDesign          IssueCategory = "design"
	CategoryContent         IssueCategory = "content"
	CategoryOther           IssueCategory = "other"
)

// Priority represents how urgently an issue should be addressed.
type Priority string

const (
	PriorityCritical   Priority = "critical"
	PriorityImportant  Priority = "important"
	PriorityNiceToHave Priority = "nice-to-have"
)

// Severity represents how badly the issue hurts the work as it stands.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityMajor      Severity = "major"
	SeverityMinor      Severity = "minor"
	SeveritySuggestion Severity = "suggestion"
)

// Confidence represents how sure the reviewer is that this is a real issue.
type Confidence string

const (
	ConfidenceCertain    Confidence = "certain"
	ConfidenceLikely     Confidence = "likely"
	ConfidenceSuggestion Confidence = "suggestion"
)

// Effort estimates how much work the proposed fix takes.
type Effort string

const (
	EffortQuickFix      Effort = "quick-fix"
	EffortModerate      Effort = "moderate"
	EffortMajorRefactor Effort = "major-refactor"
)

// MinIssueTextLen is the completeness floor for the issue and fix fields.
const MinIssueTextLen = 10

// MinStrengthTextLen is the completeness floor for a strength's "what" field.
const MinStrengthTextLen = 10

// Resource is a supporting link attached to an issue card.
type Resource struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// IssueCard captures a single defect found in the reviewed work.
type IssueCard struct {
	ID                string        `json:"id"`
	Category          IssueCategory `json:"category"`
	Issue             string        `json:"issue"`
	Fix               string        `json:"fix"`
	Location          string        `json:"location,omitempty"`
	Priority          Priority      `json:"priority"`
	Severity          Severity      `json:"severity"`
	Confidence        Confidence    `json:"confidence"`
	Effort            Effort        `json:"effort,omitempty"`
	Principle         string        `json:"principle,omitempty"`
	PrincipleCategory string        `json:"principleCategory,omitempty"`
	ImpactType        string        `json:"impactType,omitempty"`
	AfterState        string        `json:"afterState,omitempty"`
	Resources         []Resource    `json:"resources,omitempty"`
	Order             int           `json:"order"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`

	// UI state, not part of the persisted draft.
	IsExpanded bool `json:"-"`
	IsEditing  bool `json:"-"`
}

// Complete reports whether the card meets the completeness floor:
// both the problem and the concrete remedy described in at least
// MinIssueTextLen characters.
func (c *IssueCard) Complete() bool {
	return utf8.RuneCountInString(strings.TrimSpace(c.Issue)) >= MinIssueTextLen &&
		utf8.RuneCountInString(strings.TrimSpace(c.Fix)) >= MinIssueTextLen
}

// IsQuickWin reports whether the issue is both urgent and cheap to fix.
// Derived, never stored.
func (c *IssueCard) IsQuickWin() bool {
	return (c.Priority == PriorityCritical || c.Priority == PriorityImportant) &&
		c.Effort == EffortQuickFix
}

// StrengthCard captures a positive observation about the work.
type StrengthCard struct {
	ID        string    `json:"id"`
	What      string    `json:"what"`
	Why       string    `json:"why,omitempty"`
	Impact    string    `json:"impact,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	IsExpanded bool `json:"-"`
	IsEditing  bool `json:"-"`
}

// Complete reports whether the observation is substantial enough to count.
func (c *StrengthCard) Complete() bool {
	return utf8.RuneCountInString(strings.TrimSpace(c.What)) >= MinStrengthTextLen
}
