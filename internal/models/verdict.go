package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// VerdictID is the fixed id of the singleton verdict card.
const VerdictID = "verdict"

// Verdict summary bounds and takeaway floors.
const (
	MinSummaryLen     = 50
	MaxSummaryLen     = 300
	MinTakeawayLen    = 5
	RequiredTakeaways = 3
)

// Readiness is the reviewer's overall call on how close the work is to shipping.
type Readiness string

const (
	ReadinessReady     Readiness = "ready"
	ReadinessAlmost    Readiness = "almost-ready"
	ReadinessNeedsWork Readiness = "needs-work"
	ReadinessNotReady  Readiness = "not-ready"
)

// Takeaway is one of the three headline issue/fix pairs in the verdict.
type Takeaway struct {
	Issue string `json:"issue"`
	Fix   string `json:"fix"`
}

// Complete reports whether both halves of the takeaway meet the floor.
func (t *Takeaway) Complete() bool {
	return utf8.RuneCountInString(strings.TrimSpace(t.Issue)) >= MinTakeawayLen &&
		utf8.RuneCountInString(strings.TrimSpace(t.Fix)) >= MinTakeawayLen
}

// ExecutiveSummary is the optional short-form wrap-up for skimming clients.
type ExecutiveSummary struct {
	TLDR             string    `json:"tldr,omitempty"`
	KeyStrengths     []string  `json:"keyStrengths,omitempty"` // up to 3
	KeyActions       []string  `json:"keyActions,omitempty"`   // up to 3
	OverallReadiness Readiness `json:"overallReadiness,omitempty"`
}

// VerdictCard is the single final-verdict card of a review. Exactly one
// exists per draft, with the fixed id "verdict".
type VerdictCard struct {
	ID               string            `json:"id"`
	Rating           int               `json:"rating"` // 1-5, 0 = unset
	Summary          string            `json:"summary"`
	TopTakeaways     []Takeaway        `json:"topTakeaways"` // always exactly 3 entries
	ExecutiveSummary *ExecutiveSummary `json:"executiveSummary,omitempty"`
	FollowUpOffer    string            `json:"followUpOffer,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewVerdictCard returns an empty verdict with its three takeaway slots.
func NewVerdictCard(now time.Time) *VerdictCard {
	return &VerdictCard{
		ID:           VerdictID,
		TopTakeaways: make([]Takeaway, RequiredTakeaways),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Complete reports whether the verdict is submit-ready: rating in [1,5],
// summary within bounds, and all three takeaways filled.
func (v *VerdictCard) Complete() bool {
	if v.Rating < 1 || v.Rating > 5 {
		return false
	}
	if n := utf8.RuneCountInString(v.Summary); n < MinSummaryLen || n > MaxSummaryLen {
		return false
	}
	if len(v.TopTakeaways) != RequiredTakeaways {
		return false
	}
	for i := range v.TopTakeaways {
		if !v.TopTakeaways[i].Complete() {
			return false
		}
	}
	return true
}
