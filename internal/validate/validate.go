// Package validate implements the studio validation gate: per-card
// completeness checks and the submission readiness rule. Validators
// report problems, they never block edits and never fail hard; anything
// flagged here only stands in the way of submission, not autosave.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/critflow/studio/internal/models"
)

// Result is the outcome of a validation check.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

func failure(errs ...string) Result {
	return Result{IsValid: false, Errors: errs}
}

func ok() Result {
	return Result{IsValid: true}
}

// IssueCard checks an issue card against its completeness floor.
func IssueCard(c *models.IssueCard) Result {
	var errs []string
	if !textAtLeast(c.Issue, models.MinIssueTextLen) {
		errs = append(errs, fmt.Sprintf("issue description must be at least %d characters", models.MinIssueTextLen))
	}
	if !textAtLeast(c.Fix, models.MinIssueTextLen) {
		errs = append(errs, fmt.Sprintf("suggested fix must be at least %d characters", models.MinIssueTextLen))
	}
	if len(errs) > 0 {
		return failure(errs...)
	}
	return ok()
}

// StrengthCard checks a strength card against its completeness floor.
func StrengthCard(c *models.StrengthCard) Result {
	if !textAtLeast(c.What, models.MinStrengthTextLen) {
		return failure(fmt.Sprintf("strength description must be at least %d characters", models.MinStrengthTextLen))
	}
	return ok()
}

// Verdict checks the verdict card's submit-readiness invariant.
func Verdict(v *models.VerdictCard) Result {
	if v == nil {
		return failure("verdict is missing")
	}
	var errs []string
	if v.Rating < 1 || v.Rating > 5 {
		errs = append(errs, "rating must be between 1 and 5")
	}
	if n := utf8.RuneCountInString(v.Summary); n < models.MinSummaryLen || n > models.MaxSummaryLen {
		errs = append(errs, fmt.Sprintf("summary must be %d-%d characters", models.MinSummaryLen, models.MaxSummaryLen))
	}
	if len(v.TopTakeaways) != models.RequiredTakeaways {
		errs = append(errs, fmt.Sprintf("exactly %d takeaways are required", models.RequiredTakeaways))
	} else {
		for i := range v.TopTakeaways {
			if !v.TopTakeaways[i].Complete() {
				errs = append(errs, fmt.Sprintf("takeaway %d needs both an issue and a fix of at least %d characters", i+1, models.MinTakeawayLen))
			}
		}
	}
	if len(errs) > 0 {
		return failure(errs...)
	}
	return ok()
}

// Readiness is the submission gate: the verdict must be complete, and
// every card that exists must be complete. An empty deck does not block
// submission; a half-filled card does.
func Readiness(st *models.StudioState) Result {
	var errs []string

	if v := Verdict(st.Verdict); !v.IsValid {
		errs = append(errs, v.Errors...)
	}
	for i := range st.IssueCards {
		if r := IssueCard(&st.IssueCards[i]); !r.IsValid {
			errs = append(errs, fmt.Sprintf("issue card %d is incomplete", i+1))
		}
	}
	for i := range st.StrengthCards {
		if r := StrengthCard(&st.StrengthCards[i]); !r.IsValid {
			errs = append(errs, fmt.Sprintf("strength card %d is incomplete", i+1))
		}
	}

	if len(errs) > 0 {
		return failure(errs...)
	}
	return ok()
}

func textAtLeast(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}
