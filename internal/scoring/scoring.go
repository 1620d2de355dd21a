// Package scoring grades an evolving review draft with four heuristic
// signals: completeness, tone, clarity, and actionability. Everything here
// is a pure function of the snapshot; identical input always yields
// identical output, so the engine can re-run on every mutation.
package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/critflow/studio/internal/models"
)

// Tone is the estimated register of the review text.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneCritical     Tone = "critical"
	ToneEncouraging  Tone = "encouraging"
)

// Metrics holds the four advisory quality scores.
type Metrics struct {
	CompletenessScore  int  `json:"completeness_score"`
	EstimatedTone      Tone `json:"estimated_tone"`
	ClarityScore       int  `json:"clarity_score"`
	ActionabilityScore int  `json:"actionability_score"`
}

// Snapshot is the scoring view of a draft: just the signals the engine
// reads, decoupled from the full session state.
type Snapshot struct {
	Rating       int // 0 = unset
	FocusAreas   []string
	Summary      string
	RubricRated  int // number of rated rubric dimensions
	Strengths    []string
	Improvements []string
	Notes        string
}

// SnapshotFromState projects the session state onto the scoring inputs.
// Strengths come from the strength deck, improvements from the issue deck
// (problem plus remedy text).
func SnapshotFromState(st *models.StudioState) Snapshot {
	snap := Snapshot{
		FocusAreas:  st.FocusAreas,
		RubricRated: len(st.RubricRatings),
		Notes:       st.Notes,
	}
	if st.Verdict != nil {
		snap.Rating = st.Verdict.Rating
		snap.Summary = st.Verdict.Summary
	}
	for i := range st.StrengthCards {
		c := &st.StrengthCards[i]
		snap.Strengths = append(snap.Strengths, strings.TrimSpace(strings.Join([]string{c.What, c.Why, c.Impact}, " ")))
	}
	for i := range st.IssueCards {
		c := &st.IssueCards[i]
		snap.Improvements = append(snap.Improvements, strings.TrimSpace(c.Issue+" "+c.Fix))
	}
	return snap
}

var (
	encouragingWords = regexp.MustCompile(`(?i)\b(great|love|loved|excellent|awesome|amazing|fantastic|impressive|wonderful|solid|nicely)\b`)
	criticalWords    = regexp.MustCompile(`(?i)\b(bad|poor|wrong|terrible|broken|fails|failure|confusing|cluttered|messy|weak|sloppy)\b`)
	professionalRe   = regexp.MustCompile(`(?i)\b(consider|suggest|recommend|however|although|furthermore)\b`)
	sentenceSplitRe  = regexp.MustCompile(`[.!?]+`)
	actionVerbsRe    = regexp.MustCompile(`(?i)\b(add|remove|refactor|implement|fix|update|change|improve|optimize|simplify|enhance|consider|try)\b`)
)

// CalculateQualityMetrics derives all four scores from the snapshot.
func CalculateQualityMetrics(s Snapshot) Metrics {
	text := s.allText()
	return Metrics{
		CompletenessScore:  completeness(s),
		EstimatedTone:      estimateTone(text),
		ClarityScore:       clarity(text),
		ActionabilityScore: actionability(s),
	}
}

// allText concatenates every free-text field for tone and clarity analysis.
func (s Snapshot) allText() string {
	parts := make([]string, 0, len(s.Strengths)+len(s.Improvements)+2)
	if strings.TrimSpace(s.Summary) != "" {
		parts = append(parts, s.Summary)
	}
	for _, t := range s.Strengths {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	for _, t := range s.Improvements {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	if strings.TrimSpace(s.Notes) != "" {
		parts = append(parts, s.Notes)
	}
	return strings.Join(parts, " ")
}

// completeness awards 30 points for first-pass signals, 40 for rubric
// coverage, and 30 for feedback depth.
func completeness(s Snapshot) int {
	score := 0

	// First-pass signals (30).
	if s.Rating >= 1 {
		score += 10
	}
	if len(s.FocusAreas) >= 2 {
		score += 10
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.Summary)) >= 50 {
		score += 10
	}

	// Rubric coverage (40): full credit at four rated dimensions.
	rubric := s.RubricRated * 10
	if rubric > 40 {
		rubric = 40
	}
	score += rubric

	// Feedback depth (30).
	if countNonEmpty(s.Strengths) >= 2 {
		score += 10
	}
	if countNonEmpty(s.Improvements) >= 2 {
		score += 10
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.Notes)) >= 100 {
		score += 10
	}

	return clamp(score)
}

// estimateTone counts lexicon hits across all free text. Encouraging is
// checked before critical; the order matters for mixed text.
func estimateTone(text string) Tone {
	if strings.TrimSpace(text) == "" {
		return ToneCasual
	}
	if len(encouragingWords.FindAllString(text, -1)) > 2 {
		return ToneEncouraging
	}
	if len(criticalWords.FindAllString(text, -1)) > 2 {
		return ToneCritical
	}
	if professionalRe.MatchString(text) {
		return ToneProfessional
	}
	return ToneCasual
}

// clarity scores sentence and word length against readability bands.
func clarity(text string) int {
	sentences := nonEmpty(sentenceSplitRe.Split(text, -1))
	words := strings.Fields(text)
	if len(sentences) == 0 || len(words) == 0 {
		return 0
	}

	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	totalChars := 0
	for _, w := range words {
		totalChars += utf8.RuneCountInString(w)
	}
	charsPerWord := float64(totalChars) / float64(len(words))

	score := 100
	if wordsPerSentence > 25 {
		score -= 20
	}
	if wordsPerSentence > 30 {
		score -= 10
	}
	if wordsPerSentence < 10 {
		score -= 10
	}
	if charsPerWord > 7 {
		score -= 15
	}
	if charsPerWord > 9 {
		score -= 10
	}
	if wordsPerSentence >= 15 && wordsPerSentence <= 20 {
		score += 5
	}
	if charsPerWord >= 4 && charsPerWord <= 6 {
		score += 5
	}

	return clamp(score)
}

// actionability rewards concrete, specific improvement items.
func actionability(s Snapshot) int {
	improvements := nonEmpty(s.Improvements)
	if len(improvements) == 0 {
		return 0
	}

	score := len(improvements) * 10
	if score > 30 {
		score = 30
	}

	verbs := 0
	for _, item := range improvements {
		if actionVerbsRe.MatchString(item) {
			verbs += 10
		}
	}
	if verbs > 40 {
		verbs = 40
	}
	score += verbs

	totalLen := 0
	for _, item := range improvements {
		totalLen += utf8.RuneCountInString(item)
	}
	avgLen := float64(totalLen) / float64(len(improvements))
	switch {
	case avgLen > 50:
		score += 15
	case avgLen > 30:
		score += 10
	case avgLen > 20:
		score += 5
	}

	if s.RubricRated >= 3 {
		score += 15
	}

	return clamp(score)
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func countNonEmpty(parts []string) int {
	return len(nonEmpty(parts))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
