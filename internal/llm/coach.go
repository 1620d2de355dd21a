// Package llm is the optional review coach: it drafts concrete remedy
// text for issue cards and proposes verdict takeaways from the issue
// deck. Advisory only — nothing in the studio core (reducer, scoring,
// validation) ever calls it, so the core stays deterministic.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/critflow/studio/internal/models"
)

// Client wraps the Anthropic API for review coaching.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildFixPrompt constructs the system and user prompts for suggesting a
// concrete remedy for an issue card.
func buildFixPrompt(card *models.IssueCard, contentType string) (system string, user string) {
	system = `You help reviewers turn vague criticism into actionable feedback. Given an issue found during a review, return ONLY a JSON object with these fields:
- "fix": a concrete, specific remedy the creator can act on (2-4 sentences, imperative voice, name the exact change to make)
- "effort": one of "quick-fix", "moderate", "major-refactor"

Rules:
- The fix must be something the creator can start doing immediately
- Never restate the problem; describe only the remedy
- Match the fix to the issue's category and location when given
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	if contentType != "" {
		sb.WriteString("Work under review: ")
		sb.WriteString(contentType)
		sb.WriteString("\n")
	}
	sb.WriteString("Issue category: ")
	sb.WriteString(string(card.Category))
	sb.WriteString("\nSeverity: ")
	sb.WriteString(string(card.Severity))
	sb.WriteString("\n\nProblem:\n")
	sb.WriteString(card.Issue)
	if card.Location != "" {
		sb.WriteString("\n\nLocation: ")
		sb.WriteString(card.Location)
	}
	if card.Fix != "" {
		sb.WriteString("\n\nReviewer's current fix text (improve it): ")
		sb.WriteString(card.Fix)
	}
	user = sb.String()
	return
}

// SuggestedFix holds the coach's remedy proposal for an issue card.
type SuggestedFix struct {
	Fix    string `json:"fix"`
	Effort string `json:"effort"`
}

// SuggestFix asks the model for a concrete remedy for the given issue card.
func (c *Client) SuggestFix(ctx context.Context, card *models.IssueCard, contentType string) (*SuggestedFix, error) {
	systemPrompt, userPrompt := buildFixPrompt(card, contentType)

	text, err := c.complete(ctx, systemPrompt, userPrompt, 1024)
	if err != nil {
		return nil, err
	}

	var fix SuggestedFix
	if err := json.Unmarshal([]byte(text), &fix); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return &fix, nil
}

// buildTakeawaysPrompt constructs the prompts for drafting the three
// verdict takeaways from the issue deck.
func buildTakeawaysPrompt(issues []models.IssueCard) (system string, user string) {
	system = `You distill a review's issue list into its three most important takeaways. Return ONLY a JSON array of exactly 3 objects, each with:
- "issue": the problem, stated in one sentence
- "fix": the remedy, stated in one sentence

Rules:
- Pick the three issues with the highest impact (weigh severity and priority)
- Merge near-duplicate issues into one takeaway
- If fewer than 3 distinct issues exist, split the most important one into separate aspects
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Issues found during the review:\n\n")
	for i := range issues {
		c := &issues[i]
		fmt.Fprintf(&sb, "%d. [%s/%s] %s", i+1, c.Severity, c.Priority, c.Issue)
		if c.Fix != "" {
			fmt.Fprintf(&sb, " (proposed fix: %s)", c.Fix)
		}
		sb.WriteString("\n")
	}
	user = sb.String()
	return
}

// DraftTakeaways asks the model to propose the three verdict takeaways.
func (c *Client) DraftTakeaways(ctx context.Context, issues []models.IssueCard) ([]models.Takeaway, error) {
	if len(issues) == 0 {
		return nil, fmt.Errorf("no issue cards to distill")
	}
	systemPrompt, userPrompt := buildTakeawaysPrompt(issues)

	text, err := c.complete(ctx, systemPrompt, userPrompt, 1024)
	if err != nil {
		return nil, err
	}

	var takeaways []models.Takeaway
	if err := json.Unmarshal([]byte(text), &takeaways); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return takeaways, nil
}

// complete sends one prompt pair and returns the stripped text response.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int64) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}

	// Strip markdown fencing if present.
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text, nil
}
