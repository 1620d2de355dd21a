// Package mcp exposes the review studio as MCP tools, so an agent can
// draft reviews through the same state machine the CLI and API use.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/critflow/studio/internal/bridge"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/studio"
	"github.com/critflow/studio/internal/validate"
)

// Server wraps the studio session layer and exposes it as MCP tools.
// Sessions are opened lazily per slot and kept alive for the lifetime of
// the server, so autosave debouncing spans tool calls.
type Server struct {
	bridge   bridge.Bridge
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*studio.Session
}

// NewServer creates the MCP server wrapper over the given persistence bridge.
func NewServer(b bridge.Bridge, debounce time.Duration) *Server {
	return &Server{
		bridge:   b,
		debounce: debounce,
		sessions: make(map[string]*studio.Session),
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("studio", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.openDraftTool())
	srv.AddTool(s.addIssueTool())
	srv.AddTool(s.addStrengthTool())
	srv.AddTool(s.updateCardTool())
	srv.AddTool(s.deleteCardTool())
	srv.AddTool(s.reorderCardsTool())
	srv.AddTool(s.addAnnotationTool())
	srv.AddTool(s.linkAnnotationTool())
	srv.AddTool(s.setVerdictTool())
	srv.AddTool(s.qualityTool())
	srv.AddTool(s.readinessTool())
	srv.AddTool(s.submitTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
// All open sessions are flushed on shutdown.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	err := stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	s.closeAll()
	return err
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for id, sess := range s.sessions {
		_ = sess.Save(ctx)
		sess.Close()
		delete(s.sessions, id)
	}
}

// session returns the live session for a slot, opening one on first use.
func (s *Server) session(ctx context.Context, slotID string) (*studio.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[slotID]; ok {
		return sess, nil
	}
	sess, err := studio.Open(ctx, slotID, s.bridge, s.debounce)
	if err != nil {
		return nil, err
	}
	s.sessions[slotID] = sess
	return sess, nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// studio_open_draft
func (s *Server) openDraftTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_open_draft",
		mcp.WithDescription("Open (or resume) the review draft for a slot. Returns the current draft summary: card counts, annotation count, verdict state."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
	)
	return tool, s.handleOpenDraft
}

func (s *Server) handleOpenDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	return toolJSON(draftSummary(sess))
}

// studio_add_issue
func (s *Server) addIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_add_issue",
		mcp.WithDescription("Add an issue card to the review. The issue text states the problem; the fix text states the remedy. Both need at least 10 characters of substance before the card counts as complete."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("issue", mcp.Required(), mcp.Description("What is wrong")),
		mcp.WithString("fix", mcp.Description("How to fix it")),
		mcp.WithString("category", mcp.Description("Category: performance, ux, security, accessibility, maintainability, design, content, other")),
		mcp.WithString("priority", mcp.Description("Priority: critical, important, nice-to-have (default: important)")),
		mcp.WithString("severity", mcp.Description("Severity: critical, major, minor, suggestion (default: major)")),
		mcp.WithString("effort", mcp.Description("Effort: quick-fix, moderate, major-refactor")),
		mcp.WithString("location", mcp.Description("Where in the work the issue occurs")),
	)
	return tool, s.handleAddIssue
}

func (s *Server) handleAddIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	issue, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	id := studio.NewID()
	sess.Dispatch(studio.AddIssueCard{ID: id})

	patch := studio.CardPatch{Issue: &issue}
	if v := request.GetString("fix", ""); v != "" {
		patch.Fix = &v
	}
	if v := request.GetString("category", ""); v != "" {
		c := models.IssueCategory(v)
		patch.Category = &c
	}
	if v := request.GetString("priority", ""); v != "" {
		p := models.Priority(v)
		patch.Priority = &p
	}
	if v := request.GetString("severity", ""); v != "" {
		sev := models.Severity(v)
		patch.Severity = &sev
	}
	if v := request.GetString("effort", ""); v != "" {
		e := models.Effort(v)
		patch.Effort = &e
	}
	if v := request.GetString("location", ""); v != "" {
		patch.Location = &v
	}
	st := sess.Dispatch(studio.UpdateCard{ID: id, Patch: patch})

	idx := st.FindIssueCard(id)
	if idx < 0 {
		return mcp.NewToolResultError("issue card was not created"), nil
	}
	return toolJSON(st.IssueCards[idx])
}

// studio_add_strength
func (s *Server) addStrengthTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_add_strength",
		mcp.WithDescription("Add a strength card to the review: what works, why it works, and what impact it has."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("what", mcp.Required(), mcp.Description("What works well (at least 10 characters)")),
		mcp.WithString("why", mcp.Description("Why it works")),
		mcp.WithString("impact", mcp.Description("What impact it has")),
	)
	return tool, s.handleAddStrength
}

func (s *Server) handleAddStrength(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	what, err := request.RequireString("what")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: what"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	id := studio.NewID()
	sess.Dispatch(studio.AddStrengthCard{ID: id})

	patch := studio.CardPatch{What: &what}
	if v := request.GetString("why", ""); v != "" {
		patch.Why = &v
	}
	if v := request.GetString("impact", ""); v != "" {
		patch.Impact = &v
	}
	st := sess.Dispatch(studio.UpdateCard{ID: id, Patch: patch})

	idx := st.FindStrengthCard(id)
	if idx < 0 {
		return mcp.NewToolResultError("strength card was not created"), nil
	}
	return toolJSON(st.StrengthCards[idx])
}

// studio_update_card
func (s *Server) updateCardTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_update_card",
		mcp.WithDescription("Update fields on an existing issue or strength card. Only the provided fields change; fields that do not apply to the card's kind are ignored."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID")),
		mcp.WithString("issue", mcp.Description("New issue text")),
		mcp.WithString("fix", mcp.Description("New fix text")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("priority", mcp.Description("New priority")),
		mcp.WithString("severity", mcp.Description("New severity")),
		mcp.WithString("effort", mcp.Description("New effort estimate")),
		mcp.WithString("location", mcp.Description("New location")),
		mcp.WithString("what", mcp.Description("New strength text")),
		mcp.WithString("why", mcp.Description("New reasoning text")),
		mcp.WithString("impact", mcp.Description("New impact text")),
	)
	return tool, s.handleUpdateCard
}

func (s *Server) handleUpdateCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	cardID, err := request.RequireString("card_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: card_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	patch := studio.CardPatch{}
	updated := false
	if v := request.GetString("issue", ""); v != "" {
		patch.Issue = &v
		updated = true
	}
	if v := request.GetString("fix", ""); v != "" {
		patch.Fix = &v
		updated = true
	}
	if v := request.GetString("category", ""); v != "" {
		c := models.IssueCategory(v)
		patch.Category = &c
		updated = true
	}
	if v := request.GetString("priority", ""); v != "" {
		p := models.Priority(v)
		patch.Priority = &p
		updated = true
	}
	if v := request.GetString("severity", ""); v != "" {
		sev := models.Severity(v)
		patch.Severity = &sev
		updated = true
	}
	if v := request.GetString("effort", ""); v != "" {
		e := models.Effort(v)
		patch.Effort = &e
		updated = true
	}
	if v := request.GetString("location", ""); v != "" {
		patch.Location = &v
		updated = true
	}
	if v := request.GetString("what", ""); v != "" {
		patch.What = &v
		updated = true
	}
	if v := request.GetString("why", ""); v != "" {
		patch.Why = &v
		updated = true
	}
	if v := request.GetString("impact", ""); v != "" {
		patch.Impact = &v
		updated = true
	}
	if !updated {
		return mcp.NewToolResultError("no fields provided to update"), nil
	}

	st := sess.Dispatch(studio.UpdateCard{ID: cardID, Patch: patch})
	if i := st.FindIssueCard(cardID); i >= 0 {
		return toolJSON(st.IssueCards[i])
	}
	if i := st.FindStrengthCard(cardID); i >= 0 {
		return toolJSON(st.StrengthCards[i])
	}
	return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", cardID)), nil
}

// studio_delete_card
func (s *Server) deleteCardTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_delete_card",
		mcp.WithDescription("Delete an issue or strength card. Annotations linked to the card survive as unlinked annotations."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID")),
	)
	return tool, s.handleDeleteCard
}

func (s *Server) handleDeleteCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	cardID, err := request.RequireString("card_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: card_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	before := sess.State()
	if before.FindIssueCard(cardID) < 0 && before.FindStrengthCard(cardID) < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", cardID)), nil
	}
	sess.Dispatch(studio.DeleteCard{ID: cardID})
	return toolJSON(map[string]any{"deleted": cardID})
}

// studio_reorder_cards
func (s *Server) reorderCardsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_reorder_cards",
		mcp.WithDescription("Move a card within its deck. Indexes are zero-based positions in the deck; the deck's order values stay contiguous."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Deck: issues or strengths")),
		mcp.WithNumber("old_index", mcp.Required(), mcp.Description("Current position")),
		mcp.WithNumber("new_index", mcp.Required(), mcp.Description("Target position")),
	)
	return tool, s.handleReorderCards
}

func (s *Server) handleReorderCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	deck, err := request.RequireString("deck")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: deck"), nil
	}
	if deck != string(studio.DeckIssues) && deck != string(studio.DeckStrengths) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid deck: %s (must be issues or strengths)", deck)), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	oldIdx := request.GetInt("old_index", -1)
	newIdx := request.GetInt("new_index", -1)
	st := sess.Dispatch(studio.ReorderCards{
		Deck:     studio.Deck(deck),
		OldIndex: oldIdx,
		NewIndex: newIdx,
	})

	ids := make([]string, 0)
	if deck == string(studio.DeckIssues) {
		for _, c := range st.IssueCards {
			ids = append(ids, c.ID)
		}
	} else {
		for _, c := range st.StrengthCards {
			ids = append(ids, c.ID)
		}
	}
	return toolJSON(map[string]any{"deck": deck, "order": ids})
}

// studio_add_annotation
func (s *Server) addAnnotationTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_add_annotation",
		mcp.WithDescription("Place an annotation on the reviewed work. A pin needs x/y percentages, a region needs x/y/width/height percentages, a highlight needs start_offset/end_offset, a timestamp needs timestamp seconds. Annotations start unlinked; use studio_link_annotation to attach one to a card."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Anchor type: pin, highlight, region, timestamp")),
		mcp.WithString("comment", mcp.Description("Free-text note on the annotation")),
		mcp.WithNumber("x", mcp.Description("Horizontal position, percent of width (pin, region)")),
		mcp.WithNumber("y", mcp.Description("Vertical position, percent of height (pin, region)")),
		mcp.WithNumber("width", mcp.Description("Region width, percent")),
		mcp.WithNumber("height", mcp.Description("Region height, percent")),
		mcp.WithNumber("start_offset", mcp.Description("Highlight start character offset")),
		mcp.WithNumber("end_offset", mcp.Description("Highlight end character offset")),
		mcp.WithString("selected_text", mcp.Description("Highlighted text excerpt")),
		mcp.WithNumber("timestamp", mcp.Description("Seconds from content start")),
	)
	return tool, s.handleAddAnnotation
}

func (s *Server) handleAddAnnotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	annType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: type"), nil
	}

	ann := models.Annotation{
		Type:         models.AnnotationType(annType),
		Comment:      request.GetString("comment", ""),
		X:            request.GetFloat("x", 0),
		Y:            request.GetFloat("y", 0),
		Width:        request.GetFloat("width", 0),
		Height:       request.GetFloat("height", 0),
		StartOffset:  request.GetInt("start_offset", 0),
		EndOffset:    request.GetInt("end_offset", 0),
		SelectedText: request.GetString("selected_text", ""),
		Timestamp:    request.GetFloat("timestamp", 0),
	}
	if err := ann.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid annotation: %v", err)), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	before := len(sess.State().Annotations)
	st := sess.Dispatch(studio.AddAnnotation{Annotation: ann})
	if len(st.Annotations) == before {
		return mcp.NewToolResultError("annotation was not added"), nil
	}
	return toolJSON(st.Annotations[len(st.Annotations)-1])
}

// studio_link_annotation
func (s *Server) linkAnnotationTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_link_annotation",
		mcp.WithDescription("Link an annotation to an issue or strength card, or unlink it by passing an empty card_id. Re-linking moves the annotation to the new card."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithString("annotation_id", mcp.Required(), mcp.Description("Annotation ID")),
		mcp.WithString("card_id", mcp.Description("Target card ID; empty to unlink")),
	)
	return tool, s.handleLinkAnnotation
}

func (s *Server) handleLinkAnnotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}
	annID, err := request.RequireString("annotation_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: annotation_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	cardID := request.GetString("card_id", "")
	var st *models.StudioState
	if cardID == "" {
		st = sess.Dispatch(studio.UnlinkAnnotation{AnnotationID: annID})
	} else {
		st = sess.Dispatch(studio.LinkAnnotation{AnnotationID: annID, CardID: cardID})
	}

	idx := st.FindAnnotation(annID)
	if idx < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("annotation not found: %s", annID)), nil
	}
	ann := st.Annotations[idx]
	if cardID != "" && ann.LinkedCardID != cardID {
		return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", cardID)), nil
	}
	return toolJSON(ann)
}

// studio_set_verdict
func (s *Server) setVerdictTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_set_verdict",
		mcp.WithDescription("Set the verdict: an overall rating (1-5), a summary of 50-300 characters, and up to three takeaways as a JSON array of {issue, fix} objects."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
		mcp.WithNumber("rating", mcp.Description("Overall rating, 1-5")),
		mcp.WithString("summary", mcp.Description("Overall assessment, 50-300 characters")),
		mcp.WithString("takeaways", mcp.Description(`JSON array of up to 3 {"issue","fix"} objects`)),
	)
	return tool, s.handleSetVerdict
}

func (s *Server) handleSetVerdict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	patch := studio.VerdictPatch{}
	if rating := request.GetInt("rating", 0); rating != 0 {
		patch.Rating = &rating
	}
	if summary := request.GetString("summary", ""); summary != "" {
		patch.Summary = &summary
	}
	if raw := request.GetString("takeaways", ""); raw != "" {
		var takeaways []models.Takeaway
		if err := json.Unmarshal([]byte(raw), &takeaways); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid takeaways JSON: %v", err)), nil
		}
		patch.TopTakeaways = takeaways
	}

	st := sess.Dispatch(studio.UpdateVerdict{Patch: patch})
	return toolJSON(st.Verdict)
}

// studio_quality
func (s *Server) qualityTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_quality",
		mcp.WithDescription("Score the draft's review quality: completeness (0-100), estimated tone, clarity (0-100), and actionability (0-100). Scores are advisory and never block submission."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
	)
	return tool, s.handleQuality
}

func (s *Server) handleQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}
	return toolJSON(sess.Metrics())
}

// studio_readiness
func (s *Server) readinessTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_readiness",
		mcp.WithDescription("Check whether the draft passes the submission gate. Returns is_valid plus the list of blocking errors."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
	)
	return tool, s.handleReadiness
}

func (s *Server) handleReadiness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}
	return toolJSON(sess.Readiness())
}

// studio_submit
func (s *Server) submitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("studio_submit",
		mcp.WithDescription("Submit the review. Fails with the validation errors if the draft does not pass the readiness gate. Any pending autosave completes before submission."),
		mcp.WithString("slot_id", mcp.Required(), mcp.Description("Review slot ID")),
	)
	return tool, s.handleSubmit
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := request.RequireString("slot_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slot_id"), nil
	}

	sess, err := s.session(ctx, slotID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open draft: %v", err)), nil
	}

	if err := sess.Submit(ctx, nil); err != nil {
		result := sess.Readiness()
		if !result.IsValid {
			return toolJSON(map[string]any{
				"submitted": false,
				"errors":    result.Errors,
			})
		}
		return mcp.NewToolResultError(fmt.Sprintf("submit failed: %v", err)), nil
	}

	s.mu.Lock()
	sess.Close()
	delete(s.sessions, slotID)
	s.mu.Unlock()

	return toolJSON(map[string]any{"submitted": true, "slot_id": slotID})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func draftSummary(sess *studio.Session) map[string]any {
	st := sess.State()
	verdict := "missing"
	if st.Verdict != nil {
		if st.Verdict.Complete() {
			verdict = "complete"
		} else {
			verdict = "incomplete"
		}
	}
	gate := validate.Readiness(st)
	return map[string]any{
		"slot_id":      sess.SlotID(),
		"issues":       len(st.IssueCards),
		"strengths":    len(st.StrengthCards),
		"annotations":  len(st.Annotations),
		"verdict":      verdict,
		"ready":        gate.IsValid,
		"content_type": st.ContentType,
	}
}
