package studio

import (
	"github.com/critflow/studio/internal/models"
)

// Reduce applies one action to the state and returns the resulting state.
// The input state is never modified. Actions that reference a nonexistent
// id return the input state unchanged; UI actions can race with deletions
// in the same tick, so these are benign, not errors.
func Reduce(s *models.StudioState, action Action) *models.StudioState {
	switch a := action.(type) {
	case AddIssueCard:
		return reduceAddIssue(s, a)
	case AddStrengthCard:
		return reduceAddStrength(s, a)
	case UpdateCard:
		return reduceUpdateCard(s, a)
	case DeleteCard:
		return reduceDeleteCard(s, a)
	case ReorderCards:
		return reduceReorder(s, a)
	case UpdateVerdict:
		return reduceUpdateVerdict(s, a)
	case AddAnnotation:
		return reduceAddAnnotation(s, a)
	case UpdateAnnotation:
		return reduceUpdateAnnotation(s, a)
	case DeleteAnnotation:
		return reduceDeleteAnnotation(s, a)
	case LinkAnnotation:
		return reduceLink(s, a.AnnotationID, a.CardID)
	case UnlinkAnnotation:
		return reduceUnlink(s, a.AnnotationID)
	case CreateCardFromAnnotation:
		return reduceCardFromAnnotation(s, a)
	case SetFocusAreas:
		next := s.Clone()
		next.FocusAreas = append([]string(nil), a.Areas...)
		return next
	case SetRubricRating:
		return reduceRubricRating(s, a)
	case SetRubricRationale:
		next := s.Clone()
		if next.RubricRationales == nil {
			next.RubricRationales = map[string]models.RubricRationale{}
		}
		next.RubricRationales[a.Dimension] = a.Rationale
		return next
	case SetNotes:
		next := s.Clone()
		next.Notes = a.Text
		return next
	case SetContentType:
		next := s.Clone()
		next.ContentType = a.ContentType
		return next
	case SetActiveCard:
		next := s.Clone()
		next.ActiveCardID = a.ID
		return next
	case SetEditingCard:
		next := s.Clone()
		next.EditingCardID = a.ID
		return next
	case ToggleExpanded:
		return reduceToggleExpanded(s, a)
	case SetDeckTab:
		next := s.Clone()
		next.ActiveDeckTab = a.Tab
		return next
	case SetSelectionMode:
		next := s.Clone()
		next.SelectionMode = a.Mode
		return next
	case LoadState:
		if a.State == nil {
			return s
		}
		next := a.State.Clone()
		if next.ActiveDeckTab == "" {
			next.ActiveDeckTab = models.DeckTabIssues
		}
		return next
	case Reset:
		return models.NewStudioState()
	case SetSaving:
		next := s.Clone()
		next.IsSaving = a.Saving
		if a.Saving {
			next.SaveError = ""
		}
		return next
	case SetSaved:
		next := s.Clone()
		next.IsSaving = false
		next.SaveError = ""
		at := a.At
		next.LastSavedAt = &at
		return next
	case SetSaveError:
		next := s.Clone()
		next.IsSaving = false
		next.SaveError = a.Err
		return next
	default:
		return s
	}
}

// cardIDTaken reports whether an id is already in use by any card,
// the verdict included. A caller-supplied id that collides makes the
// add a structural no-op rather than minting a duplicate.
func cardIDTaken(s *models.StudioState, id string) bool {
	return id == models.VerdictID ||
		s.FindIssueCard(id) >= 0 ||
		s.FindStrengthCard(id) >= 0
}

func reduceAddIssue(s *models.StudioState, a AddIssueCard) *models.StudioState {
	id := a.ID
	if id == "" {
		id = newID()
	} else if cardIDTaken(s, id) {
		return s
	}
	now := timeNow().UTC()
	next := s.Clone()
	next.IssueCards = append(next.IssueCards, models.IssueCard{
		ID:         id,
		Category:   models.CategoryOther,
		Priority:   models.PriorityImportant,
		Severity:   models.SeverityMajor,
		Confidence: models.ConfidenceLikely,
		Order:      s.NextIssueOrder(),
		CreatedAt:  now,
		UpdatedAt:  now,
		IsExpanded: true,
		IsEditing:  true,
	})
	return next
}

func reduceAddStrength(s *models.StudioState, a AddStrengthCard) *models.StudioState {
	id := a.ID
	if id == "" {
		id = newID()
	} else if cardIDTaken(s, id) {
		return s
	}
	now := timeNow().UTC()
	next := s.Clone()
	next.StrengthCards = append(next.StrengthCards, models.StrengthCard{
		ID:         id,
		Order:      s.NextStrengthOrder(),
		CreatedAt:  now,
		UpdatedAt:  now,
		IsExpanded: true,
		IsEditing:  true,
	})
	return next
}

func reduceUpdateCard(s *models.StudioState, a UpdateCard) *models.StudioState {
	if i := s.FindIssueCard(a.ID); i >= 0 {
		next := s.Clone()
		applyIssuePatch(&next.IssueCards[i], a.Patch)
		next.IssueCards[i].UpdatedAt = timeNow().UTC()
		return next
	}
	if i := s.FindStrengthCard(a.ID); i >= 0 {
		next := s.Clone()
		applyStrengthPatch(&next.StrengthCards[i], a.Patch)
		next.StrengthCards[i].UpdatedAt = timeNow().UTC()
		return next
	}
	return s
}

func applyIssuePatch(c *models.IssueCard, p CardPatch) {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Issue != nil {
		c.Issue = *p.Issue
	}
	if p.Fix != nil {
		c.Fix = *p.Fix
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Severity != nil {
		c.Severity = *p.Severity
	}
	if p.Confidence != nil {
		c.Confidence = *p.Confidence
	}
	if p.Effort != nil {
		c.Effort = *p.Effort
	}
	if p.Principle != nil {
		c.Principle = *p.Principle
	}
	if p.PrincipleCategory != nil {
		c.PrincipleCategory = *p.PrincipleCategory
	}
	if p.ImpactType != nil {
		c.ImpactType = *p.ImpactType
	}
	if p.AfterState != nil {
		c.AfterState = *p.AfterState
	}
	if p.Resources != nil {
		c.Resources = append([]models.Resource(nil), *p.Resources...)
	}
	if p.IsExpanded != nil {
		c.IsExpanded = *p.IsExpanded
	}
	if p.IsEditing != nil {
		c.IsEditing = *p.IsEditing
	}
}

func applyStrengthPatch(c *models.StrengthCard, p CardPatch) {
	if p.What != nil {
		c.What = *p.What
	}
	if p.Why != nil {
		c.Why = *p.Why
	}
	if p.Impact != nil {
		c.Impact = *p.Impact
	}
	if p.IsExpanded != nil {
		c.IsExpanded = *p.IsExpanded
	}
	if p.IsEditing != nil {
		c.IsEditing = *p.IsEditing
	}
}

func reduceDeleteCard(s *models.StudioState, a DeleteCard) *models.StudioState {
	issueIdx := s.FindIssueCard(a.ID)
	strengthIdx := s.FindStrengthCard(a.ID)
	if issueIdx < 0 && strengthIdx < 0 {
		return s
	}

	next := s.Clone()
	if issueIdx >= 0 {
		next.IssueCards = append(next.IssueCards[:issueIdx], next.IssueCards[issueIdx+1:]...)
	} else {
		next.StrengthCards = append(next.StrengthCards[:strengthIdx], next.StrengthCards[strengthIdx+1:]...)
	}

	// Orphan, never delete: annotations that illustrated this card stay,
	// with their link cleared. Surviving cards keep their order values.
	for i := range next.Annotations {
		if next.Annotations[i].LinkedCardID == a.ID {
			next.Annotations[i].LinkedCardID = ""
		}
	}

	if next.ActiveCardID == a.ID {
		next.ActiveCardID = ""
	}
	if next.EditingCardID == a.ID {
		next.EditingCardID = ""
	}
	return next
}

func reduceReorder(s *models.StudioState, a ReorderCards) *models.StudioState {
	switch a.Deck {
	case DeckIssues:
		n := len(s.IssueCards)
		if !reorderIndexesValid(a.OldIndex, a.NewIndex, n) {
			return s
		}
		next := s.Clone()
		moved := next.IssueCards[a.OldIndex]
		next.IssueCards = append(next.IssueCards[:a.OldIndex], next.IssueCards[a.OldIndex+1:]...)
		next.IssueCards = append(next.IssueCards[:a.NewIndex], append([]models.IssueCard{moved}, next.IssueCards[a.NewIndex:]...)...)
		for i := range next.IssueCards {
			next.IssueCards[i].Order = i
		}
		return next
	case DeckStrengths:
		n := len(s.StrengthCards)
		if !reorderIndexesValid(a.OldIndex, a.NewIndex, n) {
			return s
		}
		next := s.Clone()
		moved := next.StrengthCards[a.OldIndex]
		next.StrengthCards = append(next.StrengthCards[:a.OldIndex], next.StrengthCards[a.OldIndex+1:]...)
		next.StrengthCards = append(next.StrengthCards[:a.NewIndex], append([]models.StrengthCard{moved}, next.StrengthCards[a.NewIndex:]...)...)
		for i := range next.StrengthCards {
			next.StrengthCards[i].Order = i
		}
		return next
	default:
		return s
	}
}

func reorderIndexesValid(oldIdx, newIdx, n int) bool {
	return oldIdx >= 0 && oldIdx < n && newIdx >= 0 && newIdx < n
}

func reduceUpdateVerdict(s *models.StudioState, a UpdateVerdict) *models.StudioState {
	now := timeNow().UTC()
	next := s.Clone()
	if next.Verdict == nil {
		next.Verdict = models.NewVerdictCard(now)
	}
	v := next.Verdict

	p := a.Patch
	if p.Rating != nil {
		v.Rating = *p.Rating
	}
	if p.Summary != nil {
		v.Summary = *p.Summary
	}
	if p.TopTakeaways != nil {
		tw := make([]models.Takeaway, models.RequiredTakeaways)
		copy(tw, p.TopTakeaways)
		v.TopTakeaways = tw
	}
	if p.ExecutiveSummary != nil {
		es := *p.ExecutiveSummary
		es.KeyStrengths = append([]string(nil), p.ExecutiveSummary.KeyStrengths...)
		es.KeyActions = append([]string(nil), p.ExecutiveSummary.KeyActions...)
		v.ExecutiveSummary = &es
	}
	if p.FollowUpOffer != nil {
		v.FollowUpOffer = *p.FollowUpOffer
	}
	v.UpdatedAt = now
	return next
}

func reduceRubricRating(s *models.StudioState, a SetRubricRating) *models.StudioState {
	if a.Rating < 0 || a.Rating > 5 {
		return s
	}
	next := s.Clone()
	if a.Rating == 0 {
		delete(next.RubricRatings, a.Dimension)
		return next
	}
	if next.RubricRatings == nil {
		next.RubricRatings = map[string]int{}
	}
	next.RubricRatings[a.Dimension] = a.Rating
	return next
}

func reduceToggleExpanded(s *models.StudioState, a ToggleExpanded) *models.StudioState {
	if i := s.FindIssueCard(a.ID); i >= 0 {
		next := s.Clone()
		next.IssueCards[i].IsExpanded = !next.IssueCards[i].IsExpanded
		return next
	}
	if i := s.FindStrengthCard(a.ID); i >= 0 {
		next := s.Clone()
		next.StrengthCards[i].IsExpanded = !next.StrengthCards[i].IsExpanded
		return next
	}
	return s
}
