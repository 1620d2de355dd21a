package studio

import (
	"github.com/critflow/studio/internal/models"
)

// Annotation reducer cases. LinkedCardID on the annotation is the only
// stored representation of the card/annotation edge; every card-side view
// is derived by filtering (models.StudioState.AnnotationIDs), so the two
// sides cannot drift.

func reduceAddAnnotation(s *models.StudioState, a AddAnnotation) *models.StudioState {
	ann := a.Annotation
	if ann.Validate() != nil {
		return s
	}
	if ann.ID == "" {
		ann.ID = newID()
	}
	// Always appended unlinked; linking is its own action.
	ann.LinkedCardID = ""
	ann.Number = s.NextAnnotationNumber()
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = timeNow().UTC()
	}

	next := s.Clone()
	next.Annotations = append(next.Annotations, ann)
	return next
}

func reduceUpdateAnnotation(s *models.StudioState, a UpdateAnnotation) *models.StudioState {
	i := s.FindAnnotation(a.ID)
	if i < 0 {
		return s
	}
	next := s.Clone()
	if a.Comment != nil {
		next.Annotations[i].Comment = *a.Comment
	}
	if a.Color != nil {
		next.Annotations[i].Color = *a.Color
	}
	return next
}

func reduceDeleteAnnotation(s *models.StudioState, a DeleteAnnotation) *models.StudioState {
	i := s.FindAnnotation(a.ID)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.Annotations = append(next.Annotations[:i], next.Annotations[i+1:]...)
	return next
}

func reduceLink(s *models.StudioState, annotationID, cardID string) *models.StudioState {
	i := s.FindAnnotation(annotationID)
	if i < 0 {
		return s
	}
	// The verdict card and unknown ids are never link targets.
	if !s.LinkableCardExists(cardID) {
		return s
	}
	next := s.Clone()
	next.Annotations[i].LinkedCardID = cardID
	return next
}

func reduceUnlink(s *models.StudioState, annotationID string) *models.StudioState {
	i := s.FindAnnotation(annotationID)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.Annotations[i].LinkedCardID = ""
	return next
}

// reduceCardFromAnnotation creates an empty card and links the annotation
// to it in one reduction, so no observer ever sees the card without its
// link or vice versa.
func reduceCardFromAnnotation(s *models.StudioState, a CreateCardFromAnnotation) *models.StudioState {
	if s.FindAnnotation(a.AnnotationID) < 0 {
		return s
	}

	cardID := a.CardID
	if cardID == "" {
		cardID = newID()
	} else if cardIDTaken(s, cardID) {
		return s
	}

	var next *models.StudioState
	switch a.Type {
	case models.CardTypeIssue:
		next = reduceAddIssue(s, AddIssueCard{ID: cardID})
	case models.CardTypeStrength:
		next = reduceAddStrength(s, AddStrengthCard{ID: cardID})
	default:
		return s
	}

	return reduceLink(next, a.AnnotationID, cardID)
}
