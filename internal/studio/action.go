// Package studio implements the Review Studio state machine: a pure
// reduction over an immutable session snapshot plus a closed set of
// actions. The reducer never mutates its input and never performs I/O;
// actions referencing a nonexistent card or annotation are structural
// no-ops that return the prior state unchanged.
package studio

import (
	"time"

	"github.com/critflow/studio/internal/models"
)

// Deck names one of the two independently ordered card decks.
type Deck string

const (
	DeckIssues    Deck = "issues"
	DeckStrengths Deck = "strengths"
)

// Action is the closed sum of all studio state transitions. Concrete
// action types live in this file; nothing outside the package can add one.
type Action interface {
	isAction()
}

// CardPatch is a shallow partial update for an issue or strength card.
// Nil fields are left untouched. Fields that do not apply to the card's
// kind are ignored. Identity fields (id, type, createdAt) are not
// patchable by construction.
type CardPatch struct {
	// Issue card fields.
	Category          *models.IssueCategory
	Issue             *string
	Fix               *string
	Location          *string
	Priority          *models.Priority
	Severity          *models.Severity
	Confidence        *models.Confidence
	Effort            *models.Effort
	Principle         *string
	PrincipleCategory *string
	ImpactType        *string
	AfterState        *string
	Resources         *[]models.Resource

	// Strength card fields.
	What   *string
	Why    *string
	Impact *string

	// UI state.
	IsExpanded *bool
	IsEditing  *bool
}

// VerdictPatch is a shallow partial update for the verdict card.
type VerdictPatch struct {
	Rating           *int
	Summary          *string
	TopTakeaways     []models.Takeaway // non-nil replaces all three slots
	ExecutiveSummary *models.ExecutiveSummary
	FollowUpOffer    *string
}

// --- Card deck actions ---

// AddIssueCard appends a fresh issue card with default classification.
// If ID is empty, a new ULID is assigned.
type AddIssueCard struct{ ID string }

// AddStrengthCard appends a fresh strength card.
type AddStrengthCard struct{ ID string }

// UpdateCard shallow-merges the patch into the card matching ID.
type UpdateCard struct {
	ID    string
	Patch CardPatch
}

// DeleteCard removes the card and orphans (never deletes) its linked
// annotations.
type DeleteCard struct{ ID string }

// ReorderCards moves a card within one deck and reassigns contiguous
// 0-based order values across that deck.
type ReorderCards struct {
	Deck     Deck
	OldIndex int
	NewIndex int
}

// UpdateVerdict merges the patch into the verdict card, creating an empty
// one first if none exists.
type UpdateVerdict struct{ Patch VerdictPatch }

// --- Annotation actions ---

// AddAnnotation appends an annotation, assigning id and the next display
// number. The annotation is always appended unlinked; linking is a
// separate action. Invalid anchors are a no-op.
type AddAnnotation struct{ Annotation models.Annotation }

// UpdateAnnotation patches the free-text comment and/or color.
type UpdateAnnotation struct {
	ID      string
	Comment *string
	Color   *string
}

// DeleteAnnotation removes an annotation outright.
type DeleteAnnotation struct{ ID string }

// LinkAnnotation sets the annotation's linked card. The target must be an
// existing issue or strength card; the verdict is never linkable.
// Re-linking is allowed and idempotent: last call wins.
type LinkAnnotation struct {
	AnnotationID string
	CardID       string
}

// UnlinkAnnotation clears the annotation's linked card without deleting it.
type UnlinkAnnotation struct{ AnnotationID string }

// CreateCardFromAnnotation creates an empty card of the given type and
// links the annotation to it in one atomic step, so no intermediate
// inconsistent state is ever observable.
type CreateCardFromAnnotation struct {
	Type         models.CardType // issue or strength; verdict is a no-op
	AnnotationID string
	CardID       string // optional pre-assigned id for the new card
}

// --- Session metadata actions ---

// SetFocusAreas replaces the focus-area list.
type SetFocusAreas struct{ Areas []string }

// SetRubricRating sets one rubric dimension's rating (1-5). Rating 0
// clears the dimension; anything else out of range is a no-op.
type SetRubricRating struct {
	Dimension string
	Rating    int
}

// SetRubricRationale records the reasoning for one rubric dimension.
type SetRubricRationale struct {
	Dimension string
	Rationale models.RubricRationale
}

// SetNotes replaces the free-form additional notes.
type SetNotes struct{ Text string }

// SetContentType records what kind of work is under review.
type SetContentType struct{ ContentType string }

// --- UI actions ---

// SetActiveCard highlights a card in the UI.
type SetActiveCard struct{ ID string }

// SetEditingCard opens a card for editing in the UI.
type SetEditingCard struct{ ID string }

// ToggleExpanded flips a card's expanded state.
type ToggleExpanded struct{ ID string }

// SetDeckTab switches the visible deck.
type SetDeckTab struct{ Tab models.DeckTab }

// SetSelectionMode switches the annotation selection mode.
type SetSelectionMode struct{ Mode string }

// --- Lifecycle and save bookkeeping ---

// LoadState hydrates the session from a deserialized draft, replacing the
// data slices wholesale. No validation runs here; the validation gate is
// consulted lazily, on demand.
type LoadState struct{ State *models.StudioState }

// Reset discards everything and returns to an empty session.
type Reset struct{}

// SetSaving marks a save as started or stopped.
type SetSaving struct{ Saving bool }

// SetSaved records a successful save.
type SetSaved struct{ At time.Time }

// SetSaveError records a failed save; the draft itself is untouched.
type SetSaveError struct{ Err string }

func (AddIssueCard) isAction()             {}
func (AddStrengthCard) isAction()          {}
func (UpdateCard) isAction()               {}
func (DeleteCard) isAction()               {}
func (ReorderCards) isAction()             {}
func (UpdateVerdict) isAction()            {}
func (AddAnnotation) isAction()            {}
func (UpdateAnnotation) isAction()         {}
func (DeleteAnnotation) isAction()         {}
func (LinkAnnotation) isAction()           {}
func (UnlinkAnnotation) isAction()         {}
func (CreateCardFromAnnotation) isAction() {}
func (SetFocusAreas) isAction()            {}
func (SetRubricRating) isAction()          {}
func (SetRubricRationale) isAction()       {}
func (SetNotes) isAction()                 {}
func (SetContentType) isAction()           {}
func (SetActiveCard) isAction()            {}
func (SetEditingCard) isAction()           {}
func (ToggleExpanded) isAction()           {}
func (SetDeckTab) isAction()               {}
func (SetSelectionMode) isAction()         {}
func (LoadState) isAction()                {}
func (Reset) isAction()                    {}
func (SetSaving) isAction()                {}
func (SetSaved) isAction()                 {}
func (SetSaveError) isAction()             {}
