package store

import (
	"context"
	"errors"

	"github.com/critflow/studio/internal/models"
)

// ErrNotFound is returned for missing slots, drafts, and submissions.
var ErrNotFound = errors.New("not found")

// SlotListFilter specifies filters for listing review slots.
type SlotListFilter struct {
	Status   models.SlotStatus
	Reviewer string
}

// Store is the durable server side of the persistence bridge: slots,
// their drafts, and finalized submissions.
type Store interface {
	// Slots
	CreateSlot(ctx context.Context, s *models.Slot) error
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	ListSlots(ctx context.Context, filter SlotListFilter) ([]*models.Slot, error)
	UpdateSlot(ctx context.Context, s *models.Slot) error
	DeleteSlot(ctx context.Context, id string) error

	// Drafts (one per slot, upserted)
	PutDraft(ctx context.Context, d *models.DraftRecord) error
	GetDraft(ctx context.Context, slotID string) (*models.DraftRecord, error)
	DeleteDraft(ctx context.Context, slotID string) error

	// Submissions
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	ListSubmissions(ctx context.Context, slotID string) ([]*models.Submission, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
