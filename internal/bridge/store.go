package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/store"
)

// StoreBridge adapts the local store to the bridge contract, for working
// offline or self-hosting without the HTTP API in between.
type StoreBridge struct {
	store store.Store
}

// NewStoreBridge wraps a store.
func NewStoreBridge(s store.Store) *StoreBridge {
	return &StoreBridge{store: s}
}

// LoadDraft reads the stored draft for a slot.
func (b *StoreBridge) LoadDraft(ctx context.Context, slotID string) (*draft.Draft, error) {
	rec, err := b.store.GetDraft(ctx, slotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return draft.Decode(rec.Payload)
}

// SaveDraft upserts the draft for a slot. The slot must exist.
func (b *StoreBridge) SaveDraft(ctx context.Context, slotID string, d *draft.Draft) error {
	if _, err := b.store.GetSlot(ctx, slotID); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	payload, err := d.Encode()
	if err != nil {
		return err
	}
	return b.store.PutDraft(ctx, &models.DraftRecord{
		SlotID:  slotID,
		Payload: payload,
		Format:  d.FormatMarker,
		Version: d.Version,
	})
}

// SubmitReview freezes the draft as a submission and marks the slot
// submitted. The final draft is also saved, so the stored draft and the
// submission never diverge.
func (b *StoreBridge) SubmitReview(ctx context.Context, slotID string, d *draft.Draft, attachments []Attachment) error {
	slot, err := b.store.GetSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("submit review: %w", err)
	}

	if err := b.SaveDraft(ctx, slotID, d); err != nil {
		return err
	}

	payload, err := d.Encode()
	if err != nil {
		return err
	}
	var attach []byte
	if len(attachments) > 0 {
		attach, err = json.Marshal(attachments)
		if err != nil {
			return fmt.Errorf("encode attachments: %w", err)
		}
	}

	if err := b.store.CreateSubmission(ctx, &models.Submission{
		SlotID:      slotID,
		Payload:     payload,
		Attachments: attach,
	}); err != nil {
		return err
	}

	slot.Status = models.SlotStatusSubmitted
	return b.store.UpdateSlot(ctx, slot)
}
