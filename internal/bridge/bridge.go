// Package bridge defines the persistence boundary of the studio core:
// loading, saving, and submitting drafts against whatever owns the
// durable copy. Two implementations exist — an HTTP client for the
// hosted API and a direct adapter over the local store.
package bridge

import (
	"context"
	"errors"

	"github.com/critflow/studio/internal/draft"
)

// ErrNotFound signals that no draft exists for the slot yet. Callers
// start from an empty session; this is not an error condition.
var ErrNotFound = errors.New("draft not found")

// Attachment is a supporting file included with a submission.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType,omitempty"`
	Data      []byte `json:"data,omitempty"`
}

// Bridge is the sole external dependency of the studio core.
type Bridge interface {
	// LoadDraft fetches the draft for a slot, or ErrNotFound.
	LoadDraft(ctx context.Context, slotID string) (*draft.Draft, error)

	// SaveDraft persists the draft. Idempotent: resending an identical
	// payload is always safe.
	SaveDraft(ctx context.Context, slotID string, d *draft.Draft) error

	// SubmitReview finalizes the review for a slot.
	SubmitReview(ctx context.Context, slotID string, d *draft.Draft, attachments []Attachment) error
}
