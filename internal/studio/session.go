package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/critflow/studio/internal/autosave"
	"github.com/critflow/studio/internal/bridge"
	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/scoring"
	"github.com/critflow/studio/internal/validate"
)

// ErrNotReady is returned when submission is attempted against a draft
// that fails the readiness gate.
var ErrNotReady = errors.New("draft is not ready for submission")

// Session owns one live review: the current state, the reducer dispatch
// loop, and the debounced autosave against the persistence bridge.
// Dispatches are serialized; the reducer always completes before the next
// action is accepted.
type Session struct {
	slotID string
	bridge bridge.Bridge

	mu    sync.Mutex
	state *models.StudioState

	saver *autosave.Manager
}

// NewSession creates a session over an empty state.
func NewSession(slotID string, b bridge.Bridge, debounce time.Duration) *Session {
	s := &Session{
		slotID: slotID,
		bridge: b,
		state:  models.NewStudioState(),
	}
	s.saver = autosave.New(debounce, s.saveNow)
	return s
}

// Open creates a session hydrated from the persisted draft for the slot.
// A missing draft means a fresh session, not an error.
func Open(ctx context.Context, slotID string, b bridge.Bridge, debounce time.Duration) (*Session, error) {
	s := NewSession(slotID, b, debounce)

	d, err := b.LoadDraft(ctx, slotID)
	if errors.Is(err, bridge.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open session for slot %s: %w", slotID, err)
	}

	s.state = Reduce(s.state, LoadState{State: d.State()})
	return s, nil
}

// SlotID returns the slot this session reviews.
func (s *Session) SlotID() string {
	return s.slotID
}

// State returns a snapshot of the current state. The snapshot is a deep
// copy; callers can hold it across further dispatches.
func (s *Session) State() *models.StudioState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies one action and returns the resulting snapshot.
// Mutations to the draft content arm the autosave debounce; pure UI and
// bookkeeping actions do not.
func (s *Session) Dispatch(action Action) *models.StudioState {
	s.mu.Lock()
	prev := s.state
	s.state = Reduce(prev, action)
	changed := s.state != prev
	snap := s.state.Clone()
	s.mu.Unlock()

	if changed && isPersistent(action) {
		s.saver.Touch()
	}
	return snap
}

// isPersistent reports whether the action changes content that belongs in
// the persisted draft.
func isPersistent(action Action) bool {
	switch action.(type) {
	case SetActiveCard, SetEditingCard, SetDeckTab, SetSelectionMode,
		SetSaving, SetSaved, SetSaveError, LoadState:
		return false
	default:
		return true
	}
}

// Metrics re-scores the current draft.
func (s *Session) Metrics() scoring.Metrics {
	s.mu.Lock()
	snap := scoring.SnapshotFromState(s.state)
	s.mu.Unlock()
	return scoring.CalculateQualityMetrics(snap)
}

// Readiness runs the submission gate against the current draft.
func (s *Session) Readiness() validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate.Readiness(s.state)
}

// Save forces an immediate save, waiting out any in-flight autosave first.
func (s *Session) Save(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Submit finalizes the review. It refuses drafts that fail the readiness
// gate, waits for any in-flight autosave to settle so a stale partial
// save cannot race ahead of the final payload, and on failure leaves the
// in-memory state exactly as it was before the attempt.
func (s *Session) Submit(ctx context.Context, attachments []bridge.Attachment) error {
	if r := s.Readiness(); !r.IsValid {
		return fmt.Errorf("%w: %v", ErrNotReady, r.Errors)
	}

	if err := s.saver.WaitIdle(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	d := draft.FromState(s.state, timeNow())
	s.mu.Unlock()

	if err := s.bridge.SubmitReview(ctx, s.slotID, d, attachments); err != nil {
		return fmt.Errorf("submit review: %w", err)
	}
	return nil
}

// Close drops any pending autosave. An in-flight save is abandoned to
// settle on its own; the in-memory state is untouched.
func (s *Session) Close() {
	s.saver.Cancel()
}

// saveNow is the autosave callback: snapshot, save, record the outcome.
// Persistence failures populate saveError and clear isSaving; the draft
// itself is preserved so no work is lost.
func (s *Session) saveNow(ctx context.Context) error {
	s.mu.Lock()
	s.state = Reduce(s.state, SetSaving{Saving: true})
	d := draft.FromState(s.state, timeNow())
	s.mu.Unlock()

	err := s.bridge.SaveDraft(ctx, s.slotID, d)

	s.mu.Lock()
	if err != nil {
		s.state = Reduce(s.state, SetSaveError{Err: err.Error()})
	} else {
		s.state = Reduce(s.state, SetSaved{At: timeNow().UTC()})
	}
	s.mu.Unlock()
	return err
}
