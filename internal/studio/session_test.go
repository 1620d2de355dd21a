package studio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critflow/studio/internal/bridge"
	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
)

type stubBridge struct {
	mu      sync.Mutex
	drafts  map[string]*draft.Draft
	saves   int
	submits int
	saveErr error
	loadErr error
}

func newStubBridge() *stubBridge {
	return &stubBridge{drafts: map[string]*draft.Draft{}}
}

func (b *stubBridge) LoadDraft(ctx context.Context, slotID string) (*draft.Draft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	d, ok := b.drafts[slotID]
	if !ok {
		return nil, bridge.ErrNotFound
	}
	return d, nil
}

func (b *stubBridge) SaveDraft(ctx context.Context, slotID string, d *draft.Draft) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.drafts[slotID] = d
	b.saves++
	return nil
}

func (b *stubBridge) SubmitReview(ctx context.Context, slotID string, d *draft.Draft, attachments []bridge.Attachment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submits++
	return nil
}

func (b *stubBridge) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// completeVerdict fills a verdict that passes the readiness gate.
func completeVerdict() UpdateVerdict {
	rating := 4
	summary := "A thorough pass over the landing page: strong visual identity, but three checkout issues need fixing before launch."
	return UpdateVerdict{Patch: VerdictPatch{
		Rating:  &rating,
		Summary: &summary,
		TopTakeaways: []models.Takeaway{
			{Issue: "contrast too low", Fix: "darken the body text"},
			{Issue: "no focus states", Fix: "add visible outlines"},
			{Issue: "slow hero image", Fix: "compress and lazy-load"},
		},
	}}
}

func TestOpen_FreshSession(t *testing.T) {
	sess, err := Open(context.Background(), "slot-1", newStubBridge(), time.Hour)
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, "slot-1", sess.SlotID())
	assert.Empty(t, sess.State().IssueCards)
}

func TestOpen_HydratesFromDraft(t *testing.T) {
	b := newStubBridge()
	st := models.NewStudioState()
	st.IssueCards = []models.IssueCard{{ID: "i1", Issue: "stored issue", Order: 3}}
	st.Annotations = []models.Annotation{{ID: "a1", Type: models.AnnotationPin, X: 5, Y: 5, Number: 1, LinkedCardID: "i1"}}
	b.drafts["slot-1"] = draft.FromState(st, time.Now())

	sess, err := Open(context.Background(), "slot-1", b, time.Hour)
	require.NoError(t, err)
	defer sess.Close()

	got := sess.State()
	require.Len(t, got.IssueCards, 1)
	assert.Equal(t, 3, got.IssueCards[0].Order)
	assert.Equal(t, "i1", got.Annotations[0].LinkedCardID)
}

func TestOpen_LoadErrorPropagates(t *testing.T) {
	b := newStubBridge()
	b.loadErr = errors.New("connection refused")

	_, err := Open(context.Background(), "slot-1", b, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot-1")
}

func TestSession_Dispatch_ReturnsSnapshot(t *testing.T) {
	sess := NewSession("slot-1", newStubBridge(), time.Hour)
	defer sess.Close()

	snap := sess.Dispatch(AddIssueCard{ID: "i1"})
	require.Len(t, snap.IssueCards, 1)

	// The snapshot is detached from the live state.
	snap.IssueCards[0].Issue = "mutated"
	assert.Empty(t, sess.State().IssueCards[0].Issue)
}

func TestSession_AutosaveFiresAfterDebounce(t *testing.T) {
	b := newStubBridge()
	st := models.NewStudioState()
	b.drafts["slot-1"] = draft.FromState(st, time.Now())

	sess, err := Open(context.Background(), "slot-1", b, 10*time.Millisecond)
	require.NoError(t, err)
	defer sess.Close()

	sess.Dispatch(AddIssueCard{ID: "i1"})

	require.Eventually(t, func() bool {
		return b.saveCount() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	d := b.drafts["slot-1"]
	require.Len(t, d.IssueCards, 1)
	assert.Equal(t, draft.Format, d.FormatMarker)
}

func TestSession_Save_Forces(t *testing.T) {
	b := newStubBridge()
	sess := NewSession("slot-1", b, time.Hour)
	defer sess.Close()

	sess.Dispatch(AddIssueCard{ID: "i1"})
	require.NoError(t, sess.Save(context.Background()))

	assert.Equal(t, 1, b.saveCount())
	st := sess.State()
	require.NotNil(t, st.LastSavedAt)
	assert.False(t, st.IsSaving)
}

func TestSession_Save_ErrorRecorded(t *testing.T) {
	b := newStubBridge()
	b.saveErr = errors.New("disk full")
	sess := NewSession("slot-1", b, time.Hour)
	defer sess.Close()

	sess.Dispatch(AddIssueCard{ID: "i1"})
	err := sess.Save(context.Background())
	require.Error(t, err)

	st := sess.State()
	assert.Equal(t, "disk full", st.SaveError)
	assert.False(t, st.IsSaving)
	// The draft content is untouched by the failure.
	assert.Len(t, st.IssueCards, 1)
}

func TestSession_Submit_BlockedByGate(t *testing.T) {
	b := newStubBridge()
	sess := NewSession("slot-1", b, time.Hour)
	defer sess.Close()

	err := sess.Submit(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 0, b.submits)
}

func TestSession_Submit_IncompleteCardBlocks(t *testing.T) {
	b := newStubBridge()
	sess := NewSession("slot-1", b, time.Hour)
	defer sess.Close()

	sess.Dispatch(completeVerdict())
	sess.Dispatch(AddIssueCard{ID: "i1"}) // half-filled card

	err := sess.Submit(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestSession_Submit_Succeeds(t *testing.T) {
	b := newStubBridge()
	sess := NewSession("slot-1", b, time.Hour)
	defer sess.Close()

	sess.Dispatch(completeVerdict())
	require.NoError(t, sess.Submit(context.Background(), nil))
	assert.Equal(t, 1, b.submits)
}

func TestSession_Metrics(t *testing.T) {
	sess := NewSession("slot-1", newStubBridge(), time.Hour)
	defer sess.Close()

	m := sess.Metrics()
	assert.Equal(t, 0, m.CompletenessScore)

	sess.Dispatch(completeVerdict())
	m = sess.Metrics()
	assert.Greater(t, m.CompletenessScore, 0)
}

func TestSession_Readiness(t *testing.T) {
	sess := NewSession("slot-1", newStubBridge(), time.Hour)
	defer sess.Close()

	r := sess.Readiness()
	require.False(t, r.IsValid)
	assert.Contains(t, r.Errors, "verdict is missing")

	sess.Dispatch(completeVerdict())
	assert.True(t, sess.Readiness().IsValid)
}
