package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critflow/studio/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "studio.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "Landing page review", ContentType: "design"}
	require.NoError(t, s.CreateSlot(ctx, slot))
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, models.SlotStatusOpen, slot.Status)

	got, err := s.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Landing page review", got.Title)
	assert.Equal(t, "design", got.ContentType)
	assert.Nil(t, got.ClaimedAt)
}

func TestGetSlot_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSlot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSlots_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSlot(ctx, &models.Slot{Title: "one"}))
	claimed := &models.Slot{Title: "two", Status: models.SlotStatusClaimed, Reviewer: "dana"}
	require.NoError(t, s.CreateSlot(ctx, claimed))

	all, err := s.ListSlots(ctx, SlotListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := s.ListSlots(ctx, SlotListFilter{Status: models.SlotStatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "one", open[0].Title)

	byReviewer, err := s.ListSlots(ctx, SlotListFilter{Reviewer: "dana"})
	require.NoError(t, err)
	require.Len(t, byReviewer, 1)
	assert.Equal(t, "two", byReviewer[0].Title)
}

func TestUpdateSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "before"}
	require.NoError(t, s.CreateSlot(ctx, slot))

	slot.Title = "after"
	slot.Status = models.SlotStatusClaimed
	slot.Reviewer = "dana"
	require.NoError(t, s.UpdateSlot(ctx, slot))

	got, err := s.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, models.SlotStatusClaimed, got.Status)
	assert.Equal(t, "dana", got.Reviewer)
}

func TestUpdateSlot_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateSlot(context.Background(), &models.Slot{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "doomed"}
	require.NoError(t, s.CreateSlot(ctx, slot))
	require.NoError(t, s.DeleteSlot(ctx, slot.ID))

	_, err := s.GetSlot(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteSlot(ctx, slot.ID), ErrNotFound)
}

func TestPutDraft_Upserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "with draft"}
	require.NoError(t, s.CreateSlot(ctx, slot))

	d := &models.DraftRecord{SlotID: slot.ID, Payload: []byte(`{"v":1}`), Format: "studio", Version: 2}
	require.NoError(t, s.PutDraft(ctx, d))

	d.Payload = []byte(`{"v":2}`)
	require.NoError(t, s.PutDraft(ctx, d), "second put must overwrite, not conflict")

	got, err := s.GetDraft(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got.Payload)
	assert.Equal(t, "studio", got.Format)
	assert.Equal(t, 2, got.Version)
}

func TestGetDraft_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetDraft(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "with draft"}
	require.NoError(t, s.CreateSlot(ctx, slot))
	require.NoError(t, s.PutDraft(ctx, &models.DraftRecord{SlotID: slot.ID, Payload: []byte(`{}`)}))

	require.NoError(t, s.DeleteDraft(ctx, slot.ID))
	_, err := s.GetDraft(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := &models.Slot{Title: "submitted work"}
	require.NoError(t, s.CreateSlot(ctx, slot))

	sub := &models.Submission{SlotID: slot.ID, Payload: []byte(`{"final":true}`)}
	require.NoError(t, s.CreateSubmission(ctx, sub))
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.SubmittedAt.IsZero())

	subs, err := s.ListSubmissions(ctx, slot.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, []byte(`{"final":true}`), subs[0].Payload)
	assert.Nil(t, subs[0].Attachments)

	empty, err := s.ListSubmissions(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
