package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	srv := httptest.NewServer(NewServer(s).Router())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Close()
	})
	return srv, s
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func readyDraft(t *testing.T) *draft.Draft {
	t.Helper()
	st := models.NewStudioState()
	st.Verdict = models.NewVerdictCard(time.Now())
	st.Verdict.Rating = 4
	st.Verdict.Summary = "Strong landing page overall, but the checkout flow needs attention before launch."
	for i := range st.Verdict.TopTakeaways {
		st.Verdict.TopTakeaways[i] = models.Takeaway{Issue: "contrast too low", Fix: "darken the text"}
	}
	return draft.FromState(st, time.Now())
}

func TestCreateSlot(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/slots", map[string]string{
		"Title": "Landing page review", "ContentType": "design",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var slot models.Slot
	decodeBody(t, resp, &slot)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, models.SlotStatusOpen, slot.Status)
}

func TestCreateSlot_MissingTitle(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/slots", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSlot_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/slots/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSlots_StatusFilter(t *testing.T) {
	srv, s := setupTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSlot(ctx, &models.Slot{Title: "open one"}))
	require.NoError(t, s.CreateSlot(ctx, &models.Slot{Title: "claimed one", Status: models.SlotStatusClaimed}))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/slots?status=open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var slots []models.Slot
	decodeBody(t, resp, &slots)
	require.Len(t, slots, 1)
	assert.Equal(t, "open one", slots[0].Title)
}

func TestClaimSlot(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "claimable"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	url := fmt.Sprintf("%s/api/v1/slots/%s/claim", srv.URL, slot.ID)
	resp := doJSON(t, http.MethodPost, url, map[string]string{"reviewer": "dana"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var claimed models.Slot
	decodeBody(t, resp, &claimed)
	assert.Equal(t, models.SlotStatusClaimed, claimed.Status)
	assert.Equal(t, "dana", claimed.Reviewer)
	assert.NotNil(t, claimed.ClaimedAt)

	// A second claim conflicts.
	resp = doJSON(t, http.MethodPost, url, map[string]string{"reviewer": "lee"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestClaimSlot_RequiresReviewer(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "claimable"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/slots/%s/claim", srv.URL, slot.ID), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftLifecycle(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "with draft"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))
	url := fmt.Sprintf("%s/api/v1/slots/%s/draft", srv.URL, slot.ID)

	// No draft yet.
	resp := doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Save one.
	st := models.NewStudioState()
	st.IssueCards = []models.IssueCard{{ID: "i1", Issue: "low contrast everywhere", Fix: "darken the body text"}}
	payload, err := draft.FromState(st, time.Now()).Encode()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = putResp.Body.Close() }()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	// Round-trips byte for byte.
	resp = doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got draft.Draft
	decodeBody(t, resp, &got)
	require.Len(t, got.IssueCards, 1)
	assert.Equal(t, "i1", got.IssueCards[0].ID)
}

func TestPutDraft_RejectsForeignFormat(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "with draft"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	url := fmt.Sprintf("%s/api/v1/slots/%s/draft", srv.URL, slot.ID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader([]byte(`{"_format":"legacy"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_GateRejectsIncomplete(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "incomplete"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	payload, err := draft.FromState(models.NewStudioState(), time.Now()).Encode()
	require.NoError(t, err)

	url := fmt.Sprintf("%s/api/v1/slots/%s/submit", srv.URL, slot.ID)
	resp := doJSON(t, http.MethodPost, url, map[string]any{"draft": json.RawMessage(payload)})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var result struct {
		IsValid bool     `json:"isValid"`
		Errors  []string `json:"errors"`
	}
	decodeBody(t, resp, &result)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "verdict is missing")

	// Nothing was recorded.
	subs, err := s.ListSubmissions(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubmit_Succeeds(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "ready", Status: models.SlotStatusClaimed}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	payload, err := readyDraft(t).Encode()
	require.NoError(t, err)

	url := fmt.Sprintf("%s/api/v1/slots/%s/submit", srv.URL, slot.ID)
	resp := doJSON(t, http.MethodPost, url, map[string]any{
		"draft":       json.RawMessage(payload),
		"attachments": []map[string]string{{"name": "notes.md"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	updated, err := s.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusSubmitted, updated.Status)

	// Re-submitting conflicts.
	resp = doJSON(t, http.MethodPost, url, map[string]any{"draft": json.RawMessage(payload)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestQualityAndReadiness(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "scored"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	payload, err := readyDraft(t).Encode()
	require.NoError(t, err)
	require.NoError(t, s.PutDraft(context.Background(), &models.DraftRecord{
		SlotID: slot.ID, Payload: payload, Format: draft.Format, Version: draft.Version,
	}))

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/slots/%s/quality", srv.URL, slot.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var metrics map[string]any
	decodeBody(t, resp, &metrics)
	assert.Contains(t, metrics, "completeness_score")
	assert.Contains(t, metrics, "estimated_tone")

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/slots/%s/readiness", srv.URL, slot.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		IsValid bool `json:"isValid"`
	}
	decodeBody(t, resp, &result)
	assert.True(t, result.IsValid)
}

func TestUpdateSlot_Patch(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "before", ContentType: "design"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/slots/"+slot.ID, map[string]string{"title": "after"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Slot
	decodeBody(t, resp, &updated)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "design", updated.ContentType, "unpatched fields survive")
}

func TestDeleteSlot(t *testing.T) {
	srv, s := setupTestServer(t)
	slot := &models.Slot{Title: "doomed"}
	require.NoError(t, s.CreateSlot(context.Background(), slot))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/slots/"+slot.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/slots/"+slot.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
