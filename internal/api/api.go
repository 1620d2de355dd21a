// Package api exposes the server side of the persistence bridge over
// REST: review slots, their drafts, and finalized submissions. The studio
// core talks to these routes through bridge.HTTPBridge.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/scoring"
	"github.com/critflow/studio/internal/store"
	"github.com/critflow/studio/internal/validate"
)

// Server provides the REST API handlers.
type Server struct {
	store store.Store
}

// NewServer creates a new API server over the given store.
func NewServer(s store.Store) *Server {
	return &Server{store: s}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/slots", s.listSlots)
	mux.HandleFunc("POST /api/v1/slots", s.createSlot)
	mux.HandleFunc("GET /api/v1/slots/{id}", s.getSlot)
	mux.HandleFunc("PUT /api/v1/slots/{id}", s.updateSlot)
	mux.HandleFunc("DELETE /api/v1/slots/{id}", s.deleteSlot)
	mux.HandleFunc("POST /api/v1/slots/{id}/claim", s.claimSlot)

	mux.HandleFunc("GET /api/v1/slots/{id}/draft", s.getDraft)
	mux.HandleFunc("PUT /api/v1/slots/{id}/draft", s.putDraft)

	mux.HandleFunc("POST /api/v1/slots/{id}/submit", s.submit)
	mux.HandleFunc("GET /api/v1/slots/{id}/submissions", s.listSubmissions)

	mux.HandleFunc("GET /api/v1/slots/{id}/quality", s.quality)
	mux.HandleFunc("GET /api/v1/slots/{id}/readiness", s.readiness)

	return corsMiddleware(logMiddleware(mux))
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("api request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store lookup failures to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// --- Slots ---

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	filter := store.SlotListFilter{
		Status:   models.SlotStatus(r.URL.Query().Get("status")),
		Reviewer: r.URL.Query().Get("reviewer"),
	}
	slots, err := s.store.ListSlots(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) createSlot(w http.ResponseWriter, r *http.Request) {
	var slot models.Slot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if slot.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if slot.ContentType == "" {
		slot.ContentType = "other"
	}
	if err := s.store.CreateSlot(r.Context(), &slot); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := s.store.GetSlot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) updateSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := s.store.GetSlot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	patchString(patch, "title", &slot.Title)
	patchString(patch, "content_type", &slot.ContentType)
	patchString(patch, "reviewer", &slot.Reviewer)
	if v, ok := patch["status"].(string); ok {
		slot.Status = models.SlotStatus(v)
	}

	if err := s.store.UpdateSlot(r.Context(), slot); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func patchString(patch map[string]any, key string, target *string) {
	if v, ok := patch[key].(string); ok {
		*target = v
	}
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSlot(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) claimSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := s.store.GetSlot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if slot.Status != models.SlotStatusOpen {
		writeError(w, http.StatusConflict, fmt.Sprintf("slot is %s, not open", slot.Status))
		return
	}

	var req struct {
		Reviewer string `json:"reviewer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Reviewer == "" {
		writeError(w, http.StatusBadRequest, "reviewer is required")
		return
	}

	now := time.Now().UTC()
	slot.Reviewer = req.Reviewer
	slot.Status = models.SlotStatusClaimed
	slot.ClaimedAt = &now
	if err := s.store.UpdateSlot(r.Context(), slot); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

// --- Drafts ---

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.Payload)
}

// putDraft stores a serialized draft. Only payloads carrying the studio
// format marker are accepted; saving never runs the validation gate, so
// half-finished drafts are always persistable.
func (s *Server) putDraft(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("id")
	if _, err := s.store.GetSlot(r.Context(), slotID); err != nil {
		writeStoreError(w, err)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	d, err := draft.Decode(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.PutDraft(r.Context(), &models.DraftRecord{
		SlotID:  slotID,
		Payload: payload,
		Format:  d.FormatMarker,
		Version: d.Version,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// --- Submission ---

type submitRequest struct {
	Draft       json.RawMessage    `json:"draft"`
	Attachments []submitAttachment `json:"attachments,omitempty"`
}

type submitAttachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType,omitempty"`
	Data      []byte `json:"data,omitempty"`
}

// submit finalizes a review. The readiness gate is re-run server-side so a
// bypassed client cannot submit an incomplete review.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("id")
	slot, err := s.store.GetSlot(r.Context(), slotID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if slot.Status == models.SlotStatusSubmitted {
		writeError(w, http.StatusConflict, "slot already has a submitted review")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	d, err := draft.Decode(req.Draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result := validate.Readiness(d.State()); !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	// Freeze the final draft alongside the submission.
	if err := s.store.PutDraft(r.Context(), &models.DraftRecord{
		SlotID:  slotID,
		Payload: req.Draft,
		Format:  d.FormatMarker,
		Version: d.Version,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var attach []byte
	if len(req.Attachments) > 0 {
		attach, err = json.Marshal(req.Attachments)
		if err != nil {
			writeError(w, http.StatusBadRequest, "encode attachments: "+err.Error())
			return
		}
	}
	sub := &models.Submission{SlotID: slotID, Payload: req.Draft, Attachments: attach}
	if err := s.store.CreateSubmission(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slot.Status = models.SlotStatusSubmitted
	if err := s.store.UpdateSlot(r.Context(), slot); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubmissions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// --- Advisory scoring ---

func (s *Server) quality(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDraft(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	metrics := scoring.CalculateQualityMetrics(scoring.SnapshotFromState(d.State()))
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDraft(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validate.Readiness(d.State()))
}

func (s *Server) loadDraft(r *http.Request) (*draft.Draft, error) {
	rec, err := s.store.GetDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	return draft.Decode(rec.Payload)
}
