package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/critflow/studio/internal/draft"
)

// HTTPBridge talks to the hosted review API.
type HTTPBridge struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBridge creates a bridge for the given API base URL
// (e.g. "http://localhost:8787").
func NewHTTPBridge(baseURL string) *HTTPBridge {
	return &HTTPBridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *HTTPBridge) draftURL(slotID string) string {
	return fmt.Sprintf("%s/api/v1/slots/%s/draft", b.baseURL, slotID)
}

// LoadDraft fetches the draft for a slot; a 404 maps to ErrNotFound.
func (b *HTTPBridge) LoadDraft(ctx context.Context, slotID string) (*draft.Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.draftURL(slotID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("load draft", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read draft body: %w", err)
	}
	return draft.Decode(data)
}

// SaveDraft uploads the serialized draft for a slot.
func (b *HTTPBridge) SaveDraft(ctx context.Context, slotID string, d *draft.Draft) error {
	payload, err := d.Encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.draftURL(slotID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError("save draft", resp)
	}
	return nil
}

// submitRequest is the wire shape of a submission.
type submitRequest struct {
	Draft       json.RawMessage `json:"draft"`
	Attachments []Attachment    `json:"attachments,omitempty"`
}

// SubmitReview finalizes the review for a slot.
func (b *HTTPBridge) SubmitReview(ctx context.Context, slotID string, d *draft.Draft, attachments []Attachment) error {
	payload, err := d.Encode()
	if err != nil {
		return err
	}
	body, err := json.Marshal(submitRequest{Draft: payload, Attachments: attachments})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/slots/%s/submit", b.baseURL, slotID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit review: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError("submit review", resp)
	}
	return nil
}

func apiError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s: %s (HTTP %d)", op, e.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: HTTP %d", op, resp.StatusCode)
}
