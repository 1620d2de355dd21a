package models

import (
	"fmt"
	"time"
)

// AnnotationType identifies how an annotation anchors to the reviewed artifact.
type AnnotationType string

const (
	AnnotationPin       AnnotationType = "pin"       // point, percentage coords
	AnnotationHighlight AnnotationType = "highlight" // text range
	AnnotationRegion    AnnotationType = "region"    // bounding box, percentage coords
	AnnotationTimestamp AnnotationType = "timestamp" // seconds into video/audio
)

// Annotation is a marker anchored to the reviewed artifact, optionally
// linked to one issue or strength card. LinkedCardID is the single source
// of truth for the card/annotation edge; a card's annotation set is always
// derived by filtering, never stored.
type Annotation struct {
	ID           string         `json:"id"`
	Type         AnnotationType `json:"type"`
	LinkedCardID string         `json:"linkedCardId,omitempty"` // empty = unlinked
	Comment      string         `json:"comment,omitempty"`      // legacy free text
	Color        string         `json:"color,omitempty"`
	Number       int            `json:"number"` // display ordinal, stable after creation

	// Pin and region coordinates are percentages of the artifact's rendered
	// bounding box (0-100), so re-rendering at another size keeps them valid.
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Highlight anchor.
	StartOffset  int    `json:"startOffset,omitempty"`
	EndOffset    int    `json:"endOffset,omitempty"`
	SelectedText string `json:"selectedText,omitempty"`

	// Temporal anchor, seconds from content start.
	Timestamp    float64  `json:"timestamp,omitempty"`
	TimestampEnd *float64 `json:"timestampEnd,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the anchor against the coordinate contract for its type.
func (a *Annotation) Validate() error {
	switch a.Type {
	case AnnotationPin:
		if err := checkPercent("x", a.X); err != nil {
			return err
		}
		return checkPercent("y", a.Y)
	case AnnotationRegion:
		for _, c := range []struct {
			name string
			v    float64
		}{{"x", a.X}, {"y", a.Y}, {"width", a.Width}, {"height", a.Height}} {
			if err := checkPercent(c.name, c.v); err != nil {
				return err
			}
		}
		return nil
	case AnnotationHighlight:
		if a.StartOffset < 0 || a.EndOffset < a.StartOffset {
			return fmt.Errorf("invalid highlight range [%d,%d]", a.StartOffset, a.EndOffset)
		}
		return nil
	case AnnotationTimestamp:
		if a.Timestamp < 0 {
			return fmt.Errorf("timestamp must be >= 0, got %v", a.Timestamp)
		}
		if a.TimestampEnd != nil && *a.TimestampEnd < a.Timestamp {
			return fmt.Errorf("timestampEnd %v is before timestamp %v", *a.TimestampEnd, a.Timestamp)
		}
		return nil
	default:
		return fmt.Errorf("unknown annotation type %q", a.Type)
	}
}

func checkPercent(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be a percentage in [0,100], got %v", name, v)
	}
	return nil
}
