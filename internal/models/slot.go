package models

import "time"

// SlotStatus tracks a review slot through its lifecycle.
type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "open"
	SlotStatusClaimed   SlotStatus = "claimed"
	SlotStatusSubmitted SlotStatus = "submitted"
)

// Slot is a claimable review request: one piece of work awaiting one
// structured review. The studio core only needs the slot id; slots exist
// so the server side has something to hang drafts and submissions off.
type Slot struct {
	ID          string
	Title       string
	ContentType string // design | code | writing | video | other
	Reviewer    string
	Status      SlotStatus
	ClaimedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DraftRecord is the server-side copy of a serialized draft.
type DraftRecord struct {
	SlotID    string
	Payload   []byte // serialized draft JSON
	Format    string // format marker from the payload ("studio")
	Version   int
	UpdatedAt time.Time
}

// Submission is a finalized review: the frozen draft plus any attachments.
type Submission struct {
	ID          string
	SlotID      string
	Payload     []byte
	Attachments []byte // JSON array of attachments, may be nil
	SubmittedAt time.Time
}
