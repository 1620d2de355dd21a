package studio

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newID generates a ULID for cards and annotations. Replaceable in tests
// for deterministic ids.
var newID = func() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// NewID returns a fresh unique id. Exposed so callers that need to know a
// card's id before dispatching (CLI, MCP tools) can pre-assign one.
func NewID() string {
	return newID()
}
