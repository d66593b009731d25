package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewUID returns a fresh identity uid. ULIDs sort by creation time, which
// keeps the identities table scan order meaningful, and DefaultEntropy is
// safe for concurrent use.
func NewUID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}
