package facts

import (
	"github.com/oklog/ulid/v2"
)

// NewID returns a lexicographically sortable unique id seeded with a millisecond timestamp
func NewID(timestamp int64) string {
	if timestamp < 0 {
		timestamp = 0
	}

	ms := uint64(timestamp)
	if ms > ulid.MaxTime() {
		ms = ulid.MaxTime()
	}

	return ulid.MustNew(ms, ulid.DefaultEntropy()).String()
}
