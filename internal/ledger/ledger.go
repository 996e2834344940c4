// Package ledger persists per-quiz attempt counts. A ledger is the only
// durable state the delivery runtime keeps: one non-negative counter per quiz
// identity, incremented once per completed attempt and never decremented.
package ledger

import (
	"context"
	"encoding/base64"
)

// Ledger is a persistent attempt counter. Increment must be atomic for a
// single session (read-modify-write); cross-process races on the same key are
// an accepted limitation of the delivery model.
type Ledger interface {
	// Count returns the number of completed attempts recorded under key.
	Count(ctx context.Context, key string) (int, error)
	// Increment adds one completed attempt and returns the new count.
	Increment(ctx context.Context, key string) (int, error)
}

// Key derives the stable ledger key for a quiz from its title, mirroring the
// key scheme the exported documents have always used so counters written by
// older artifacts remain valid.
func Key(title string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(title))
	if len(enc) > 32 {
		enc = enc[:32]
	}
	return "quiz_attempts_" + enc
}
