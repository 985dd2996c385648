package repo

import (
	"context"
	"time"
)

// RateLimitCounter is the narrow atomic-increment surface of the shared
// counter store. IncrementWithExpiry must increment and, when this is the
// first increment in the window, set the key's expiry in the same atomic
// step - splitting it into two round trips reopens the crash-before-expire
// race.
type RateLimitCounter interface {
	IncrementWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}
