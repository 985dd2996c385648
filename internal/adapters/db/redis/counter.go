package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
)

const keyPrefix = "rate_limit:"

// incrWithExpiry increments the counter and, only when this call created
// it, sets its expiry in the same script invocation. One round trip: a
// crash between INCR and EXPIRE can never strand a counter without a TTL.
var incrWithExpiry = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Counter is the shared admission counter backed by Redis. All gateway
// instances point at the same keyspace, so throttling decisions are
// consistent across the fleet.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

func (c *Counter) IncrementWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := incrWithExpiry.Run(ctx, c.client,
		[]string{keyPrefix + key},
		window.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, customErrors.WrapStoreUnavailable(err, "IncrementWithExpiry")
	}
	return count, nil
}
