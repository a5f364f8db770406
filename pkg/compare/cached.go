package compare

import (
	"context"
	"encoding/json"
	"fmt"

	"clifton/pkg/flight"
	"clifton/pkg/strengths"
)

// Comparer produces a comparison for two profiles.
type Comparer interface {
	Compare(ctx context.Context, a, b strengths.Profile) (*Result, error)
}

// Cached keeps recent comparisons and merges identical requests that are
// in flight, so a double submit costs one set of model calls.
type Cached struct {
	cache *flight.Cache[string, *Result]
}

// NewCached wraps c. Work runs under ctx rather than the caller's context
// because joined callers share the result.
func NewCached(ctx context.Context, c Comparer) *Cached {
	cc := &Cached{}
	cc.cache = flight.NewCache(func(key string) (*Result, error) {
		var p [2]strengths.Profile
		if err := json.Unmarshal([]byte(key), &p); err != nil {
			return nil, fmt.Errorf("decoding cache key: %w", err)
		}
		return c.Compare(ctx, p[0], p[1])
	})
	return cc
}

// Compare returns a cached comparison of a and b or computes one.
func (c *Cached) Compare(_ context.Context, a, b strengths.Profile) (*Result, error) {
	key, err := cacheKey(a, b)
	if err != nil {
		return nil, err
	}
	return c.cache.Get(key)
}

// Regenerate discards any cached comparison of a and b and computes a new one.
func (c *Cached) Regenerate(_ context.Context, a, b strengths.Profile) (*Result, error) {
	key, err := cacheKey(a, b)
	if err != nil {
		return nil, err
	}
	return c.cache.Force(key)
}

// cacheKey encodes the pair as JSON so the work function can recover both
// profiles exactly, whatever characters the names contain.
func cacheKey(a, b strengths.Profile) (string, error) {
	raw, err := json.Marshal([2]strengths.Profile{a, b})
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	return string(raw), nil
}
