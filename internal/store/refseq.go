package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefSequence hands out reference numbers of the form RTI<year>-<00042>
// from a per-year Redis counter. The counter is atomic across worker
// instances; the table's UNIQUE constraint catches anything that slips
// past it.
type RefSequence struct {
	client *redis.Client
	prefix string
}

// NewRefSequence builds a sequence over a Redis client. prefix is the
// reference number prefix, normally "RTI".
func NewRefSequence(client *redis.Client, prefix string) *RefSequence {
	return &RefSequence{client: client, prefix: prefix}
}

func (r *RefSequence) key(year int) string {
	return fmt.Sprintf("rti:refseq:%d", year)
}

// Next returns the next reference number for the year of now.
func (r *RefSequence) Next(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	seq, err := r.client.Incr(ctx, r.key(year)).Result()
	if err != nil {
		return "", fmt.Errorf("advance reference sequence: %w", err)
	}
	return fmt.Sprintf("%s%d-%05d", r.prefix, year, seq), nil
}

// Peek reports the current counter value without advancing it. Used by
// health and admin tooling.
func (r *RefSequence) Peek(ctx context.Context, now time.Time) (int64, error) {
	val, err := r.client.Get(ctx, r.key(now.Year())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read reference sequence: %w", err)
	}
	return val, nil
}
