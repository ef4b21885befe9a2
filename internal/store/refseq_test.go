package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequence(t *testing.T) *RefSequence {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRefSequence(client, "RTI")
}

func TestRefSequence_Next(t *testing.T) {
	seq := newTestSequence(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	first, err := seq.Next(context.Background(), now)
	require.NoError(t, err)
	second, err := seq.Next(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "RTI2026-00001", first)
	assert.Equal(t, "RTI2026-00002", second)
}

func TestRefSequence_Next_YearsAreIndependent(t *testing.T) {
	seq := newTestSequence(t)

	ref2026, err := seq.Next(context.Background(), time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ref2027, err := seq.Next(context.Background(), time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "RTI2026-00001", ref2026)
	assert.Equal(t, "RTI2027-00001", ref2027)
}

func TestRefSequence_Next_NoDuplicatesUnderConcurrency(t *testing.T) {
	seq := newTestSequence(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	const n = 50
	var (
		mu   sync.Mutex
		seen = make(map[string]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := seq.Next(context.Background(), now)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[ref], fmt.Sprintf("duplicate reference %s", ref))
			seen[ref] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestRefSequence_Next_CounterUnavailable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	seq := NewRefSequence(client, "RTI")
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	mock.ExpectIncr("rti:refseq:2026").SetErr(fmt.Errorf("connection refused"))

	ref, err := seq.Next(context.Background(), now)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "advance reference sequence")
	assert.Empty(t, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefSequence_Peek(t *testing.T) {
	seq := newTestSequence(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	val, err := seq.Peek(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), val)

	_, err = seq.Next(context.Background(), now)
	require.NoError(t, err)

	val, err = seq.Peek(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}
