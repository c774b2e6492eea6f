package correlator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequenceWrapsAndSkipsReserved(t *testing.T) {
	m := NewMemory(0)
	m.seq = sequenceMax - 1
	assert.Equal(t, uint32(sequenceMax), m.NextSequence())
	assert.Equal(t, uint32(1), m.NextSequence())
}

func TestPutGetRoundTrip(t *testing.T) {
	m := NewMemory(10)
	p := &PendingRequest{SequenceNumber: 5}
	require.NoError(t, m.Put(p))

	got := m.Get(5)
	assert.Same(t, p, got)
	assert.Nil(t, m.Get(5))
}

func TestWindowFullRejectsPut(t *testing.T) {
	m := NewMemory(1)
	require.NoError(t, m.Put(&PendingRequest{SequenceNumber: 1}))
	err := m.Put(&PendingRequest{SequenceNumber: 2})
	assert.ErrorIs(t, err, ErrWindowFull)
}

func TestGetOfUnknownSequenceCountsOrphan(t *testing.T) {
	m := NewMemory(0)
	assert.Nil(t, m.Get(999))
	assert.Equal(t, int64(1), m.Stats().Orphans)
}

// TestResolveIsRaceFree exercises the pattern session.handleResponse
// uses: Get removes the pending, the caller sets Response/Err, then
// calls Resolve — a goroutine blocked on Waker must never observe a
// zero-value Response/Err.
func TestResolveIsRaceFree(t *testing.T) {
	m := NewMemory(10)
	p := &PendingRequest{SequenceNumber: 1}
	require.NoError(t, m.Put(p))

	var wg sync.WaitGroup
	wg.Add(1)
	var seenErr error
	go func() {
		defer wg.Done()
		<-p.Waker()
		seenErr = p.Err
	}()

	got := m.Get(1)
	require.NotNil(t, got)
	got.Err = errors.New("boom")
	got.Resolve()

	wg.Wait()
	assert.EqualError(t, seenErr, "boom")
}

func TestResolveIsIdempotent(t *testing.T) {
	p := &PendingRequest{waker: make(chan struct{})}
	assert.NotPanics(t, func() {
		p.Resolve()
		p.Resolve()
	})
}

func TestExpireReclaimsOverdueRequests(t *testing.T) {
	m := NewMemory(10)
	past := &PendingRequest{SequenceNumber: 1, Deadline: time.Now().Add(-time.Second)}
	future := &PendingRequest{SequenceNumber: 2, Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, m.Put(past))
	require.NoError(t, m.Put(future))

	expired := m.Expire(time.Now())
	require.Len(t, expired, 1)
	assert.Equal(t, uint32(1), expired[0].SequenceNumber)
	assert.ErrorIs(t, expired[0].Err, ErrRequestExpired)
	select {
	case <-past.Waker():
	default:
		t.Fatal("expired pending should be resolved")
	}

	assert.Equal(t, int64(1), m.Stats().Expired)
	assert.NotNil(t, m.Get(2))
}

func TestDropResolvesEveryPending(t *testing.T) {
	m := NewMemory(10)
	p1 := &PendingRequest{SequenceNumber: 1}
	p2 := &PendingRequest{SequenceNumber: 2}
	require.NoError(t, m.Put(p1))
	require.NoError(t, m.Put(p2))

	sentinel := errors.New("dropped")
	m.Drop(sentinel)

	for _, p := range []*PendingRequest{p1, p2} {
		select {
		case <-p.Waker():
		default:
			t.Fatal("dropped pending should be resolved")
		}
		assert.ErrorIs(t, p.Err, sentinel)
	}
	assert.Equal(t, 0, m.Stats().InFlight)
}

func TestDeliveryRoundTrip(t *testing.T) {
	m := NewMemory(10)
	ctx := context.Background()
	rec := DeliveryRecord{SmscMessageID: "msg-1", LogID: "log-1"}
	require.NoError(t, m.PutDelivery(ctx, rec))

	got, ok, err := m.GetDelivery(ctx, "msg-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	_, ok, err = m.GetDelivery(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
