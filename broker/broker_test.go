package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEnqueueDequeueRoundTrip(t *testing.T) {
	b := NewMemory(2)
	ctx := context.Background()
	msg := Outbound{DestAddr: "1000", SourceAddr: "2000", Text: "hi"}
	require.NoError(t, b.Enqueue(ctx, msg))

	got, err := b.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestMemoryEnqueueBlocksWhenFull(t *testing.T) {
	b := NewMemory(1)
	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, Outbound{Text: "one"}))

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := b.Enqueue(cctx, Outbound{Text: "two"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryDequeueRespectsCancellation(t *testing.T) {
	b := NewMemory(1)
	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Dequeue(cctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryLen(t *testing.T) {
	b := NewMemory(2)
	assert.Equal(t, 0, b.Len())
	require.NoError(t, b.Enqueue(context.Background(), Outbound{}))
	assert.Equal(t, 1, b.Len())
}
