// Package broker defines the outbound message queue capability an
// ESME client pulls from (spec.md §4.5/§6). The core ships only an
// in-memory, channel-backed implementation; production use is
// expected to supply a broker fronting a real queue.
package broker

import "context"

// Outbound is one message handed to the broker for eventual delivery:
// enough to build a submit_sm/data_sm and to correlate the response
// back to the caller.
type Outbound struct {
	LogID       string
	ExtraData   any
	DestAddr    string
	SourceAddr  string
	Text        string
	ServiceType string
}

// Broker is the capability a Session pulls outbound work from. Enqueue
// is called by producers (outside the session); Dequeue is called by
// the session's writer goroutine and must return promptly once ctx is
// canceled.
type Broker interface {
	Enqueue(ctx context.Context, msg Outbound) error
	Dequeue(ctx context.Context) (Outbound, error)
}

// Memory is the in-memory, channel-backed reference Broker. It is
// bounded: Enqueue blocks (or returns ctx.Err()) once the channel is
// full, giving simple backpressure without an external queue.
type Memory struct {
	ch chan Outbound
}

// NewMemory creates a Memory broker with the given channel capacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{ch: make(chan Outbound, capacity)}
}

func (m *Memory) Enqueue(ctx context.Context, msg Outbound) error {
	select {
	case m.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Outbound, error) {
	select {
	case msg := <-m.ch:
		return msg, nil
	case <-ctx.Done():
		return Outbound{}, ctx.Err()
	}
}

// Len reports how many messages are currently queued, for metrics.
func (m *Memory) Len() int { return len(m.ch) }
