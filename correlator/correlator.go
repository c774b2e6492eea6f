// Package correlator implements the two matching tables a bound SMPP
// session needs: a short-lived sequence-number map pairing a request
// to its response, and a long-lived message-id map pairing a
// submit_sm_resp to the deliver_sm receipt that eventually closes it
// out (spec.md §4.3). Both live behind the Correlator capability so
// the long-lived half can be swapped for a durable store without
// touching session code.
package correlator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWindowFull is returned by Put when the in-flight window is
// already at max_in_flight capacity (spec.md §4.3).
var ErrWindowFull = errors.New("correlator: window full")

// PendingRequest tracks one request awaiting its matching response
// (spec.md §3). Waker is closed by Resolve to release whichever
// goroutine is blocked waiting on the outcome: Expire and Drop resolve
// the requests they remove, while a caller of Get resolves the one it
// got. Err/Response are set before the close.
type PendingRequest struct {
	SequenceNumber    uint32
	CommandIDExpected uint32
	LogID             string
	ExtraData         any
	Deadline          time.Time

	waker     chan struct{}
	resolveMu sync.Once
	Response  any
	Err       error
}

// Waker returns the channel that closes once this request is
// resolved (matched, expired, or dropped).
func (p *PendingRequest) Waker() <-chan struct{} { return p.waker }

// Resolve closes the waker channel, releasing whoever is blocked on
// Waker(). Callers must set Response/Err before calling Resolve, not
// after: Get removes a pending from the map but leaves resolving to
// the caller so the match and its outcome are never observed apart.
func (p *PendingRequest) Resolve() { p.resolveMu.Do(func() { close(p.waker) }) }

// DeliveryRecord tracks a submitted message awaiting its delivery
// receipt (spec.md §3). It has no deadline: the core never imposes a
// TTL on it, matching spec.md's "destroyed ... by user-driven eviction"
// lifecycle note.
type DeliveryRecord struct {
	SmscMessageID string
	LogID         string
	ExtraData     any
	SubmittedAt   time.Time
}

// Correlator is the capability surface spec.md §4.3 specifies. A
// Session calls Put/Get/NextSequence/Expire on its own goroutine, and
// PutDelivery/GetDelivery possibly off it (the long-lived half may be
// backed by durable storage and therefore block).
type Correlator interface {
	// NextSequence returns the next sequence number, wrapping at
	// 0x7FFFFFFF back to 1 (0 is reserved).
	NextSequence() uint32

	// Put registers an in-flight request. It fails with ErrWindowFull
	// if the window is already at capacity.
	Put(p *PendingRequest) error

	// Get removes and returns the pending request matching sequence,
	// or nil if none is registered. The caller must set Response/Err
	// and call Resolve once it has done so.
	Get(sequence uint32) *PendingRequest

	// PutDelivery stores a receipt-awaiting record, keyed by the
	// smsc_message_id submit_sm_resp returned.
	PutDelivery(ctx context.Context, rec DeliveryRecord) error

	// GetDelivery removes and returns the delivery record for
	// smscMessageID, or ok=false if none is registered.
	GetDelivery(ctx context.Context, smscMessageID string) (DeliveryRecord, bool, error)

	// Expire returns (and removes) every pending request whose
	// deadline is at or before now.
	Expire(now time.Time) []*PendingRequest

	// Drop resolves and removes every outstanding pending request
	// with err, used when the underlying session is torn down.
	Drop(err error)

	// Stats reports a point-in-time snapshot for monitoring.
	Stats() Stats
}

// sequenceReserved is the value next_sequence never returns (spec.md §3).
const sequenceReserved = 0

// sequenceMax is the last value before wraparound (spec.md §3).
const sequenceMax = 0x7FFFFFFF

// Memory is the in-memory, non-durable Correlator implementation
// spec.md §4.5 calls the core's default. Its delivery map is a plain
// Go map guarded by the same mutex as the sequence map; a persistent
// implementation would replace just PutDelivery/GetDelivery.
type Memory struct {
	mu sync.Mutex

	seq         uint32
	maxInFlight int
	pend        map[uint32]*PendingRequest
	deliv       map[string]DeliveryRecord

	orphans int64
	expired int64
}

// NewMemory creates an empty in-memory Correlator. maxInFlight bounds
// the number of concurrently pending requests (spec.md §4.3 Window).
func NewMemory(maxInFlight int) *Memory {
	return &Memory{
		pend:  make(map[uint32]*PendingRequest),
		deliv: make(map[string]DeliveryRecord),
		maxInFlight: maxInFlight,
	}
}

func (m *Memory) NextSequence() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq >= sequenceMax {
		m.seq = 1
	} else {
		m.seq++
	}
	if m.seq == sequenceReserved {
		m.seq = 1
	}
	return m.seq
}

func (m *Memory) Put(p *PendingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxInFlight > 0 && len(m.pend) >= m.maxInFlight {
		return ErrWindowFull
	}
	p.waker = make(chan struct{})
	m.pend[p.SequenceNumber] = p
	return nil
}

// Get removes and returns the pending request matching sequence, or
// nil if none is registered. The caller is responsible for setting
// Response/Err and calling Resolve once it has done so.
func (m *Memory) Get(sequence uint32) *PendingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pend[sequence]
	if ok {
		delete(m.pend, sequence)
	} else {
		m.orphans++
	}
	return p
}

func (m *Memory) Expire(now time.Time) []*PendingRequest {
	m.mu.Lock()
	var out []*PendingRequest
	for seq, p := range m.pend {
		if !p.Deadline.After(now) {
			delete(m.pend, seq)
			out = append(out, p)
		}
	}
	m.expired += int64(len(out))
	m.mu.Unlock()
	for _, p := range out {
		p.Err = ErrRequestExpired
		p.Resolve()
	}
	return out
}

// ErrRequestExpired is set on PendingRequest.Err when Expire reclaims it.
var ErrRequestExpired = errors.New("correlator: request expired")

func (m *Memory) Drop(err error) {
	m.mu.Lock()
	pend := m.pend
	m.pend = make(map[uint32]*PendingRequest)
	m.mu.Unlock()
	for _, p := range pend {
		p.Err = err
		p.Resolve()
	}
}

func (m *Memory) PutDelivery(_ context.Context, rec DeliveryRecord) error {
	m.mu.Lock()
	m.deliv[rec.SmscMessageID] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetDelivery(_ context.Context, smscMessageID string) (DeliveryRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.deliv[smscMessageID]
	if ok {
		delete(m.deliv, smscMessageID)
	}
	return rec, ok, nil
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		InFlight: len(m.pend),
		Orphans:  m.orphans,
		Expired:  m.expired,
	}
}
