// Package hook defines the user-application callback capability a
// Session invokes inline on its own goroutine (spec.md §4.5/§6): the
// core never defines what an application does with a PDU, only when
// it is told about one.
package hook

import "context"

// Hook is the capability surface spec.md §4.5 specifies. All three
// methods run inline in the session's goroutine: they must not block
// indefinitely (a slow hook applies backpressure to the whole
// session, spec.md §4.4) and must never panic: the session does not
// recover a panic raised by a hook method. A hook that wants isolation
// should post to its own queue rather than do work here.
type Hook interface {
	// Sending is called before every frame write, in wire-send order.
	Sending(ctx context.Context, pduValue any, pduBytes []byte, clientID string)

	// Received is called after every successful decode, in
	// wire-arrival order, even for responses that matched no pending
	// request. The session passes pduBytes as nil on every call; the raw
	// frame bytes are not reported. A deliver_sm that correlates to an
	// earlier submit_sm is additionally reported a second time with a
	// session.DeliveryReceipt value, carrying the log_id/extra_data the
	// submit_sm was sent with.
	Received(ctx context.Context, pduValue any, pduBytes []byte, clientID string)

	// SendError is called on encode failure or pre-send validation
	// failure for msg; the message is dropped, not requeued.
	SendError(ctx context.Context, msg string, err error, clientID string)
}

// Noop is the zero-cost default Hook: every method is a no-op. Embed
// it to implement only the methods a caller cares about.
type Noop struct{}

func (Noop) Sending(context.Context, any, []byte, string)     {}
func (Noop) Received(context.Context, any, []byte, string)    {}
func (Noop) SendError(context.Context, string, error, string) {}
