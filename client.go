// Package smpplib implements an asynchronous SMPP 3.4 ESME client:
// codec, GSM-7 text encoding, request/response correlation, and a
// session state machine wired together behind a small ESME façade
// (spec.md §1).
package smpplib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/niksabaldun/smpplib/broker"
	"github.com/niksabaldun/smpplib/corelog"
	"github.com/niksabaldun/smpplib/correlator"
	"github.com/niksabaldun/smpplib/gsm7"
	"github.com/niksabaldun/smpplib/hook"
	"github.com/niksabaldun/smpplib/pdu"
	"github.com/niksabaldun/smpplib/session"
)

// Client is the ESME façade (spec.md §4.5): it wires a Config together
// with a broker.Broker, correlator.Correlator, hook.Hook, and the
// session.Session actor that drives the wire protocol.
type Client struct {
	cfg  Config
	corr correlator.Correlator
	brk  broker.Broker
	hk   hook.Hook
	log  corelog.Logger
	mx   *session.Metrics
	sess *session.Session

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ClientOption customizes a Client built by NewClient.
type ClientOption func(*Client)

// WithCorrelator overrides the default in-memory Correlator, e.g. to
// back the long-lived delivery map with persistent storage (spec.md
// §4.3).
func WithCorrelator(c correlator.Correlator) ClientOption {
	return func(cl *Client) { cl.corr = c }
}

// WithBroker overrides the default in-memory, channel-backed Broker.
func WithBroker(b broker.Broker) ClientOption {
	return func(cl *Client) { cl.brk = b }
}

// WithHook installs the user-application callback capability
// (spec.md §4.5/§6). The default is hook.Noop.
func WithHook(h hook.Hook) ClientOption {
	return func(cl *Client) { cl.hk = h }
}

// WithLogger installs the structured logger every package logs
// through. The default discards everything.
func WithLogger(l corelog.Logger) ClientOption {
	return func(cl *Client) { cl.log = l }
}

// WithSessionMetrics installs Prometheus instrumentation for the
// session actor.
func WithSessionMetrics(m *session.Metrics) ClientOption {
	return func(cl *Client) { cl.mx = m }
}

// NewClient builds a Client from cfg, defaulting to in-memory broker
// and correlator implementations and a no-op hook (spec.md §4.5's
// "the core supplies in-memory reference implementations").
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	c := &Client{
		cfg:  cfg,
		corr: correlator.NewMemory(cfg.MaxInFlight),
		brk:  broker.NewMemory(cfg.MaxInFlight * 4),
		hk:   hook.Noop{},
		log:  corelog.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect performs one bind attempt and surfaces errors synchronously
// (spec.md §4.5), without entering the reconnect loop Start drives.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("smpplib: invalid configuration: %w", err)
	}
	c.mu.Lock()
	if c.sess == nil {
		c.sess = session.New(c.cfg.toSessionConfig(), c.corr, c.brk, c.hk, c.log, c.mx)
	}
	sess := c.sess
	c.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.BindTimeout)
	defer cancel()
	return sess.ConnectOnce(connectCtx)
}

// Start runs the session until Stop is called, reconnecting as
// needed (spec.md §4.5). It blocks until ctx is canceled, Stop is
// called, or the session ends for an unrecoverable reason (e.g. bind
// rejected).
func (c *Client) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("smpplib: invalid configuration: %w", err)
	}
	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.sess == nil {
		c.sess = session.New(c.cfg.toSessionConfig(), c.corr, c.brk, c.hk, c.log, c.mx)
	}
	sess := c.sess
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	err := sess.Run(runCtx)

	c.mu.Lock()
	c.running = false
	close(c.done)
	c.mu.Unlock()
	return err
}

// Stop sends unbind if bound, closes the socket, and fails all pending
// requests with SessionClosed (spec.md §4.5). It does not wait for
// frames already queued for the writer, or messages still in the
// broker, to be written first. It is safe to call even if Start was
// never called.
func (c *Client) Stop() {
	c.mu.Lock()
	sess, cancel, done := c.sess, c.cancel, c.done
	running := c.running
	c.mu.Unlock()
	if sess == nil {
		return
	}
	sess.Stop()
	if cancel != nil {
		cancel()
	}
	if running && done != nil {
		<-done
	}
}

// SubmitSM enqueues a short message for delivery, encoding text with
// enc (or Config.DefaultEncoding if enc is the zero value,
// gsm7.EncodingGSM7) and waiting for submit_sm_resp. logID/extraData
// are threaded through to the hook/correlator so the caller can
// correlate a later delivery receipt (spec.md §4.2/§6).
func (c *Client) SubmitSM(ctx context.Context, sourceAddr, destAddr, text string, enc gsm7.Encoding, logID string, extraData any) (string, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return "", ErrNotConnected
	}

	if enc == gsm7.EncodingGSM7 {
		enc = gsm7.Encoding(c.cfg.DefaultEncoding)
	}
	encoded, err := gsm7.EncodeText(text, enc, false)
	if err != nil {
		c.hk.SendError(ctx, "encode short_message", err, c.cfg.ClientID)
		return "", err
	}

	submit := &pdu.SubmitSm{}
	submit.SourceAddr = pdu.Address{Number: sourceAddr}
	submit.DestAddr = pdu.Address{Number: destAddr}
	submit.DataCoding = gsm7.DataCoding(enc)
	submit.ShortMessage = encoded
	submit.RegisteredDelivery = 1

	resultCh, err := sess.Send(ctx, submit, logID, extraData)
	if err != nil {
		return "", err
	}
	select {
	case result := <-resultCh:
		if result.Err != nil {
			return "", result.Err
		}
		resp, ok := result.Response.(*pdu.SubmitSmResp)
		if !ok {
			return "", errors.New("smpplib: unexpected response type for submit_sm")
		}
		return resp.MessageID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Enqueue hands msg to the configured Broker for the session's writer
// to pick up asynchronously, rather than waiting for submit_sm_resp
// inline (the ESME-side producer path spec.md §4.5 describes).
func (c *Client) Enqueue(ctx context.Context, msg broker.Outbound) error {
	return c.brk.Enqueue(ctx, msg)
}

// State reports the underlying session's current state, or
// session.StateClosed if Connect/Start has never been called.
func (c *Client) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return session.StateClosed
	}
	return c.sess.State()
}
