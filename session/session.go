package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/niksabaldun/smpplib/broker"
	"github.com/niksabaldun/smpplib/corelog"
	"github.com/niksabaldun/smpplib/correlator"
	"github.com/niksabaldun/smpplib/hook"
	"github.com/niksabaldun/smpplib/pdu"
)

// BindMode selects which of the three bind commands a session opens
// with (spec.md §3/§6).
type BindMode int

const (
	BindTX BindMode = iota
	BindRX
	BindTRX
)

// Config carries the connection and timing parameters a Session
// needs (spec.md §6). The root Client owns the full public
// configuration surface; this is the subset the session actor acts on.
type Config struct {
	Host             string
	Port             int
	SystemID         string
	Password         string
	SystemType       string
	BindMode         BindMode
	InterfaceVersion byte
	AddrTON          pdu.TON
	AddrNPI          pdu.NPI
	AddressRange     string

	EnquireLinkInterval time.Duration
	RequestTimeout      time.Duration
	BindTimeout         time.Duration
	ReconnectInitial    time.Duration
	ReconnectMax        time.Duration
	ThrottleInitial     time.Duration
	ThrottleMax         time.Duration
	MaxInFlight         int
	MaxPduSize          uint32

	ClientID string
}

// queuedFrame is an encoded PDU waiting to be written. The matching
// PendingRequest, if any, is already registered with the correlator
// before a frame is queued (see Send/sendOutbound). status is the
// command_status the frame is encoded with; the zero value is
// StatusOK, so only nack-style frames need to set it.
type queuedFrame struct {
	id       pdu.CommandID
	sequence uint32
	status   pdu.Status
	body     pdu.PDU
}

// Session is the actor owning one TCP connection: a reader goroutine,
// a writer goroutine, and a timekeeper goroutine, coordinated through
// the correlator and a small internal state box (spec.md §4.4).
type Session struct {
	cfg   Config
	corr  correlator.Correlator
	brk   broker.Broker
	hk    hook.Hook
	log   corelog.Logger
	mx    *Metrics
	state *stateBox

	mu      sync.Mutex
	conn    net.Conn
	dec     *pdu.Decoder
	highPri chan queuedFrame

	throttleMu    sync.Mutex
	throttleDelay time.Duration

	lastWrite   atomicTime
	stopping    chan struct{}
	stopOnce    sync.Once
}

// atomicTime is a tiny mutex-guarded timestamp, avoiding a dependency
// on sync/atomic's newer Pointer generics for a single time.Time.
type atomicTime struct {
	mu sync.Mutex
	t  time.Time
}

func (a *atomicTime) set(t time.Time) {
	a.mu.Lock()
	a.t = t
	a.mu.Unlock()
}

func (a *atomicTime) get() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t
}

// New creates a Session in StateClosed. Call Run to drive it.
func New(cfg Config, corr correlator.Correlator, brk broker.Broker, hk hook.Hook, log corelog.Logger, mx *Metrics) *Session {
	if log == nil {
		log = corelog.Nop{}
	}
	if hk == nil {
		hk = hook.Noop{}
	}
	return &Session{
		cfg:      cfg,
		corr:     corr,
		brk:      brk,
		hk:       hk,
		log:      log,
		mx:       mx,
		state:    newStateBox(StateClosed),
		highPri:  make(chan queuedFrame, 16),
		stopping: make(chan struct{}),
	}
}

// State returns the current session state.
func (s *Session) State() State { return s.state.get() }

func (s *Session) setState(st State) {
	s.state.set(st)
	s.mx.recordTransition(st)
	s.log.Info("state transition", "state", st.String(), "client_id", s.cfg.ClientID)
}

// Run drives the session through CONNECTING → ... → RECONNECTING
// cycles until ctx is canceled or Stop is called (spec.md §4.4). It
// only returns once the session has settled in CLOSED.
func (s *Session) Run(ctx context.Context) error {
	defer s.setState(StateClosed)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopping:
			return nil
		default:
		}

		if err := s.connectAndBind(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			var rejected *BindRejected
			if errors.As(err, &rejected) {
				s.log.Error("bind rejected", "err", err, "client_id", s.cfg.ClientID)
				return err
			}
			s.setState(StateReconnecting)
			s.mx.recordReconnect()
			notify := func(e error, next time.Duration) {
				s.log.Warn("reconnect backoff", "err", e, "next", next, "client_id", s.cfg.ClientID)
			}
			rerr := reconnectLoop(ctx, s.cfg.ReconnectInitial, s.cfg.ReconnectMax, notify, func() error {
				err := s.connectAndBind(ctx)
				var rejected *BindRejected
				if errors.As(err, &rejected) {
					return backoff.Permanent(err)
				}
				return err
			})
			if rerr != nil {
				return rerr
			}
		}

		err := s.serve(ctx)
		s.corr.Drop(&SessionClosed{Reason: "session ended"})
		s.closeConn()
		if err == nil {
			return nil // graceful stop
		}
		select {
		case <-s.stopping:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.setState(StateReconnecting)
	}
}

// ConnectOnce dials and binds a single time, without entering Run's
// reconnect loop, surfacing any failure synchronously (spec.md §4.5's
// Connect semantics). Callers that want Run's automatic reconnection
// should call Run directly instead.
func (s *Session) ConnectOnce(ctx context.Context) error {
	return s.connectAndBind(ctx)
}

// connectAndBind dials the SMSC and performs one bind attempt,
// transitioning CLOSED/RECONNECTING → CONNECTING → OPEN → BINDING →
// BOUND_* (spec.md §4.4).
func (s *Session) connectAndBind(ctx context.Context) error {
	s.setState(StateConnecting)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	dialer := net.Dialer{Timeout: s.cfg.BindTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &TransportError{Cause: err}
	}

	s.mu.Lock()
	s.conn = conn
	s.dec = pdu.NewDecoder(s.cfg.MaxPduSize)
	s.mu.Unlock()
	s.setState(StateOpen)

	s.setState(StateBinding)
	if err := s.bind(ctx); err != nil {
		s.closeConn()
		s.setState(StateClosed)
		return err
	}
	switch s.cfg.BindMode {
	case BindRX:
		s.setState(StateBoundRX)
	case BindTRX:
		s.setState(StateBoundTRX)
	default:
		s.setState(StateBoundTX)
	}
	return nil
}

// bind writes the bind request, reserving sequence number 1 for it
// (spec.md §3/§9's preserved open-question behavior), and awaits
// bind_resp within the bind timeout.
func (s *Session) bind(ctx context.Context) error {
	req := &pdu.Bind{
		SystemID:         s.cfg.SystemID,
		Password:         s.cfg.Password,
		SystemType:       s.cfg.SystemType,
		InterfaceVersion: s.cfg.InterfaceVersion,
		AddrTON:          s.cfg.AddrTON,
		AddrNPI:          s.cfg.AddrNPI,
		AddressRange:     s.cfg.AddressRange,
	}
	id := pdu.BindTransmitterID
	switch s.cfg.BindMode {
	case BindRX:
		id = pdu.BindReceiverID
	case BindTRX:
		id = pdu.BindTransceiverID
	}
	body := bindBody(id, req)

	const bindSequence = 1
	frame, err := pdu.Encode(id, pdu.StatusOK, bindSequence, body)
	if err != nil {
		return err
	}
	s.hk.Sending(ctx, body, frame, s.cfg.ClientID)
	if err := s.writeFrame(frame); err != nil {
		return &TransportError{Cause: err}
	}
	s.mx.recordFrameSent()

	deadline := time.Now().Add(s.cfg.BindTimeout)
	_ = s.conn.SetReadDeadline(deadline)
	defer s.conn.SetReadDeadline(time.Time{})

	pkt, err := s.readPacket()
	if err != nil {
		if isTimeout(err) {
			return &BindTimeout{}
		}
		return &TransportError{Cause: err}
	}
	s.hk.Received(ctx, pkt.Body, nil, s.cfg.ClientID)
	if pkt.Header.Status != pdu.StatusOK {
		return &BindRejected{Status: uint32(pkt.Header.Status)}
	}
	return nil
}

func bindBody(id pdu.CommandID, req *pdu.Bind) pdu.PDU {
	body := pdu.New(id).(*pdu.Bind)
	*body = *req
	return body
}

// serve runs the reader, writer, and timekeeper concurrently until
// one of them ends the session. It returns nil for a graceful stop,
// or the error that ended the session otherwise.
func (s *Session) serve(ctx context.Context) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); errCh <- s.readLoop(sctx) }()
	go func() { defer wg.Done(); errCh <- s.writeLoop(sctx) }()
	go func() { defer wg.Done(); errCh <- s.timekeeperLoop(sctx) }()

	var result error
	select {
	case result = <-errCh:
		cancel()
	case <-s.stopping:
		s.gracefulUnbind()
		cancel()
	}
	wg.Wait()
	return result
}

// readLoop implements the reader's dispatch table (spec.md §4.4).
func (s *Session) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		pkt, err := s.readPacket()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var malformed *pdu.MalformedPdu
			if errors.As(err, &malformed) {
				s.log.Warn("malformed frame", "err", err, "client_id", s.cfg.ClientID)
				s.enqueueHighPriority(queuedFrame{id: pdu.GenericNackID, status: pdu.StatusInvCmdLen, body: &pdu.GenericNack{}})
				continue
			}
			var unknown *pdu.UnknownCommand
			if errors.As(err, &unknown) {
				s.log.Warn("unknown command", "err", err, "client_id", s.cfg.ClientID)
				s.enqueueHighPriority(queuedFrame{sequence: pkt.Header.Sequence, id: pdu.GenericNackID, status: pdu.StatusInvCmdID, body: &pdu.GenericNack{}})
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &TransportError{Cause: err}
		}
		s.mx.recordFrameReceived()
		s.hk.Received(ctx, pkt.Body, nil, s.cfg.ClientID)

		switch {
		case pdu.IsResponse(pkt.Header.ID):
			s.handleResponse(ctx, pkt)
		case pkt.Header.ID == pdu.EnquireLinkID:
			s.enqueueHighPriority(queuedFrame{sequence: pkt.Header.Sequence, id: pdu.EnquireLinkRespID, body: &pdu.EnquireLinkResp{}})
		case pkt.Header.ID == pdu.DeliverSmID:
			s.handleDeliverSm(ctx, pkt)
		case pkt.Header.ID == pdu.UnbindID:
			s.enqueueHighPriority(queuedFrame{sequence: pkt.Header.Sequence, id: pdu.UnbindRespID, body: &pdu.UnbindResp{}})
			return nil
		default:
			s.enqueueHighPriority(queuedFrame{sequence: pkt.Header.Sequence, id: pdu.GenericNackID, status: pdu.StatusInvCmdID, body: &pdu.GenericNack{}})
		}
	}
}

func (s *Session) handleResponse(ctx context.Context, pkt pdu.Packet) {
	pending := s.corr.Get(pkt.Header.Sequence)
	if pending == nil {
		s.mx.recordOrphan()
		s.log.Warn("orphan response", "sequence", pkt.Header.Sequence, "client_id", s.cfg.ClientID)
		return
	}
	if pkt.Header.Status == pdu.StatusThrottled || pkt.Header.Status == pdu.StatusMsgQFul {
		s.applyThrottle()
		s.mx.recordThrottled()
	} else if pkt.Header.Status == pdu.StatusOK {
		s.resetThrottle()
	}
	pending.Response = pkt.Body
	if pkt.Header.Status == pdu.StatusThrottled || pkt.Header.Status == pdu.StatusMsgQFul {
		pending.Err = &Throttled{Status: uint32(pkt.Header.Status)}
	} else if pkt.Header.Status != pdu.StatusOK {
		pending.Err = &pdu.DecodeError{ID: pkt.Header.ID, Reason: pkt.Header.Status.String()}
	}
	defer pending.Resolve()

	if resp, ok := pkt.Body.(*pdu.SubmitSmResp); ok && pkt.Header.Status == pdu.StatusOK {
		if err := s.corr.PutDelivery(ctx, correlator.DeliveryRecord{
			SmscMessageID: resp.MessageID,
			LogID:         pending.LogID,
			ExtraData:     pending.ExtraData,
			SubmittedAt:   time.Now(),
		}); err != nil {
			s.hk.SendError(ctx, "put_delivery", err, s.cfg.ClientID)
		}
	}

}

func (s *Session) handleDeliverSm(ctx context.Context, pkt pdu.Packet) {
	deliver, _ := pkt.Body.(*pdu.DeliverSm)
	s.enqueueHighPriority(queuedFrame{sequence: pkt.Header.Sequence, id: pdu.DeliverSmRespID, body: &pdu.DeliverSmResp{}})
	if deliver == nil || !deliver.IsReceipt() {
		return
	}
	text := string(deliver.ShortMessage)
	smscID := parseReceiptID(text)
	if smscID == "" {
		return
	}
	rec, ok, err := s.corr.GetDelivery(ctx, smscID)
	if err != nil {
		s.hk.SendError(ctx, "get_delivery", err, s.cfg.ClientID)
		return
	}
	if !ok {
		s.log.Debug("receipt for unknown message id", "id", smscID, "client_id", s.cfg.ClientID)
		return
	}
	s.log.Info("delivery receipt", "id", smscID, "log_id", rec.LogID, "client_id", s.cfg.ClientID)
	s.hk.Received(ctx, DeliveryReceipt{
		SmscMessageID: smscID,
		LogID:         rec.LogID,
		ExtraData:     rec.ExtraData,
		Text:          text,
	}, nil, s.cfg.ClientID)
}

// DeliveryReceipt is the value hook.Hook.Received observes for a
// deliver_sm that correlates to an earlier submit_sm via
// correlator.GetDelivery (spec.md §4.4's "dispatch to hook with the
// originating log_id/extra_data if found"). It is dispatched in
// addition to the raw *pdu.DeliverSm the reader already reported, so
// a hook that only cares about correlated receipts can type-switch on
// it instead of re-deriving the match itself.
type DeliveryReceipt struct {
	SmscMessageID string
	LogID         string
	ExtraData     any
	Text          string
}

// parseReceiptID extracts the id: field from a delivery receipt body
// without importing gsm7 (a purely textual scan keeps session free of
// the text-encoding package it doesn't otherwise need).
func parseReceiptID(text string) string {
	const key = "id:"
	i := indexOf(text, key)
	if i < 0 {
		return ""
	}
	i += len(key)
	j := i
	for j < len(text) && text[j] != ' ' {
		j++
	}
	return text[i:j]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// writeLoop is the writer: high-priority frames first, then broker
// work, acquiring a window slot before any request PDU (spec.md §4.4).
func (s *Session) writeLoop(ctx context.Context) error {
	var brokerCh <-chan broker.Outbound
	for {
		select {
		case <-ctx.Done():
			return nil
		case qf := <-s.highPri:
			if err := s.sendQueued(ctx, qf); err != nil {
				return err
			}
			continue
		default:
		}

		if d := s.currentThrottle(); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		if brokerCh == nil {
			brokerCh = s.brokerChan(ctx)
		}
		select {
		case <-ctx.Done():
			return nil
		case qf := <-s.highPri:
			if err := s.sendQueued(ctx, qf); err != nil {
				return err
			}
		case msg, ok := <-brokerCh:
			brokerCh = nil
			if !ok {
				continue
			}
			if err := s.sendOutbound(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// brokerChan adapts Broker.Dequeue (a blocking call) into a channel
// usable in writeLoop's select, so broker backpressure never starves
// high-priority frames.
func (s *Session) brokerChan(ctx context.Context) <-chan broker.Outbound {
	ch := make(chan broker.Outbound, 1)
	go func() {
		msg, err := s.brk.Dequeue(ctx)
		if err == nil {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}

func (s *Session) sendQueued(ctx context.Context, qf queuedFrame) error {
	frame, err := pdu.Encode(qf.id, qf.status, qf.sequence, qf.body)
	if err != nil {
		s.hk.SendError(ctx, "encode", err, s.cfg.ClientID)
		return nil
	}
	s.hk.Sending(ctx, qf.body, frame, s.cfg.ClientID)
	if err := s.writeFrame(frame); err != nil {
		return &TransportError{Cause: err}
	}
	s.mx.recordFrameSent()
	return nil
}

// SubmitResult is returned by Send once a response arrives or the
// request fails.
type SubmitResult struct {
	Response pdu.PDU
	Err      error
}

// Send enqueues body as a high-priority, windowed request and returns
// a channel that receives the eventual response or error (spec.md
// §4.3/§4.4: acquire window slot, register pending, write, wait).
func (s *Session) Send(ctx context.Context, body pdu.PDU, logID string, extraData any) (<-chan SubmitResult, error) {
	seq := s.corr.NextSequence()
	pending := &correlator.PendingRequest{
		SequenceNumber:    seq,
		CommandIDExpected: uint32(pdu.RespID(body.CommandID())),
		LogID:             logID,
		ExtraData:         extraData,
		Deadline:          time.Now().Add(s.cfg.RequestTimeout),
	}
	if err := s.corr.Put(pending); err != nil {
		return nil, err
	}

	select {
	case s.highPri <- queuedFrame{sequence: seq, id: body.CommandID(), body: body}:
	case <-ctx.Done():
		s.corr.Get(seq)
		return nil, ctx.Err()
	}
	s.mx.setWindowInFlight(s.corr.Stats().InFlight)

	out := make(chan SubmitResult, 1)
	go func() {
		select {
		case <-pending.Waker():
			err := pending.Err
			if errors.Is(err, correlator.ErrRequestExpired) {
				err = &RequestTimeout{CommandID: pending.CommandIDExpected, Sequence: pending.SequenceNumber}
			}
			out <- SubmitResult{Response: pending.Response, Err: err}
		case <-ctx.Done():
			out <- SubmitResult{Err: ctx.Err()}
		}
	}()
	return out, nil
}

func (s *Session) sendOutbound(ctx context.Context, msg broker.Outbound) error {
	submit := &pdu.SubmitSm{}
	submit.SourceAddr = pdu.Address{Number: msg.SourceAddr}
	submit.DestAddr = pdu.Address{Number: msg.DestAddr}
	submit.ServiceType = msg.ServiceType
	submit.ShortMessage = []byte(msg.Text)

	seq := s.corr.NextSequence()
	pending := &correlator.PendingRequest{
		SequenceNumber:    seq,
		CommandIDExpected: uint32(pdu.SubmitSmRespID),
		LogID:             msg.LogID,
		ExtraData:         msg.ExtraData,
		Deadline:          time.Now().Add(s.cfg.RequestTimeout),
	}
	if err := s.corr.Put(pending); err != nil {
		s.hk.SendError(ctx, "window full", err, s.cfg.ClientID)
		return nil
	}
	return s.sendQueued(ctx, queuedFrame{sequence: seq, id: pdu.SubmitSmID, body: submit})
}

// timekeeperLoop expires overdue pending requests at ≤1 s granularity
// (spec.md §4.4).
func (s *Session) timekeeperLoop(ctx context.Context) error {
	interval := s.cfg.EnquireLinkInterval
	if interval <= 0 {
		interval = 55 * time.Second
	}
	expireTicker := time.NewTicker(time.Second)
	keepaliveTicker := time.NewTicker(interval)
	defer expireTicker.Stop()
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-expireTicker.C:
			for _, p := range s.corr.Expire(now) {
				s.mx.recordTimeout()
				s.log.Debug("request timeout", "sequence", p.SequenceNumber, "client_id", s.cfg.ClientID)
			}
		case <-keepaliveTicker.C:
			if time.Since(s.lastWrite.get()) >= interval {
				seq := s.corr.NextSequence()
				pending := &correlator.PendingRequest{
					SequenceNumber:    seq,
					CommandIDExpected: uint32(pdu.EnquireLinkRespID),
					Deadline:          time.Now().Add(s.cfg.RequestTimeout),
				}
				if err := s.corr.Put(pending); err == nil {
					s.enqueueHighPriority(queuedFrame{sequence: seq, id: pdu.EnquireLinkID, body: &pdu.EnquireLink{}})
				}
			}
		}
	}
}

func (s *Session) applyThrottle() {
	s.throttleMu.Lock()
	defer s.throttleMu.Unlock()
	if s.throttleDelay == 0 {
		s.throttleDelay = s.cfg.ThrottleInitial
	} else {
		s.throttleDelay *= 2
		if s.throttleDelay > s.cfg.ThrottleMax {
			s.throttleDelay = s.cfg.ThrottleMax
		}
	}
}

func (s *Session) resetThrottle() {
	s.throttleMu.Lock()
	s.throttleDelay = 0
	s.throttleMu.Unlock()
}

func (s *Session) currentThrottle() time.Duration {
	s.throttleMu.Lock()
	defer s.throttleMu.Unlock()
	return s.throttleDelay
}

func (s *Session) enqueueHighPriority(qf queuedFrame) {
	select {
	case s.highPri <- qf:
	default:
		s.log.Warn("high-priority queue full, dropping frame", "command", qf.id.String(), "client_id", s.cfg.ClientID)
	}
}

// gracefulUnbind sends unbind and awaits unbind_resp for up to 5 s
// (spec.md §4.5/§5).
func (s *Session) gracefulUnbind() {
	if !s.state.get().IsBound() {
		return
	}
	s.setState(StateUnbinding)
	seq := s.corr.NextSequence()
	frame, err := pdu.Encode(pdu.UnbindID, pdu.StatusOK, seq, &pdu.Unbind{})
	if err != nil {
		return
	}
	if err := s.writeFrame(frame); err != nil {
		return
	}
	deadline := time.Now().Add(5 * time.Second)
	_ = s.conn.SetReadDeadline(deadline)
	_, _ = s.readPacket()
}

func (s *Session) writeFrame(frame []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("session: not connected")
	}
	s.lastWrite.set(time.Now())
	_, err := conn.Write(frame)
	return err
}

func (s *Session) readPacket() (pdu.Packet, error) {
	s.mu.Lock()
	conn := s.conn
	dec := s.dec
	s.mu.Unlock()
	if conn == nil {
		return pdu.Packet{}, errors.New("session: not connected")
	}
	// Read command_length first: it's the only field whose size (4
	// bytes) is known before the header is complete. A genuinely short
	// frame (spec.md §8 scenario 4) is caught here instead of blocking
	// in ReadFull on header bytes the peer never sends.
	header := make([]byte, pdu.HeaderLen)
	if _, err := io.ReadFull(conn, header[:4]); err != nil {
		return pdu.Packet{}, err
	}
	if declared := binary.BigEndian.Uint32(header[:4]); declared < pdu.HeaderLen {
		return pdu.Packet{}, &pdu.MalformedPdu{Reason: "command_length smaller than header", Offset: 0}
	}
	if _, err := io.ReadFull(conn, header[4:]); err != nil {
		return pdu.Packet{}, err
	}
	h, err := dec.DecodeHeader(header)
	if err != nil {
		return pdu.Packet{}, err
	}
	frame := make([]byte, h.Length)
	copy(frame, header)
	if h.Length > pdu.HeaderLen {
		if _, err := io.ReadFull(conn, frame[pdu.HeaderLen:]); err != nil {
			return pdu.Packet{}, err
		}
	}
	pkt, _, err := dec.Decode(frame)
	return pkt, err
}

func (s *Session) closeConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Stop cooperatively shuts the session down: flushes a best-effort
// unbind, closes the socket, and fails all pending requests with
// SessionClosed (spec.md §4.5).
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopping)
	})
	s.corr.Drop(&SessionClosed{Reason: "stop() called"})
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
