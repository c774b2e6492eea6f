package session

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksabaldun/smpplib/broker"
	"github.com/niksabaldun/smpplib/correlator"
	"github.com/niksabaldun/smpplib/hook"
	"github.com/niksabaldun/smpplib/pdu"
)

// smsc is a minimal fake SMSC driven explicitly by each test, so
// ordering between the session under test and the peer is
// deterministic rather than timing-dependent.
type smsc struct {
	ln   net.Listener
	conn net.Conn
	dec  *pdu.Decoder
}

func newSMSC(t *testing.T) (*smsc, int) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return &smsc{ln: ln, dec: pdu.NewDecoder(0)}, ln.Addr().(*net.TCPAddr).Port
}

// recordingHook captures every value Received observes, so tests can
// assert on the DeliveryReceipt a correlated deliver_sm produces.
type recordingHook struct {
	hook.Noop
	mu       sync.Mutex
	received []any
}

func (h *recordingHook) Received(_ context.Context, pduValue any, _ []byte, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, pduValue)
}

func (h *recordingHook) deliveryReceipts() []DeliveryReceipt {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []DeliveryReceipt
	for _, v := range h.received {
		if dr, ok := v.(DeliveryReceipt); ok {
			out = append(out, dr)
		}
	}
	return out
}

func (s *smsc) accept(t *testing.T) {
	conn, err := s.ln.Accept()
	require.NoError(t, err)
	s.conn = conn
	t.Cleanup(func() { conn.Close() })
}

func (s *smsc) read(t *testing.T) pdu.Packet {
	header := make([]byte, pdu.HeaderLen)
	_, err := io.ReadFull(s.conn, header)
	require.NoError(t, err)
	h, err := s.dec.DecodeHeader(header)
	require.NoError(t, err)
	frame := make([]byte, h.Length)
	copy(frame, header)
	if h.Length > pdu.HeaderLen {
		_, err := io.ReadFull(s.conn, frame[pdu.HeaderLen:])
		require.NoError(t, err)
	}
	pkt, _, err := s.dec.Decode(frame)
	require.NoError(t, err)
	return pkt
}

func (s *smsc) write(t *testing.T, id pdu.CommandID, status pdu.Status, seq uint32, body pdu.PDU) {
	frame, err := pdu.Encode(id, status, seq, body)
	require.NoError(t, err)
	_, err = s.conn.Write(frame)
	require.NoError(t, err)
}

func testConfig(host string, port int) Config {
	return Config{
		Host:                host,
		Port:                port,
		SystemID:            "esme1",
		Password:            "pwd",
		BindMode:            BindTRX,
		EnquireLinkInterval: time.Hour,
		RequestTimeout:      2 * time.Second,
		BindTimeout:         time.Second,
		ReconnectInitial:    10 * time.Millisecond,
		ReconnectMax:        50 * time.Millisecond,
		ThrottleInitial:     30 * time.Millisecond,
		ThrottleMax:         200 * time.Millisecond,
		MaxInFlight:         10,
		MaxPduSize:          65536,
		ClientID:            "test-client",
	}
}

// TestHappyPathBindSubmitDeliver covers bind_transceiver -> bind_resp,
// submit_sm -> submit_sm_resp, and a deliver_sm delivery receipt
// correlated back to the original submit.
func TestHappyPathBindSubmitDeliver(t *testing.T) {
	fake, port := newSMSC(t)
	corr := correlator.NewMemory(10)
	hk := &recordingHook{}
	sess := New(testConfig("127.0.0.1", port), corr, broker.NewMemory(4), hk, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	fake.accept(t)
	bindPkt := fake.read(t)
	assert.Equal(t, pdu.BindTransceiverID, bindPkt.Header.ID)
	bind := bindPkt.Body.(*pdu.Bind)
	assert.Equal(t, "esme1", bind.SystemID)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{SystemID: "smsc"})

	waitForState(t, sess, StateBoundTRX)

	submit := &pdu.SubmitSm{}
	submit.SourceAddr = pdu.Address{Number: "1000"}
	submit.DestAddr = pdu.Address{Number: "2000"}
	submit.ShortMessage = []byte("hello")

	resultCh, err := sess.Send(ctx, submit, "log-1", "extra-1")
	require.NoError(t, err)

	submitPkt := fake.read(t)
	assert.Equal(t, pdu.SubmitSmID, submitPkt.Header.ID)
	fake.write(t, pdu.SubmitSmRespID, pdu.StatusOK, submitPkt.Header.Sequence, &pdu.SubmitSmResp{MessageID: "abc123"})

	select {
	case result := <-resultCh:
		require.NoError(t, result.Err)
		resp := result.Response.(*pdu.SubmitSmResp)
		assert.Equal(t, "abc123", resp.MessageID)
	case <-time.After(time.Second):
		t.Fatal("submit_sm_resp never delivered")
	}

	deliver := &pdu.DeliverSm{}
	deliver.EsmClass = 0x04 // SMSC delivery receipt
	deliver.ShortMessage = []byte("id:abc123 sub:001 dlvrd:001 submit date:2607301200 done date:2607301201 stat:DELIVRD err:000 text:done")
	fake.write(t, pdu.DeliverSmID, pdu.StatusOK, 999, deliver)

	deliverRespPkt := fake.read(t)
	assert.Equal(t, pdu.DeliverSmRespID, deliverRespPkt.Header.ID)
	assert.Equal(t, uint32(999), deliverRespPkt.Header.Sequence)

	require.Eventually(t, func() bool {
		_, ok, _ := corr.GetDelivery(ctx, "abc123")
		return !ok // already consumed by handleDeliverSm
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(hk.deliveryReceipts()) == 1
	}, time.Second, 10*time.Millisecond, "hook must observe the correlated receipt")
	receipt := hk.deliveryReceipts()[0]
	assert.Equal(t, "abc123", receipt.SmscMessageID)
	assert.Equal(t, "log-1", receipt.LogID)
	assert.Equal(t, "extra-1", receipt.ExtraData)

	sess.Stop()
	select {
	case <-runErr:
	case <-time.After(6 * time.Second):
		t.Fatal("Run never returned after Stop")
	}
}

// TestLongMessageViaMessagePayload submits a message over 254 octets
// and checks the codec moves it into message_payload transparently.
func TestLongMessageViaMessagePayload(t *testing.T) {
	fake, port := newSMSC(t)
	corr := correlator.NewMemory(10)
	sess := New(testConfig("127.0.0.1", port), corr, broker.NewMemory(4), hook.Noop{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{SystemID: "smsc"})
	waitForState(t, sess, StateBoundTRX)

	long := make([]byte, 300)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	submit := &pdu.SubmitSm{}
	submit.SourceAddr = pdu.Address{Number: "1000"}
	submit.DestAddr = pdu.Address{Number: "2000"}
	submit.ShortMessage = long

	_, err := sess.Send(ctx, submit, "", nil)
	require.NoError(t, err)

	pkt := fake.read(t)
	decoded := pkt.Body.(*pdu.SubmitSm)
	assert.Equal(t, long, decoded.ShortMessage)

	fake.write(t, pdu.SubmitSmRespID, pdu.StatusOK, pkt.Header.Sequence, &pdu.SubmitSmResp{MessageID: "m1"})
	sess.Stop()
}

// TestThrottleBacksOffAndResets drives two throttled responses then an
// OK response, checking the delay doubles and resets (spec.md §4.4).
func TestThrottleBacksOffAndResets(t *testing.T) {
	fake, port := newSMSC(t)
	cfg := testConfig("127.0.0.1", port)
	corr := correlator.NewMemory(10)
	sess := New(cfg, corr, broker.NewMemory(4), hook.Noop{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{})
	waitForState(t, sess, StateBoundTRX)

	send := func() <-chan SubmitResult {
		submit := &pdu.SubmitSm{}
		submit.SourceAddr = pdu.Address{Number: "1"}
		submit.DestAddr = pdu.Address{Number: "2"}
		submit.ShortMessage = []byte("x")
		ch, err := sess.Send(ctx, submit, "", nil)
		require.NoError(t, err)
		return ch
	}

	r1 := send()
	p1 := fake.read(t)
	fake.write(t, pdu.SubmitSmRespID, pdu.StatusThrottled, p1.Header.Sequence, &pdu.SubmitSmResp{})
	<-r1

	assert.Eventually(t, func() bool {
		return sess.currentThrottle() == cfg.ThrottleInitial
	}, time.Second, 5*time.Millisecond)

	r2 := send()
	p2 := fake.read(t)
	fake.write(t, pdu.SubmitSmRespID, pdu.StatusThrottled, p2.Header.Sequence, &pdu.SubmitSmResp{})
	<-r2

	assert.Eventually(t, func() bool {
		return sess.currentThrottle() == cfg.ThrottleInitial*2
	}, time.Second, 5*time.Millisecond)

	r3 := send()
	p3 := fake.read(t)
	fake.write(t, pdu.SubmitSmRespID, pdu.StatusOK, p3.Header.Sequence, &pdu.SubmitSmResp{MessageID: "ok"})
	<-r3

	assert.Eventually(t, func() bool {
		return sess.currentThrottle() == 0
	}, time.Second, 5*time.Millisecond)

	sess.Stop()
}

// TestMalformedFrameTriggersGenericNack checks the reader survives a
// garbage frame by replying generic_nack rather than tearing down the
// session (spec.md §4.4/§7).
func TestMalformedFrameTriggersGenericNack(t *testing.T) {
	fake, port := newSMSC(t)
	corr := correlator.NewMemory(10)
	sess := New(testConfig("127.0.0.1", port), corr, broker.NewMemory(4), hook.Noop{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{})
	waitForState(t, sess, StateBoundTRX)

	// A genuinely short frame (spec.md §8 scenario 4): only 12 bytes
	// ever arrive, fewer than the 16-byte fixed header, and the
	// declared command_length says as much. The reader must detect
	// this from the 4-byte length prefix alone, without blocking on
	// header bytes the peer never sends.
	garbage := make([]byte, 12)
	binary.BigEndian.PutUint32(garbage[0:4], 4)
	_, err := fake.conn.Write(garbage)
	require.NoError(t, err)

	nackPkt := fake.read(t)
	assert.Equal(t, pdu.GenericNackID, nackPkt.Header.ID)
	assert.Equal(t, pdu.StatusInvCmdLen, nackPkt.Header.Status)

	assert.Equal(t, StateBoundTRX, sess.State(), "session must survive a malformed frame")
	sess.Stop()
}

// TestGracefulStopUnbindsWithinDeadline checks Stop sends unbind and
// that Run returns once unbind_resp is answered, inside the 5s deadline.
func TestGracefulStopUnbindsWithinDeadline(t *testing.T) {
	fake, port := newSMSC(t)
	corr := correlator.NewMemory(10)
	sess := New(testConfig("127.0.0.1", port), corr, broker.NewMemory(4), hook.Noop{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{})
	waitForState(t, sess, StateBoundTRX)

	go sess.Stop()

	unbindPkt := fake.read(t)
	assert.Equal(t, pdu.UnbindID, unbindPkt.Header.ID)
	fake.write(t, pdu.UnbindRespID, pdu.StatusOK, unbindPkt.Header.Sequence, &pdu.UnbindResp{})

	select {
	case <-runErr:
	case <-time.After(5 * time.Second):
		t.Fatal("Run never returned after graceful stop")
	}
}

func waitForState(t *testing.T, sess *Session, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return sess.State() == want
	}, 2*time.Second, 5*time.Millisecond)
}
