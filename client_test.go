package smpplib

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksabaldun/smpplib/gsm7"
	"github.com/niksabaldun/smpplib/pdu"
)

type fakeSMSC struct {
	ln   net.Listener
	conn net.Conn
	dec  *pdu.Decoder
}

func startFakeSMSC(t *testing.T) (*fakeSMSC, int) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return &fakeSMSC{ln: ln, dec: pdu.NewDecoder(0)}, ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMSC) accept(t *testing.T) {
	conn, err := s.ln.Accept()
	require.NoError(t, err)
	s.conn = conn
	t.Cleanup(func() { conn.Close() })
}

func (s *fakeSMSC) read(t *testing.T) pdu.Packet {
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

func (s *fakeSMSC) write(t *testing.T, id pdu.CommandID, status pdu.Status, seq uint32, body pdu.PDU) {
	frame, err := pdu.Encode(id, status, seq, body)
	require.NoError(t, err)
	_, err = s.conn.Write(frame)
	require.NoError(t, err)
}

func testClientConfig(host string, port int) Config {
	cfg := DefaultConfig()
	cfg.SmscHost = host
	cfg.SmscPort = port
	cfg.SystemID = "esme1"
	cfg.Password = "pwd"
	cfg.BindMode = BindTRX
	cfg.EnquireLinkInterval = time.Hour
	cfg.BindTimeout = time.Second
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func TestClientConnectBindsSynchronously(t *testing.T) {
	fake, port := startFakeSMSC(t)
	cfg := testClientConfig("127.0.0.1", port)
	client := NewClient(cfg)

	connectErr := make(chan error, 1)
	go func() { connectErr <- client.Connect(context.Background()) }()

	fake.accept(t)
	bindPkt := fake.read(t)
	assert.Equal(t, pdu.BindTransceiverID, bindPkt.Header.ID)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{SystemID: "smsc"})

	select {
	case err := <-connectErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect never returned")
	}
}

func TestClientConnectSurfacesBindRejection(t *testing.T) {
	fake, port := startFakeSMSC(t)
	cfg := testClientConfig("127.0.0.1", port)
	client := NewClient(cfg)

	connectErr := make(chan error, 1)
	go func() { connectErr <- client.Connect(context.Background()) }()

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusInvPaswd, bindPkt.Header.Sequence, &pdu.BindResp{})

	select {
	case err := <-connectErr:
		var rejected *BindRejected
		assert.ErrorAs(t, err, &rejected)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect never returned")
	}
}

func TestClientSubmitSMViaStart(t *testing.T) {
	fake, port := startFakeSMSC(t)
	cfg := testClientConfig("127.0.0.1", port)
	client := NewClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	fake.accept(t)
	bindPkt := fake.read(t)
	fake.write(t, pdu.BindTransceiverRespID, pdu.StatusOK, bindPkt.Header.Sequence, &pdu.BindResp{})

	require.Eventually(t, func() bool {
		return client.State().IsBound()
	}, 2*time.Second, 5*time.Millisecond)

	submitErr := make(chan error, 1)
	var messageID string
	go func() {
		id, err := client.SubmitSM(ctx, "1000", "2000", "hello world", gsm7.EncodingGSM7, "log-1", nil)
		messageID = id
		submitErr <- err
	}()

	submitPkt := fake.read(t)
	assert.Equal(t, pdu.SubmitSmID, submitPkt.Header.ID)
	fake.write(t, pdu.SubmitSmRespID, pdu.StatusOK, submitPkt.Header.Sequence, &pdu.SubmitSmResp{MessageID: "m-42"})

	select {
	case err := <-submitErr:
		require.NoError(t, err)
		assert.Equal(t, "m-42", messageID)
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitSM never returned")
	}

	client.Stop()
}

func TestClientSubmitSMBeforeConnectFails(t *testing.T) {
	client := NewClient(testClientConfig("127.0.0.1", 0))
	_, err := client.SubmitSM(context.Background(), "1", "2", "hi", gsm7.EncodingGSM7, "", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}
