package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		id   CommandID
		body PDU
	}{
		{"bind_transceiver", BindTransceiverID, &Bind{
			bindKind: kindTransceiver, InterfaceVersion: InterfaceVersion,
			SystemID: "esme1", Password: "secret", SystemType: "VMS",
			AddrTON: TONInternational, AddrNPI: NPIISDN, AddressRange: "",
		}},
		{"submit_sm", SubmitSmID, &SubmitSm{shortMessageFields{
			ServiceType: "", SourceAddr: Address{Number: "1000", TON: TONInternational},
			DestAddr: Address{Number: "2000"}, ShortMessage: []byte("hello"),
		}}},
		{"submit_sm_resp", SubmitSmRespID, &SubmitSmResp{MessageID: "abc123"}},
		{"deliver_sm", DeliverSmID, &DeliverSm{shortMessageFields{
			SourceAddr: Address{Number: "2000"}, DestAddr: Address{Number: "1000"},
			ShortMessage: []byte("reply"),
		}}},
		{"enquire_link", EnquireLinkID, &EnquireLink{}},
		{"unbind", UnbindID, &Unbind{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Encode(tc.id, StatusOK, 42, tc.body)
			require.NoError(t, err)

			dec := NewDecoder(0)
			h, err := dec.DecodeHeader(frame)
			require.NoError(t, err)
			assert.Equal(t, uint32(len(frame)), h.Length)

			pkt, consumed, err := dec.Decode(frame)
			require.NoError(t, err)
			assert.Equal(t, len(frame), consumed)
			assert.Equal(t, tc.id, pkt.Header.ID)
			assert.Equal(t, uint32(42), pkt.Header.Sequence)
			assert.Equal(t, tc.body, pkt.Body)
		})
	}
}

// TestFrameIndependence checks spec.md §8's property: decoding one
// frame never consumes bytes belonging to the next frame in a stream.
func TestFrameIndependence(t *testing.T) {
	f1, err := Encode(EnquireLinkID, StatusOK, 1, &EnquireLink{})
	require.NoError(t, err)
	f2, err := Encode(SubmitSmID, StatusOK, 2, &SubmitSm{shortMessageFields{
		SourceAddr: Address{Number: "1"}, DestAddr: Address{Number: "2"}, ShortMessage: []byte("x"),
	}})
	require.NoError(t, err)

	stream := append(append([]byte{}, f1...), f2...)
	dec := NewDecoder(0)

	pkt1, consumed1, err := dec.Decode(stream)
	require.NoError(t, err)
	assert.Equal(t, len(f1), consumed1)
	assert.Equal(t, EnquireLinkID, pkt1.Header.ID)

	pkt2, consumed2, err := dec.Decode(stream[len(f1):])
	require.NoError(t, err)
	assert.Equal(t, len(f2), consumed2)
	assert.Equal(t, SubmitSmID, pkt2.Header.ID)
}

// TestLengthSelfConsistency checks spec.md §8: command_length always
// equals the actual serialized frame size.
func TestLengthSelfConsistency(t *testing.T) {
	frame, err := Encode(SubmitSmID, StatusOK, 7, &SubmitSm{shortMessageFields{
		SourceAddr: Address{Number: "1"}, DestAddr: Address{Number: "2"},
		ShortMessage: []byte("a longer message body here"),
	}})
	require.NoError(t, err)

	h := decodeHeader(frame)
	assert.Equal(t, uint32(len(frame)), h.Length)
}

func TestDecodeHeaderTooShort(t *testing.T) {
	dec := NewDecoder(0)
	_, err := dec.DecodeHeader([]byte{0, 1, 2})
	var malformed *MalformedPdu
	assert.ErrorAs(t, err, &malformed)
}

func TestDecodeFrameTooLarge(t *testing.T) {
	dec := NewDecoder(16)
	frame, err := Encode(EnquireLinkID, StatusOK, 1, &EnquireLink{})
	require.NoError(t, err)
	// Lie about the length to exceed the cap.
	frame[3] = 255
	_, _, err = dec.Decode(frame)
	var tooLarge *FrameTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}

func TestDecodeUnknownCommand(t *testing.T) {
	frame, err := Encode(CommandID(0x7FFFFFFF), StatusOK, 1, nil)
	require.NoError(t, err)
	dec := NewDecoder(0)
	_, _, err = dec.Decode(frame)
	var unknown *UnknownCommand
	assert.ErrorAs(t, err, &unknown)
}

func TestDecodeUnknownCommandNonOKStatusIsGenericNack(t *testing.T) {
	frame, err := Encode(CommandID(0x7FFFFFFF), StatusInvCmdID, 1, nil)
	require.NoError(t, err)
	dec := NewDecoder(0)
	pkt, _, err := dec.Decode(frame)
	require.NoError(t, err)
	assert.IsType(t, &GenericNack{}, pkt.Body)
}

func TestMessagePayloadSupersedesShortMessage(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	body := &SubmitSm{shortMessageFields{
		SourceAddr: Address{Number: "1"}, DestAddr: Address{Number: "2"}, ShortMessage: long,
	}}
	frame, err := Encode(SubmitSmID, StatusOK, 1, body)
	require.NoError(t, err)

	dec := NewDecoder(0)
	pkt, _, err := dec.Decode(frame)
	require.NoError(t, err)
	decoded := pkt.Body.(*SubmitSm)
	assert.Equal(t, long, decoded.ShortMessage)
}

func TestRespID(t *testing.T) {
	assert.Equal(t, SubmitSmRespID, RespID(SubmitSmID))
	assert.Equal(t, CommandID(0), RespID(AlertNotificationID))
	assert.Equal(t, CommandID(0), RespID(OutbindID))
}

func TestIsResponse(t *testing.T) {
	assert.True(t, IsResponse(SubmitSmRespID))
	assert.True(t, IsResponse(GenericNackID))
	assert.False(t, IsResponse(SubmitSmID))
}
