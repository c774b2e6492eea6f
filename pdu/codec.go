package pdu

// DefaultMaxLength is the default frame size cap (spec.md §4.1): a
// command_length beyond this decodes as FrameTooLarge.
const DefaultMaxLength = 256 * 1024

// Encode serializes header and body into a single frame. command_length
// is computed last, from the actual serialized size (spec.md §4.1).
func Encode(id CommandID, status Status, sequence uint32, body PDU) ([]byte, error) {
	var bodyBytes []byte
	if body != nil {
		b, err := body.MarshalBody()
		if err != nil {
			return nil, err
		}
		bodyBytes = b
	}
	total := HeaderLen + len(bodyBytes)
	buf := make([]byte, total)
	Header{Length: uint32(total), ID: id, Status: status, Sequence: sequence}.encode(buf)
	copy(buf[HeaderLen:], bodyBytes)
	return buf, nil
}

// Decoder turns a byte stream into Packets, frame by frame.
type Decoder struct {
	maxLength uint32
}

// NewDecoder creates a Decoder with the given frame-size cap (0 uses
// DefaultMaxLength).
func NewDecoder(maxLength uint32) *Decoder {
	if maxLength == 0 {
		maxLength = DefaultMaxLength
	}
	return &Decoder{maxLength: maxLength}
}

// DecodeHeader validates and parses the fixed 16-byte frame header.
// The returned Header's Length is the total declared command_length
// (header included); callers (the session reader) subtract HeaderLen
// from it to know how many more bytes to read before calling Decode.
func (d *Decoder) DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, &MalformedPdu{Reason: "frame shorter than 16-byte header", Offset: len(b)}
	}
	h := decodeHeader(b)
	if h.Length < HeaderLen {
		return h, &MalformedPdu{Reason: "command_length smaller than header", Offset: 0}
	}
	if h.Length > d.maxLength {
		return h, &FrameTooLarge{Length: h.Length, Max: d.maxLength}
	}
	return h, nil
}

// Decode parses a complete frame (header + body bytes, exactly
// header.Length bytes) into a Packet. The returned consumed count is
// header.Length; any bytes of frame beyond it are left untouched,
// matching spec.md §8's frame independence property.
//
// An unknown command_id with status 0 decodes successfully but
// returns an *UnknownCommand error alongside the Packet (with Body nil) so
// the session can reply generic_nack without losing the header. An
// unknown command_id with non-zero status decodes as a GenericNack.
func (d *Decoder) Decode(frame []byte) (Packet, int, error) {
	h, err := d.DecodeHeader(frame)
	if err != nil {
		return Packet{Header: h}, 0, err
	}
	if int(h.Length) > len(frame) {
		return Packet{Header: h}, 0, &MalformedPdu{Reason: "frame shorter than declared command_length", Offset: len(frame)}
	}
	bodyBytes := frame[HeaderLen:h.Length]

	id := h.ID
	if New(id) == nil {
		if h.Status != StatusOK {
			return Packet{Header: h, Body: &GenericNack{}}, int(h.Length), nil
		}
		return Packet{Header: h}, int(h.Length), &UnknownCommand{ID: id}
	}

	body := New(id)
	if len(bodyBytes) > 0 || requiresBody(id) {
		if err := body.UnmarshalBody(bodyBytes); err != nil {
			return Packet{Header: h}, int(h.Length), &DecodeError{ID: id, Reason: err.Error()}
		}
	}
	return Packet{Header: h, Body: body}, int(h.Length), nil
}

func requiresBody(id CommandID) bool {
	switch id {
	case EnquireLinkID, EnquireLinkRespID, UnbindID, UnbindRespID, GenericNackID,
		CancelSmRespID, ReplaceSmRespID:
		return false
	default:
		return true
	}
}
