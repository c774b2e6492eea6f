package pdu

import "encoding/binary"

// HeaderLen is the fixed 16-byte SMPP header: command_length,
// command_id, command_status, sequence_number (SMPP 3.4 §4.1).
const HeaderLen = 16

// Header is the fixed portion present on every PDU.
type Header struct {
	Length    uint32
	ID        CommandID
	Status    Status
	Sequence  uint32
}

func decodeHeader(b []byte) Header {
	return Header{
		Length:   binary.BigEndian.Uint32(b[0:4]),
		ID:       CommandID(binary.BigEndian.Uint32(b[4:8])),
		Status:   Status(binary.BigEndian.Uint32(b[8:12])),
		Sequence: binary.BigEndian.Uint32(b[12:16]),
	}
}

func (h Header) encode(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.ID))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.Status))
	binary.BigEndian.PutUint32(buf[12:16], h.Sequence)
}
