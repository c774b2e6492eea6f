package pdu

import "fmt"

// MalformedPdu indicates a frame that cannot be a valid SMPP PDU: too
// short, or with a command_length that underflows the header size.
type MalformedPdu struct {
	Reason string
	Offset int
}

func (e *MalformedPdu) Error() string {
	return fmt.Sprintf("smpp/pdu: malformed pdu at offset %d: %s", e.Offset, e.Reason)
}

// FrameTooLarge indicates a frame whose command_length exceeds the
// configured cap (default 256 KiB, spec.md §4.1).
type FrameTooLarge struct {
	Length uint32
	Max    uint32
}

func (e *FrameTooLarge) Error() string {
	return fmt.Sprintf("smpp/pdu: frame too large: %d > %d", e.Length, e.Max)
}

// UnknownCommand indicates a command_id the codec does not recognize,
// carried with command_status 0 (a genuine request, not an echoed
// failure). The caller replies generic_nack(ESME_RINVCMDID).
type UnknownCommand struct {
	ID CommandID
}

func (e *UnknownCommand) Error() string {
	return fmt.Sprintf("smpp/pdu: unknown command id 0x%08X", uint32(e.ID))
}

// DecodeError wraps a body-decoding failure with the command it
// occurred in, so the session can log a useful message.
type DecodeError struct {
	ID     CommandID
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("smpp/pdu: decode %s: %s", e.ID, e.Reason)
}

// EncodeError wraps a body-encoding failure.
type EncodeError struct {
	ID     CommandID
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("smpp/pdu: encode %s: %s", e.ID, e.Reason)
}
