package pdu

type bindKind int

const (
	kindReceiver bindKind = iota
	kindTransmitter
	kindTransceiver
)

// InterfaceVersion is the SMPP protocol version this codec speaks
// (SMPP 3.4, SMPP 3.4 §5.2.4).
const InterfaceVersion byte = 0x34

// Bind is the bind_transmitter/bind_receiver/bind_transceiver request
// body (SMPP 3.4 §4.1.1/4.1.3/4.1.5 — identical layout across the
// three bind commands, only the command_id differs).
type Bind struct {
	bindKind bindKind

	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTON          TON
	AddrNPI          NPI
	AddressRange     string
}

func (p *Bind) CommandID() CommandID {
	switch p.bindKind {
	case kindReceiver:
		return BindReceiverID
	case kindTransceiver:
		return BindTransceiverID
	default:
		return BindTransmitterID
	}
}

func (p *Bind) MarshalBody() ([]byte, error) {
	if len(p.SystemID) > 15 {
		return nil, &EncodeError{ID: p.CommandID(), Reason: "system_id exceeds 15 octets"}
	}
	if len(p.Password) > 8 {
		return nil, &EncodeError{ID: p.CommandID(), Reason: "password exceeds 8 octets"}
	}
	if len(p.SystemType) > 12 {
		return nil, &EncodeError{ID: p.CommandID(), Reason: "system_type exceeds 12 octets"}
	}
	w := &writer{}
	w.WriteCString(p.SystemID)
	w.WriteCString(p.Password)
	w.WriteCString(p.SystemType)
	iv := p.InterfaceVersion
	if iv == 0 {
		iv = InterfaceVersion
	}
	w.WriteByte(iv)
	w.WriteByte(byte(p.AddrTON))
	w.WriteByte(byte(p.AddrNPI))
	w.WriteCString(p.AddressRange)
	return w.Bytes(), nil
}

func (p *Bind) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.SystemID, err = r.ReadCString(16); err != nil {
		return err
	}
	if p.Password, err = r.ReadCString(9); err != nil {
		return err
	}
	if p.SystemType, err = r.ReadCString(13); err != nil {
		return err
	}
	if p.InterfaceVersion, err = r.ReadByte(); err != nil {
		return err
	}
	ton, err := r.ReadByte()
	if err != nil {
		return err
	}
	p.AddrTON = TON(ton)
	npi, err := r.ReadByte()
	if err != nil {
		return err
	}
	p.AddrNPI = NPI(npi)
	if p.AddressRange, err = r.ReadCString(MaxAddressLen); err != nil {
		return err
	}
	return nil
}

// BindResp is the response to any of the three bind requests (SMPP
// 3.4 §4.1.2/4.1.4/4.1.6): system_id plus an optional sc_interface_version TLV.
type BindResp struct {
	bindKind bindKind

	SystemID string
	Options  *Options
}

func (p *BindResp) CommandID() CommandID {
	switch p.bindKind {
	case kindReceiver:
		return BindReceiverRespID
	case kindTransceiver:
		return BindTransceiverRespID
	default:
		return BindTransmitterRespID
	}
}

func (p *BindResp) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.SystemID)
	p.Options.marshal(w)
	return w.Bytes(), nil
}

func (p *BindResp) UnmarshalBody(b []byte) error {
	systemID, opts, err := cStringOptsUnmarshal(b, 16)
	if err != nil {
		return err
	}
	p.SystemID = systemID
	p.Options = opts
	return nil
}

// cStringOptsUnmarshal parses a body that is a single C-string
// followed by optional TLVs, the shape shared by every *_resp with an
// id/system_id plus options (bind_resp, submit_sm_resp, data_sm_resp).
func cStringOptsUnmarshal(b []byte, max int) (string, *Options, error) {
	r := newReader(b)
	s, err := r.ReadCString(max)
	if err != nil {
		return "", nil, err
	}
	opts, err := unmarshalOptions(r.Rest())
	if err != nil {
		return "", nil, err
	}
	return s, opts, nil
}
