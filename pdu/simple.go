package pdu

// EnquireLink (SMPP 3.4 §4.11) has no body; used for session keepalive.
type EnquireLink struct{}

func (*EnquireLink) CommandID() CommandID { return EnquireLinkID }

func (*EnquireLink) MarshalBody() ([]byte, error) { return nil, nil }

func (*EnquireLink) UnmarshalBody([]byte) error { return nil }

// EnquireLinkResp has no body.
type EnquireLinkResp struct{}

func (*EnquireLinkResp) CommandID() CommandID { return EnquireLinkRespID }

func (*EnquireLinkResp) MarshalBody() ([]byte, error) { return nil, nil }

func (*EnquireLinkResp) UnmarshalBody([]byte) error { return nil }

// Unbind (SMPP 3.4 §4.2) has no body.
type Unbind struct{}

func (*Unbind) CommandID() CommandID { return UnbindID }

func (*Unbind) MarshalBody() ([]byte, error) { return nil, nil }

func (*Unbind) UnmarshalBody([]byte) error { return nil }

// UnbindResp has no body.
type UnbindResp struct{}

func (*UnbindResp) CommandID() CommandID { return UnbindRespID }

func (*UnbindResp) MarshalBody() ([]byte, error) { return nil, nil }

func (*UnbindResp) UnmarshalBody([]byte) error { return nil }

// GenericNack (SMPP 3.4 §4.3) has no body; its command_status carries
// the reason (e.g. ESME_RINVCMDID for an unrecognized command).
type GenericNack struct{}

func (*GenericNack) CommandID() CommandID { return GenericNackID }

func (*GenericNack) MarshalBody() ([]byte, error) { return nil, nil }

func (*GenericNack) UnmarshalBody([]byte) error { return nil }

// AlertNotification (SMPP 3.4 §4.9) notifies an ESME that a mobile
// subscriber has become available after a prior delivery failure.
type AlertNotification struct {
	SourceAddr Address
	EsmeAddr   Address
	Options    *Options
}

func (*AlertNotification) CommandID() CommandID { return AlertNotificationID }

func (p *AlertNotification) MarshalBody() ([]byte, error) {
	w := &writer{}
	p.SourceAddr.writeTo(w)
	p.EsmeAddr.writeTo(w)
	p.Options.marshal(w)
	return w.Bytes(), nil
}

func (p *AlertNotification) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.SourceAddr, err = readAddress(r); err != nil {
		return err
	}
	if p.EsmeAddr, err = readAddress(r); err != nil {
		return err
	}
	p.Options, err = unmarshalOptions(r.Rest())
	return err
}

// Outbind (SMPP 3.4 §4.1.5) is sent unsolicited by an SMSC inviting
// the ESME to bind; the core's session never sends one, but decodes
// it to recognize the pattern if the peer uses it.
type Outbind struct {
	SystemID string
	Password string
}

func (*Outbind) CommandID() CommandID { return OutbindID }

func (p *Outbind) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.SystemID)
	w.WriteCString(p.Password)
	return w.Bytes(), nil
}

func (p *Outbind) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.SystemID, err = r.ReadCString(16); err != nil {
		return err
	}
	if p.Password, err = r.ReadCString(9); err != nil {
		return err
	}
	return nil
}
