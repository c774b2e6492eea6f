package pdu

// CancelSm is the cancel_sm request (SMPP 3.4 §4.7.1): cancels a
// previously submitted, not-yet-delivered message.
type CancelSm struct {
	ServiceType string
	MessageID   string
	SourceAddr  Address
	DestAddr    Address
}

func (*CancelSm) CommandID() CommandID { return CancelSmID }

func (p *CancelSm) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.ServiceType)
	w.WriteCString(p.MessageID)
	p.SourceAddr.writeTo(w)
	p.DestAddr.writeTo(w)
	return w.Bytes(), nil
}

func (p *CancelSm) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.ServiceType, err = r.ReadCString(6); err != nil {
		return err
	}
	if p.MessageID, err = r.ReadCString(65); err != nil {
		return err
	}
	if p.SourceAddr, err = readAddress(r); err != nil {
		return err
	}
	p.DestAddr, err = readAddress(r)
	return err
}

// CancelSmResp has no body (SMPP 3.4 §4.7.2).
type CancelSmResp struct{}

func (*CancelSmResp) CommandID() CommandID { return CancelSmRespID }

func (*CancelSmResp) MarshalBody() ([]byte, error) { return nil, nil }

func (*CancelSmResp) UnmarshalBody([]byte) error { return nil }
