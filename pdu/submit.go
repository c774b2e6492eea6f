package pdu

// SubmitSm is the submit_sm request (SMPP 3.4 §4.4.1): submits a
// short message for delivery to one destination.
type SubmitSm struct {
	shortMessageFields
}

func (*SubmitSm) CommandID() CommandID { return SubmitSmID }

func (p *SubmitSm) MarshalBody() ([]byte, error) {
	w := &writer{}
	if err := p.shortMessageFields.marshal(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (p *SubmitSm) UnmarshalBody(b []byte) error {
	return p.shortMessageFields.unmarshal(newReader(b))
}

// SubmitSmResp is the submit_sm response (SMPP 3.4 §4.4.2): carries
// the SMSC-assigned message_id used to correlate a later delivery
// receipt.
type SubmitSmResp struct {
	MessageID string
	Options   *Options
}

func (*SubmitSmResp) CommandID() CommandID { return SubmitSmRespID }

func (p *SubmitSmResp) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	p.Options.marshal(w)
	return w.Bytes(), nil
}

func (p *SubmitSmResp) UnmarshalBody(b []byte) error {
	id, opts, err := cStringOptsUnmarshal(b, 65)
	if err != nil {
		return err
	}
	p.MessageID = id
	p.Options = opts
	return nil
}
