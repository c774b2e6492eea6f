package pdu

// DeliverSm is the deliver_sm request (SMPP 3.4 §4.6.1), used by the
// SMSC both for mobile-originated messages and for delivery receipts
// (distinguished by esm_class, spec.md §4.2/§4.4). Field layout is
// identical to submit_sm; schedule_delivery_time, validity_period and
// replace_if_present_flag are unused and sent as NULL/0.
type DeliverSm struct {
	shortMessageFields
}

func (*DeliverSm) CommandID() CommandID { return DeliverSmID }

func (p *DeliverSm) MarshalBody() ([]byte, error) {
	w := &writer{}
	if err := p.shortMessageFields.marshal(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (p *DeliverSm) UnmarshalBody(b []byte) error {
	return p.shortMessageFields.unmarshal(newReader(b))
}

// IsReceipt reports whether this deliver_sm carries a delivery
// receipt rather than a mobile-originated message (esm_class bits
// 2-5 == SMSC Delivery Receipt, spec.md §4.4).
func (p *DeliverSm) IsReceipt() bool {
	return EsmClassIsReceipt(p.EsmClass)
}

// DeliverSmResp is the deliver_sm response (SMPP 3.4 §4.6.2); the
// message_id field is unused by the ESME direction and left empty.
type DeliverSmResp struct {
	MessageID string
}

func (*DeliverSmResp) CommandID() CommandID { return DeliverSmRespID }

func (p *DeliverSmResp) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	return w.Bytes(), nil
}

func (p *DeliverSmResp) UnmarshalBody(b []byte) error {
	r := newReader(b)
	id, err := r.ReadCString(65)
	if err != nil {
		return err
	}
	p.MessageID = id
	return nil
}
