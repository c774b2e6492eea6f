package pdu

// ReplaceSm is the replace_sm request (SMPP 3.4 §4.8.1): replaces a
// previously submitted, not-yet-delivered message with new content.
type ReplaceSm struct {
	MessageID            string
	SourceAddr           Address
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
}

func (*ReplaceSm) CommandID() CommandID { return ReplaceSmID }

func (p *ReplaceSm) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	p.SourceAddr.writeTo(w)
	w.WriteCString(p.ScheduleDeliveryTime)
	w.WriteCString(p.ValidityPeriod)
	w.WriteByte(p.RegisteredDelivery)
	w.WriteByte(p.SmDefaultMsgID)
	if len(p.ShortMessage) > MaxShortMessageLen {
		return nil, &EncodeError{ID: ReplaceSmID, Reason: "short_message exceeds 254 octets and replace_sm has no message_payload TLV"}
	}
	w.WriteByte(byte(len(p.ShortMessage)))
	w.WriteOctets(p.ShortMessage)
	return w.Bytes(), nil
}

func (p *ReplaceSm) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.MessageID, err = r.ReadCString(65); err != nil {
		return err
	}
	if p.SourceAddr, err = readAddress(r); err != nil {
		return err
	}
	if p.ScheduleDeliveryTime, err = r.ReadCString(17); err != nil {
		return err
	}
	if p.ValidityPeriod, err = r.ReadCString(17); err != nil {
		return err
	}
	if p.RegisteredDelivery, err = r.ReadByte(); err != nil {
		return err
	}
	if p.SmDefaultMsgID, err = r.ReadByte(); err != nil {
		return err
	}
	smLength, err := r.ReadByte()
	if err != nil {
		return err
	}
	p.ShortMessage, err = r.ReadOctets(int(smLength))
	return err
}

// ReplaceSmResp has no body (SMPP 3.4 §4.8.2).
type ReplaceSmResp struct{}

func (*ReplaceSmResp) CommandID() CommandID { return ReplaceSmRespID }

func (*ReplaceSmResp) MarshalBody() ([]byte, error) { return nil, nil }

func (*ReplaceSmResp) UnmarshalBody([]byte) error { return nil }
