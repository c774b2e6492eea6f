package pdu

// DataSm is the data_sm request (SMPP 3.4 §4.10.1): an alternative to
// submit_sm/deliver_sm for interactive/data applications; carries no
// short_message of its own, only TLVs (typically message_payload).
type DataSm struct {
	ServiceType        string
	SourceAddr         Address
	DestAddr           Address
	EsmClass           byte
	RegisteredDelivery byte
	DataCoding         byte
	Options            *Options
}

func (*DataSm) CommandID() CommandID { return DataSmID }

func (p *DataSm) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.ServiceType)
	p.SourceAddr.writeTo(w)
	p.DestAddr.writeTo(w)
	w.WriteByte(p.EsmClass)
	w.WriteByte(p.RegisteredDelivery)
	w.WriteByte(p.DataCoding)
	p.Options.marshal(w)
	return w.Bytes(), nil
}

func (p *DataSm) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.ServiceType, err = r.ReadCString(6); err != nil {
		return err
	}
	if p.SourceAddr, err = readAddress(r); err != nil {
		return err
	}
	if p.DestAddr, err = readAddress(r); err != nil {
		return err
	}
	if p.EsmClass, err = r.ReadByte(); err != nil {
		return err
	}
	if p.RegisteredDelivery, err = r.ReadByte(); err != nil {
		return err
	}
	if p.DataCoding, err = r.ReadByte(); err != nil {
		return err
	}
	p.Options, err = unmarshalOptions(r.Rest())
	return err
}

// DataSmResp is the data_sm response (SMPP 3.4 §4.10.2).
type DataSmResp struct {
	MessageID string
	Options   *Options
}

func (*DataSmResp) CommandID() CommandID { return DataSmRespID }

func (p *DataSmResp) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	p.Options.marshal(w)
	return w.Bytes(), nil
}

func (p *DataSmResp) UnmarshalBody(b []byte) error {
	id, opts, err := cStringOptsUnmarshal(b, 65)
	if err != nil {
		return err
	}
	p.MessageID = id
	p.Options = opts
	return nil
}
