package pdu

// shortMessageFields is the mandatory-parameter layout shared, byte
// for byte, by submit_sm and deliver_sm (SMPP 3.4 §4.4.1/§4.6.1).
// Embedded (not exported) by SubmitSm/DeliverSm so each keeps its own
// CommandID.
type shortMessageFields struct {
	ServiceType         string
	SourceAddr          Address
	DestAddr             Address
	EsmClass            byte
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
	Options              *Options
}

// MaxShortMessageLen is the SMPP 3.4 §4.4.1 limit on the mandatory
// short_message field before message_payload must be used instead.
const MaxShortMessageLen = 254

func (f *shortMessageFields) marshal(w *writer) error {
	if len(f.ServiceType) > 5 {
		return &EncodeError{Reason: "service_type exceeds 5 octets"}
	}
	w.WriteCString(f.ServiceType)
	f.SourceAddr.writeTo(w)
	f.DestAddr.writeTo(w)
	w.WriteByte(f.EsmClass)
	w.WriteByte(f.ProtocolID)
	w.WriteByte(f.PriorityFlag)
	w.WriteCString(f.ScheduleDeliveryTime)
	w.WriteCString(f.ValidityPeriod)
	w.WriteByte(f.RegisteredDelivery)
	w.WriteByte(f.ReplaceIfPresentFlag)
	w.WriteByte(f.DataCoding)
	w.WriteByte(f.SmDefaultMsgID)

	opts := f.Options
	if len(f.ShortMessage) > MaxShortMessageLen {
		// Move the payload into message_payload and zero the mandatory
		// length, per spec.md §4.1's short-message payload rule.
		w.WriteByte(0)
		opts = cloneOptions(opts)
		opts.Set(TagMessagePayload, f.ShortMessage)
	} else {
		w.WriteByte(byte(len(f.ShortMessage)))
		w.WriteOctets(f.ShortMessage)
	}
	opts.marshal(w)
	return nil
}

func (f *shortMessageFields) unmarshal(r *reader) error {
	var err error
	if f.ServiceType, err = r.ReadCString(6); err != nil {
		return err
	}
	if f.SourceAddr, err = readAddress(r); err != nil {
		return err
	}
	if f.DestAddr, err = readAddress(r); err != nil {
		return err
	}
	if f.EsmClass, err = r.ReadByte(); err != nil {
		return err
	}
	if f.ProtocolID, err = r.ReadByte(); err != nil {
		return err
	}
	if f.PriorityFlag, err = r.ReadByte(); err != nil {
		return err
	}
	if f.ScheduleDeliveryTime, err = r.ReadCString(17); err != nil {
		return err
	}
	if f.ValidityPeriod, err = r.ReadCString(17); err != nil {
		return err
	}
	if f.RegisteredDelivery, err = r.ReadByte(); err != nil {
		return err
	}
	if f.ReplaceIfPresentFlag, err = r.ReadByte(); err != nil {
		return err
	}
	if f.DataCoding, err = r.ReadByte(); err != nil {
		return err
	}
	if f.SmDefaultMsgID, err = r.ReadByte(); err != nil {
		return err
	}
	smLength, err := r.ReadByte()
	if err != nil {
		return err
	}
	if f.ShortMessage, err = r.ReadOctets(int(smLength)); err != nil {
		return err
	}
	if f.Options, err = unmarshalOptions(r.Rest()); err != nil {
		return err
	}
	// message_payload supersedes short_message when present (spec.md §4.1).
	if payload, ok := f.Options.Get(TagMessagePayload); ok {
		f.ShortMessage = payload
	}
	return nil
}

// UDH returns the parsed user data header and the remaining user data
// when EsmClass marks the payload as UDH-prefixed (esm_class.udhi).
func (f *shortMessageFields) UDH() (*Udh, []byte, error) {
	if f.EsmClass&EsmClassUDHI == 0 {
		return nil, f.ShortMessage, nil
	}
	raw, rest, err := SeparateUDH(f.ShortMessage)
	if err != nil {
		return nil, f.ShortMessage, err
	}
	udh, err := ParseUDH(raw)
	if err != nil {
		return nil, f.ShortMessage, err
	}
	return udh, rest, nil
}

// SetUDH prepends the encoded UDH to userData and marks esm_class.udhi.
func (f *shortMessageFields) SetUDH(udh *Udh, userData []byte) {
	encoded := udh.encode()
	if len(encoded) == 0 {
		f.ShortMessage = userData
		f.EsmClass &^= EsmClassUDHI
		return
	}
	f.ShortMessage = append(append([]byte{}, encoded...), userData...)
	f.EsmClass |= EsmClassUDHI
}

func cloneOptions(o *Options) *Options {
	n := NewOptions()
	o.Each(func(e Option) { n.Set(e.Tag, e.Value) })
	return n
}
