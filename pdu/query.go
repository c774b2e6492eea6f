package pdu

// QuerySm is the query_sm request (SMPP 3.4 §4.5.1): asks the SMSC
// for the status of a previously submitted message.
type QuerySm struct {
	MessageID  string
	SourceAddr Address
}

func (*QuerySm) CommandID() CommandID { return QuerySmID }

func (p *QuerySm) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	p.SourceAddr.writeTo(w)
	return w.Bytes(), nil
}

func (p *QuerySm) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.MessageID, err = r.ReadCString(65); err != nil {
		return err
	}
	p.SourceAddr, err = readAddress(r)
	return err
}

// MessageState is the final_message_state of a query_sm_resp (SMPP
// 3.4 §5.2.28).
type MessageState byte

const (
	MessageStateEnroute       MessageState = 1
	MessageStateDelivered     MessageState = 2
	MessageStateExpired       MessageState = 3
	MessageStateDeleted       MessageState = 4
	MessageStateUndeliverable MessageState = 5
	MessageStateAccepted      MessageState = 6
	MessageStateUnknown       MessageState = 7
	MessageStateRejected      MessageState = 8
)

// QuerySmResp is the query_sm response (SMPP 3.4 §4.5.2).
type QuerySmResp struct {
	MessageID    string
	FinalDate    string
	MessageState MessageState
	ErrorCode    byte
}

func (*QuerySmResp) CommandID() CommandID { return QuerySmRespID }

func (p *QuerySmResp) MarshalBody() ([]byte, error) {
	w := &writer{}
	w.WriteCString(p.MessageID)
	w.WriteCString(p.FinalDate)
	w.WriteByte(byte(p.MessageState))
	w.WriteByte(p.ErrorCode)
	return w.Bytes(), nil
}

func (p *QuerySmResp) UnmarshalBody(b []byte) error {
	r := newReader(b)
	var err error
	if p.MessageID, err = r.ReadCString(65); err != nil {
		return err
	}
	if p.FinalDate, err = r.ReadCString(17); err != nil {
		return err
	}
	state, err := r.ReadByte()
	if err != nil {
		return err
	}
	p.MessageState = MessageState(state)
	if p.ErrorCode, err = r.ReadByte(); err != nil {
		return err
	}
	return nil
}
