package pdu

// Tag identifies an SMPP 3.4 optional parameter (TLV, §5.3).
type Tag uint16

// Known optional parameter tags (SMPP 3.4 §5.3.2). The codec stores
// every value, known tag or not, as opaque bytes; the typed Get*/Set*
// accessors on Options interpret them on request.
const (
	TagDestAddrSubunit        Tag = 0x0005
	TagDestNetworkType        Tag = 0x0006
	TagDestBearerType         Tag = 0x0007
	TagDestTelematicsID       Tag = 0x0008
	TagSourceAddrSubunit      Tag = 0x000D
	TagSourceNetworkType      Tag = 0x000E
	TagSourceBearerType       Tag = 0x000F
	TagSourceTelematicsID     Tag = 0x0010
	TagQosTimeToLive          Tag = 0x0017
	TagPayloadType            Tag = 0x0019
	TagAdditionalStatusInfo   Tag = 0x001D
	TagReceiptedMessageID     Tag = 0x001E
	TagMsMsgWaitFacilities    Tag = 0x0030
	TagPrivacyIndicator       Tag = 0x0201
	TagSourceSubaddress       Tag = 0x0202
	TagDestSubaddress         Tag = 0x0203
	TagUserMessageReference   Tag = 0x0204
	TagUserResponseCode       Tag = 0x0205
	TagSourcePort             Tag = 0x020A
	TagDestinationPort        Tag = 0x020B
	TagSarMsgRefNum           Tag = 0x020C
	TagLanguageIndicator      Tag = 0x020D
	TagSarTotalSegments       Tag = 0x020E
	TagSarSegmentSeqnum       Tag = 0x020F
	TagScInterfaceVersion     Tag = 0x0210
	TagCallbackNumPresInd     Tag = 0x0302
	TagCallbackNumAtag        Tag = 0x0303
	TagNumberOfMessages       Tag = 0x0304
	TagCallbackNum            Tag = 0x0381
	TagDpfResult              Tag = 0x0420
	TagSetDpf                 Tag = 0x0421
	TagMsAvailabilityStatus   Tag = 0x0422
	TagNetworkErrorCode       Tag = 0x0423
	TagMessagePayload         Tag = 0x0424
	TagDeliveryFailureReason  Tag = 0x0425
	TagMoreMessagesToSend     Tag = 0x0426
	TagMessageState           Tag = 0x0427
	TagUssdServiceOp          Tag = 0x0501
	TagDisplayTime            Tag = 0x1201
	TagSmsSignal              Tag = 0x1203
	TagMsValidity             Tag = 0x1204
	TagAlertOnMessageDelivery Tag = 0x130C
	TagItsReplyType           Tag = 0x1380
	TagItsSessionInfo         Tag = 0x1383
)

// Option is a single decoded TLV entry, preserving insertion order.
type Option struct {
	Tag   Tag
	Value []byte
}

// Options is an insertion-ordered tag->value map trailing a PDU body.
// Unknown tags round-trip as opaque bytes; callers use the typed
// accessors for tags the codec understands.
type Options struct {
	entries []Option
}

// NewOptions creates an empty Options set.
func NewOptions() *Options {
	return &Options{}
}

// Set appends or replaces the value for tag, preserving the position
// of the first insertion.
func (o *Options) Set(tag Tag, value []byte) {
	for i := range o.entries {
		if o.entries[i].Tag == tag {
			o.entries[i].Value = value
			return
		}
	}
	o.entries = append(o.entries, Option{Tag: tag, Value: value})
}

// SetUint8/SetUint16/SetCString are convenience setters for
// the common integer and c-string TLV encodings.
func (o *Options) SetUint8(tag Tag, v uint8) { o.Set(tag, []byte{v}) }

func (o *Options) SetUint16(tag Tag, v uint16) {
	o.Set(tag, []byte{byte(v >> 8), byte(v)})
}

func (o *Options) SetCString(tag Tag, s string) {
	o.Set(tag, append([]byte(s), 0))
}

// Get returns the raw value for tag, and whether it was present.
func (o *Options) Get(tag Tag) ([]byte, bool) {
	if o == nil {
		return nil, false
	}
	for _, e := range o.entries {
		if e.Tag == tag {
			return e.Value, true
		}
	}
	return nil, false
}

// GetUint8/GetUint16/GetUint32/GetCString decode the raw value for tag
// as the named integer width or C-string, returning ok=false if the
// tag is absent or the stored value has the wrong length.
func (o *Options) GetUint8(tag Tag) (uint8, bool) {
	v, ok := o.Get(tag)
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}

func (o *Options) GetUint16(tag Tag) (uint16, bool) {
	v, ok := o.Get(tag)
	if !ok || len(v) != 2 {
		return 0, false
	}
	return uint16(v[0])<<8 | uint16(v[1]), true
}

func (o *Options) GetUint32(tag Tag) (uint32, bool) {
	v, ok := o.Get(tag)
	if !ok || len(v) != 4 {
		return 0, false
	}
	return uint32(v[0])<<24 | uint32(v[1])<<16 | uint32(v[2])<<8 | uint32(v[3]), true
}

func (o *Options) GetCString(tag Tag) (string, bool) {
	v, ok := o.Get(tag)
	if !ok {
		return "", false
	}
	if len(v) > 0 && v[len(v)-1] == 0 {
		v = v[:len(v)-1]
	}
	return string(v), true
}

// Len reports the number of entries, nil-safe.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Each iterates entries in insertion order.
func (o *Options) Each(fn func(Option)) {
	if o == nil {
		return
	}
	for _, e := range o.entries {
		fn(e)
	}
}

// marshal writes the TLV-encoded entries to w in insertion order.
func (o *Options) marshal(w *writer) {
	if o == nil {
		return
	}
	for _, e := range o.entries {
		w.WriteUint16(uint16(e.Tag))
		w.WriteUint16(uint16(len(e.Value)))
		w.WriteOctets(e.Value)
	}
}

// unmarshalOptions parses every TLV in the trailing bytes of a body.
// Decoders must not depend on TLV order (spec.md §4.1).
func unmarshalOptions(b []byte) (*Options, error) {
	if len(b) == 0 {
		return nil, nil
	}
	r := newReader(b)
	opts := NewOptions()
	for r.Len() > 0 {
		tag, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadOctets(int(length))
		if err != nil {
			return nil, err
		}
		opts.Set(Tag(tag), value)
	}
	return opts, nil
}
