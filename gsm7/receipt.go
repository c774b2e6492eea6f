package gsm7

import "strings"

// Receipt is a parsed SMSC delivery receipt body (SMPP 3.4 Appendix B,
// spec.md §4.2/§6). Fields the text didn't carry are left at their
// zero value rather than synthesized; Extra holds any key the grammar
// doesn't name, keyed exactly as it appeared in the text.
type Receipt struct {
	ID         string
	Sub        string
	Delivered  string
	SubmitDate string
	DoneDate   string
	Stat       string
	Err        string
	Text       string
	Extra      map[string]string
}

// receiptFields lists the well-known "key:value" pairs in the order
// SMSCs conventionally emit them. ParseReceipt does not require this
// order, only that each key be followed by its value up to the next
// recognized key or the literal "text:" field.
var receiptFields = []string{"id", "sub", "dlvrd", "submit date", "done date", "stat", "err"}

// ParseReceipt parses a delivery_sm short_message body of the form
//
//	id:IIIIIIIIII sub:SSS dlvrd:DDD submit date:YYMMDDhhmm done date:YYMMDDhhmm stat:DDDDDDD err:E Text: . . . . . . . . .
//
// The "text:" field (case-insensitive) runs to the end of the string
// and is never truncated or re-split, since the original message may
// itself contain colons or the field-name tokens. Unknown key:value
// pairs appearing before "text:" are retained in Extra.
func ParseReceipt(s string) Receipt {
	r := Receipt{Extra: map[string]string{}}

	lower := strings.ToLower(s)
	if idx := indexText(lower); idx >= 0 {
		valStart := idx + len("text:")
		r.Text = strings.TrimPrefix(s[valStart:], " ")
		s = s[:idx]
	}

	for len(s) > 0 {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			break
		}
		key, rest, ok := matchKey(s)
		if !ok {
			// Unrecognized token: skip to the next space and keep going
			// rather than losing the remainder of the receipt.
			if sp := strings.IndexByte(s, ' '); sp >= 0 {
				s = s[sp+1:]
			} else {
				s = ""
			}
			continue
		}
		value, remainder := nextValue(rest, key)
		setReceiptField(&r, key, value)
		s = remainder
	}
	return r
}

func indexText(lower string) int {
	return strings.Index(lower, "text:")
}

// matchKey finds a known field name (case-insensitively) prefixing s,
// followed by a colon, and returns the key in canonical lower-case
// form plus the string immediately after the colon. Failing that, a
// leading space-free "key:" token is returned with its key exactly as
// written.
func matchKey(s string) (key string, rest string, ok bool) {
	lower := strings.ToLower(s)
	for _, f := range receiptFields {
		if strings.HasPrefix(lower, f+":") {
			return f, s[len(f)+1:], true
		}
	}
	colon := strings.IndexByte(s, ':')
	if sp := strings.IndexByte(s, ' '); colon > 0 && (sp < 0 || colon < sp) {
		return s[:colon], s[colon+1:], true
	}
	return "", "", false
}

// nextValue reads the value following key up to (but not including)
// the next recognized field key or the next space-delimited word
// containing a colon, or the end of the string.
func nextValue(s, _ string) (value string, remainder string) {
	lower := strings.ToLower(s)
	cut := len(s)
	for _, f := range receiptFields {
		if i := strings.Index(lower, " "+f+":"); i >= 0 && i < cut {
			cut = i
		}
	}
	for i := 0; i < cut; i++ {
		if s[i] != ' ' {
			continue
		}
		word := s[i+1:]
		if sp := strings.IndexByte(word, ' '); sp >= 0 {
			word = word[:sp]
		}
		if strings.IndexByte(word, ':') > 0 {
			cut = i
			break
		}
	}
	value = strings.TrimSpace(s[:cut])
	if cut >= len(s) {
		return value, ""
	}
	return value, s[cut:]
}

func setReceiptField(r *Receipt, key, value string) {
	switch key {
	case "id":
		r.ID = value
	case "sub":
		r.Sub = value
	case "dlvrd":
		r.Delivered = value
	case "submit date":
		r.SubmitDate = value
	case "done date":
		r.DoneDate = value
	case "stat":
		r.Stat = value
	case "err":
		r.Err = value
	default:
		r.Extra[key] = value
	}
}
