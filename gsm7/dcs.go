package gsm7

import (
	"fmt"
	"unicode/utf16"
)

// Encoding identifies one of the data_coding schemes the codec
// supports (spec.md §4.2). Only the schemes actually exercised by
// ESME traffic are named; the full data_coding byte still round-trips
// through pdu.SubmitSm/DeliverSm.DataCoding untouched.
type Encoding int

const (
	// EncodingGSM7 is the GSM 03.38 default alphabet, packed 7-bit.
	EncodingGSM7 Encoding = iota
	// EncodingASCII is IA5/ASCII, one octet per character.
	EncodingASCII
	// EncodingLatin1 is ISO-8859-1, one octet per character.
	EncodingLatin1
	// EncodingUCS2 is UCS-2, big-endian, two octets per character.
	EncodingUCS2
	// EncodingOctet is an unspecified 8-bit alphabet; bytes pass through.
	EncodingOctet
)

// DataCoding maps an Encoding to the data_coding byte SMPP puts on
// the wire (SMPP 3.4 §5.2.19).
func DataCoding(e Encoding) byte {
	switch e {
	case EncodingASCII:
		return 0x01
	case EncodingLatin1:
		return 0x03
	case EncodingUCS2:
		return 0x08
	case EncodingOctet:
		return 0x04
	default:
		return 0x00
	}
}

// EncodingFromDataCoding maps a wire data_coding byte to an Encoding,
// following the SMSC Default Alphabet / coding group bit layout of
// SMPP 3.4 §5.2.19. Unrecognized bytes fall back to EncodingOctet, so
// callers always get raw bytes back rather than a decode error.
func EncodingFromDataCoding(b byte) Encoding {
	switch {
	case b == 0x00:
		return EncodingGSM7
	case b == 0x01:
		return EncodingASCII
	case b == 0x03:
		return EncodingLatin1
	case b == 0x08:
		return EncodingUCS2
	case b&0xF0 == 0xF0: // coding group 1111: MSB data coding indication
		if b&0x04 != 0 {
			return EncodingUCS2
		}
		return EncodingGSM7
	default:
		return EncodingOctet
	}
}

// EncodeText converts s to wire bytes under the given encoding; the
// length of the returned slice is the byte length message accounting
// expects in sm_length/UDH (spec.md §4.2, §9). For EncodingGSM7 this
// is the packed length, not the septet count.
func EncodeText(s string, e Encoding, lossy bool) ([]byte, error) {
	switch e {
	case EncodingGSM7:
		septets, _, err := Septets(s, lossy)
		if err != nil {
			return nil, err
		}
		return Pack(septets), nil
	case EncodingASCII:
		return encodeSingleByte(s, lossy, func(r rune) (byte, bool) {
			if r > 0x7F {
				return 0, false
			}
			return byte(r), true
		})
	case EncodingLatin1:
		return encodeSingleByte(s, lossy, func(r rune) (byte, bool) {
			if r > 0xFF {
				return 0, false
			}
			return byte(r), true
		})
	case EncodingUCS2:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			out[i*2] = byte(u >> 8)
			out[i*2+1] = byte(u)
		}
		return out, nil
	case EncodingOctet:
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("gsm7: unsupported encoding %d", e)
	}
}

// DecodeText is the inverse of EncodeText. septetCount is only
// consulted for EncodingGSM7, where it disambiguates trailing padding
// bits from a final, deliberately short septet.
func DecodeText(b []byte, e Encoding, septetCount int) string {
	switch e {
	case EncodingGSM7:
		if septetCount == 0 && len(b) > 0 {
			septetCount = len(b) * 8 / 7
		}
		return Decode(b, septetCount)
	case EncodingASCII, EncodingLatin1:
		out := make([]rune, len(b))
		for i, c := range b {
			out[i] = rune(c)
		}
		return string(out)
	case EncodingUCS2:
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[i*2])<<8 | uint16(b[i*2+1])
		}
		return string(utf16.Decode(units))
	default:
		return string(b)
	}
}

func encodeSingleByte(s string, lossy bool, conv func(rune) (byte, bool)) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		c, ok := conv(r)
		if !ok {
			if lossy {
				c = '?'
			} else {
				return nil, &EncodeError{Char: r, Offset: i}
			}
		}
		out = append(out, c)
	}
	return out, nil
}
