// Package gsm7 implements the GSM 03.38 (3GPP 23.038) default alphabet
// and the SMPP data-coding-scheme conversions the codec needs: GSM-7
// (packed septets), ASCII, Latin-1, UCS-2BE, and octet-unspecified
// pass-through (spec.md §4.2).
package gsm7

import "fmt"

// EncodeError reports a character that has no representation in the
// target alphabet (spec.md §4.2).
type EncodeError struct {
	Char   rune
	Offset int
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("gsm7: character %q at offset %d has no GSM-7 representation", e.Char, e.Offset)
}

// defaultAlphabet maps a rune to its single-septet GSM 03.38 code
// point. Runes requiring the extension table are listed in
// extensionAlphabet instead.
var defaultAlphabet = buildDefaultAlphabet()

// extensionAlphabet maps a rune to its extension-table code point,
// always preceded on the wire by the ESC septet (0x1B). These runes
// cost two septets each for length-accounting purposes (spec.md §9).
var extensionAlphabet = map[rune]byte{
	'\f': 0x0A,
	'^':  0x14,
	'{':  0x28,
	'}':  0x29,
	'\\': 0x2F,
	'[':  0x3C,
	'~':  0x3D,
	']':  0x3E,
	'|':  0x40,
	'€':  0x65,
}

const escSeptet = 0x1B

func buildDefaultAlphabet() map[rune]byte {
	// GSM 03.38 default alphabet, index == septet value.
	table := []rune{
		'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
		'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', 0x1B, 'Æ', 'æ', 'ß', 'É',
		' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
		'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
		'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
		'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
		'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
		'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
	}
	m := make(map[rune]byte, len(table))
	for i, r := range table {
		if r == escSeptet {
			continue // the ESC code point itself is not a printable character
		}
		m[r] = byte(i)
	}
	return m
}

// Septets returns the unpacked (one byte per septet, no packing)
// GSM-7 encoding of s, and the septet count (which, per spec.md §9,
// counts each extension-table character as 2). If lossy is false, a
// character with no representation fails with EncodeError; if lossy
// is true it is substituted with '?'.
func Septets(s string, lossy bool) ([]byte, int, error) {
	var out []byte
	offset := 0
	for _, r := range s {
		if b, ok := defaultAlphabet[r]; ok {
			out = append(out, b)
			offset++
			continue
		}
		if b, ok := extensionAlphabet[r]; ok {
			out = append(out, escSeptet, b)
			offset++
			continue
		}
		if lossy {
			out = append(out, defaultAlphabet['?'])
			offset++
			continue
		}
		return nil, 0, &EncodeError{Char: r, Offset: offset}
	}
	return out, len(out), nil
}

// Pack converts unpacked septets (as produced by Septets) into the
// 7-bit packed octet stream SMPP puts on the wire (3GPP 23.038 §6.1.2.1):
// septet i occupies bits [i*7, i*7+7) of the packed bit stream, LSB first.
func Pack(septets []byte) []byte {
	if len(septets) == 0 {
		return nil
	}
	n := len(septets)
	packed := make([]byte, (n*7+7)/8)
	for i, s := range septets {
		s &= 0x7F
		bitpos := i * 7
		bytepos := bitpos / 8
		shift := uint(bitpos % 8)
		packed[bytepos] |= s << shift
		if shift > 1 && bytepos+1 < len(packed) {
			packed[bytepos+1] |= s >> (8 - shift)
		}
	}
	return packed
}

// Unpack converts packed 7-bit octets back into septetCount septets.
func Unpack(packed []byte, septetCount int) []byte {
	out := make([]byte, septetCount)
	for i := 0; i < septetCount; i++ {
		bitpos := i * 7
		bytepos := bitpos / 8
		shift := uint(bitpos % 8)
		if bytepos >= len(packed) {
			break
		}
		septet := packed[bytepos] >> shift
		if shift > 1 && bytepos+1 < len(packed) {
			septet |= packed[bytepos+1] << (8 - shift)
		}
		out[i] = septet & 0x7F
	}
	return out
}

// reverseDefault and reverseExtension invert the encoding tables for
// decoding.
var reverseDefault = buildReverse(defaultAlphabet)
var reverseExtension = buildReverse(extensionAlphabet)

func buildReverse(m map[rune]byte) map[byte]rune {
	r := make(map[byte]rune, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

// Decode converts packed GSM-7 octets back into a string.
func Decode(packed []byte, septetCount int) string {
	septets := Unpack(packed, septetCount)
	var out []rune
	for i := 0; i < len(septets); i++ {
		if septets[i] == escSeptet && i+1 < len(septets) {
			if r, ok := reverseExtension[septets[i+1]]; ok {
				out = append(out, r)
				i++
				continue
			}
		}
		if r, ok := reverseDefault[septets[i]]; ok {
			out = append(out, r)
		}
	}
	return string(out)
}

// Encode is the convenience entry point: encodes s to packed GSM-7
// octets, returning the septet count for sm_length/UDH accounting.
func Encode(s string, lossy bool) ([]byte, int, error) {
	septets, count, err := Septets(s, lossy)
	if err != nil {
		return nil, 0, err
	}
	return Pack(septets), count, nil
}
