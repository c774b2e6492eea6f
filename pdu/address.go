package pdu

import "fmt"

// TON is the type-of-number of an Address.
type TON uint8

// Common SMPP 3.4 §5.2.5 type-of-number values.
const (
	TONUnknown          TON = 0x00
	TONInternational    TON = 0x01
	TONNational         TON = 0x02
	TONNetworkSpecific  TON = 0x03
	TONSubscriberNumber TON = 0x04
	TONAlphanumeric     TON = 0x05
	TONAbbreviated      TON = 0x06
)

// NPI is the numbering-plan-indicator of an Address.
type NPI uint8

// Common SMPP 3.4 §5.2.6 numbering-plan-indicator values.
const (
	NPIUnknown    NPI = 0x00
	NPIISDN       NPI = 0x01
	NPIData       NPI = 0x03
	NPITelex      NPI = 0x04
	NPILandMobile NPI = 0x06
	NPINational   NPI = 0x08
	NPIPrivate    NPI = 0x09
	NPIERMES      NPI = 0x0A
	NPIInternet   NPI = 0x0E
	NPIWAPClient  NPI = 0x12
)

// MaxAddressLen is the maximum address digit-string length (20 octets
// plus NUL, SMPP 3.4 §5.2.10/§5.2.9) carried by submit/deliver PDUs.
const MaxAddressLen = 21

// Address is the (address, type_of_number, numbering_plan_indicator)
// triple used throughout SMPP for source and destination numbers
// (spec.md §3 "PhoneNumber"). Invariant: Number must be non-empty once
// validated with Validate; TON and NPI are enumerated values.
type Address struct {
	Number string
	TON    TON
	NPI    NPI
}

// Validate enforces the PhoneNumber invariants of spec.md §3.
func (a Address) Validate() error {
	if a.Number == "" {
		return fmt.Errorf("smpp/pdu: address is empty")
	}
	if len(a.Number) > MaxAddressLen-1 {
		return fmt.Errorf("smpp/pdu: address %q exceeds %d octets", a.Number, MaxAddressLen-1)
	}
	return nil
}

func (a Address) writeTo(w *writer) {
	w.WriteByte(byte(a.TON))
	w.WriteByte(byte(a.NPI))
	w.WriteCString(a.Number)
}

func readAddress(r *reader) (Address, error) {
	ton, err := r.ReadByte()
	if err != nil {
		return Address{}, err
	}
	npi, err := r.ReadByte()
	if err != nil {
		return Address{}, err
	}
	number, err := r.ReadCString(MaxAddressLen)
	if err != nil {
		return Address{}, err
	}
	return Address{Number: number, TON: TON(ton), NPI: NPI(npi)}, nil
}
