package smpplib

import (
	"errors"

	"github.com/niksabaldun/smpplib/correlator"
	"github.com/niksabaldun/smpplib/session"
)

// The session package's error kinds from spec.md §7 are re-exported
// here as type aliases, so callers doing
//
//	var rejected *smpplib.BindRejected
//	errors.As(err, &rejected)
//
// never need to import session or correlator directly.
type (
	SessionClosed   = session.SessionClosed
	RequestTimeout  = session.RequestTimeout
	BindTimeout     = session.BindTimeout
	BindRejected    = session.BindRejected
	TransportError  = session.TransportError
	Throttled       = session.Throttled
)

// ErrWindowFull is returned by SubmitSM when the correlator's
// in-flight window is saturated (spec.md §4.3/§7).
var ErrWindowFull = correlator.ErrWindowFull

// ErrRequestExpired marks a PendingRequest reclaimed by the
// timekeeper (spec.md §4.4).
var ErrRequestExpired = correlator.ErrRequestExpired

// ErrNotConnected is returned by SubmitSM/Connect-dependent calls made
// before Connect/Start has bound the session.
var ErrNotConnected = errors.New("smpplib: not connected")
