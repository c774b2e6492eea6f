package correlator

// Stats is a point-in-time snapshot of window/correlator health,
// supplemental to spec.md's capability surface: §8's window-discipline
// testable property requires an orphan counter to exist somewhere for
// a host to assert against.
type Stats struct {
	// InFlight is the number of requests currently awaiting a response.
	InFlight int
	// Orphans counts responses that matched no pending request.
	Orphans int64
	// Expired counts pending requests reclaimed by Expire.
	Expired int64
}
