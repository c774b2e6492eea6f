package hook

import (
	"context"

	"github.com/niksabaldun/smpplib/corelog"
)

// Logging is a reference Hook that forwards every callback to a
// corelog.Logger, useful as a starting point for a real hook or as
// the default when a caller wants visibility without writing one.
type Logging struct {
	Log corelog.Logger
}

// NewLogging builds a Logging hook; a nil log defaults to corelog.Nop.
func NewLogging(log corelog.Logger) *Logging {
	if log == nil {
		log = corelog.Nop{}
	}
	return &Logging{Log: log}
}

func (h *Logging) Sending(_ context.Context, pduValue any, pduBytes []byte, clientID string) {
	h.Log.Debug("sending", "pdu", pduValue, "bytes", len(pduBytes), "client_id", clientID)
}

func (h *Logging) Received(_ context.Context, pduValue any, pduBytes []byte, clientID string) {
	h.Log.Debug("received", "pdu", pduValue, "bytes", len(pduBytes), "client_id", clientID)
}

func (h *Logging) SendError(_ context.Context, msg string, err error, clientID string) {
	h.Log.Warn("send_error", "msg", msg, "err", err, "client_id", clientID)
}
