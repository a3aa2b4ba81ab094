package websocket

import (
	"encoding/json"
	"time"

	"github.com/bhargav676/intern/domain"
)

// Envelope is the frame written to every dashboard. Seq increases by one per
// broadcast within a process, so a client that sees a gap knows it missed
// events and should re-fetch over REST.
type Envelope struct {
	Event  domain.EventType `json:"event"`
	Seq    uint64           `json:"seq"`
	Data   any              `json:"data"`
	SentAt time.Time        `json:"sentAt"`
}

// Subscriber identifies the dashboard user behind a connection
type Subscriber struct {
	UserID   string
	Username string
	Role     string
}

// ControlMessage is the only frame clients may send. Anything else is ignored.
type ControlMessage struct {
	Type string `json:"type"`
}

const controlPing = "ping"

func encodeEnvelope(event domain.Event, seq uint64, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		Event:  event.Type,
		Seq:    seq,
		Data:   event.Payload,
		SentAt: now,
	})
}
