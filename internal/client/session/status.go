package session

// Status is the client side view of the current turn.
type Status int

const (
	StatusReady Status = iota
	// StatusSubmitted: the request is out, no byte of the answer arrived yet.
	StatusSubmitted
	StatusStreaming
	StatusError
)

var statusNames = [...]string{
	StatusReady:     "ready",
	StatusSubmitted: "submitted",
	StatusStreaming: "streaming",
	StatusError:     "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Busy reports whether a turn is in flight.
func (s Status) Busy() bool {
	return s == StatusSubmitted || s == StatusStreaming
}

var transitions = map[Status][]Status{
	StatusReady:     {StatusSubmitted},
	StatusError:     {StatusSubmitted},
	StatusSubmitted: {StatusStreaming, StatusReady, StatusError},
	StatusStreaming: {StatusReady, StatusError},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
