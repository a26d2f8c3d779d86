package simulation

import "time"

// Event describes one completed simulation run
type Event struct {
	Type        string        `json:"type"`
	Stations    int           `json:"stations"`
	WalshSize   int           `json:"walshSize,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	ClientError bool          `json:"clientError,omitempty"`
	Result      *Result       `json:"result,omitempty"`
}

// Event types
const (
	EventSimulated = "simulated"
	EventFailed    = "failed"
)
