package remote

import (
	"github.com/rs/zerolog"
)

// CallEvent records metadata about a single service request.
type CallEvent struct {
	Op         string
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Attempts   int
	LatencyMs  int64
	Success    bool
	ErrorCode  string
}

// Observer receives events about service calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "remote").Logger()}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	e := o.log.Debug()
	if !event.Success {
		e = o.log.Warn().Str("error_code", event.ErrorCode)
	}
	e.Str("op", event.Op).
		Str("method", event.Method).
		Str("path", event.Path).
		Str("request_id", event.RequestID).
		Int("status", event.StatusCode).
		Int("attempts", event.Attempts).
		Int64("latency_ms", event.LatencyMs).
		Msg("service call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
