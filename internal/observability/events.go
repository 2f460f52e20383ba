package observability

// EventEnvelope wraps websocket lifecycle events fanned out to the broker so
// downstream consumers can tell which service produced them.
type EventEnvelope struct {
	Source    string      `json:"source"`
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// NewEventEnvelope builds an envelope stamped with this service as source.
func NewEventEnvelope(eventType, eventName string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		Source:    "messenger-service",
		EventType: eventType,
		EventName: eventName,
		Payload:   payload,
	}
}

// BuildHeaders carries request correlation ids into broker messages.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
