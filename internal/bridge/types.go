package bridge

import "encoding/json"

// Message types the execution context may post. The set is closed; anything
// else is dropped at the type guard.
const (
	TypeReady             = "ready"
	TypeResize            = "resize"
	TypeError             = "error"
	TypeExecutionComplete = "execution-complete"
)

// SketchIDField is the payload key carrying the logical sketch identifier.
const SketchIDField = "sketchInstanceId"

// Event is one inbound cross-context message before validation.
type Event struct {
	// Origin of the sending context, e.g. "http://localhost:5173".
	Origin string
	// Source identifies the sending context itself. Compared by interface
	// equality against the configured expected source.
	Source any
	// Data is the raw payload: a map, raw JSON bytes, or json.RawMessage.
	Data any
}

// Handler consumes one validated, cloned payload.
type Handler func(payload map[string]any)

// decodePayload normalizes event data into a fresh map. Raw bytes are
// unmarshalled (already an isolated copy); maps are cloned through a JSON
// round trip so handlers never share memory with the sender.
func decodePayload(data any) (map[string]any, bool) {
	switch d := data.(type) {
	case []byte:
		return unmarshalObject(d)
	case json.RawMessage:
		return unmarshalObject(d)
	case string:
		return unmarshalObject([]byte(d))
	case map[string]any:
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, false
		}
		return unmarshalObject(raw)
	default:
		return nil, false
	}
}

func unmarshalObject(raw []byte) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	return payload, true
}
