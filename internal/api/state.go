package api

import (
	"math"
	"time"
)

// ServiceState is a snapshot of the remote moderation configuration.
type ServiceState struct {
	ShutdownEnabled bool
	UpdatedAt       *time.Time
	// Raw is the response body exactly as the server sent it.
	Raw any
}

// millisecondThreshold separates Unix-second from Unix-millisecond timestamps.
const millisecondThreshold = 1e11

// NormalizeState maps either field convention ("shutdownEnabled" or the older
// "enabled") onto the canonical flag. shutdownEnabled wins when present and
// non-null; the flag is the truthiness of whichever value is used.
func NormalizeState(raw any) ServiceState {
	state := ServiceState{Raw: raw}

	body, ok := raw.(map[string]any)
	if !ok {
		return state
	}

	value, present := body["shutdownEnabled"]
	if !present || value == nil {
		value = body["enabled"]
	}
	state.ShutdownEnabled = truthy(value)

	if ts, ok := body["updatedAt"].(float64); ok && ts > 0 && !math.IsInf(ts, 0) {
		var t time.Time
		if ts >= millisecondThreshold {
			t = time.UnixMilli(int64(ts))
		} else {
			t = time.Unix(int64(ts), 0)
		}
		state.UpdatedAt = &t
	}

	return state
}

// Hint describes the shutdown flag for display.
func (s ServiceState) Hint() string {
	if s.ShutdownEnabled {
		return "ON (new joins blocked)"
	}
	return "OFF (normal)"
}

// truthy applies loose truthiness to a decoded JSON value.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
