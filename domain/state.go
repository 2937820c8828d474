package domain

import "fmt"

// PersistedState maps field identifiers to raw field values.
type PersistedState map[string]string

// Known returns a copy holding only the three field keys.
func (s PersistedState) Known() PersistedState {
	out := PersistedState{}
	for _, f := range Fields() {
		if v, ok := s[string(f)]; ok {
			out[string(f)] = v
		}
	}
	return out
}

// Raw converts the state into field contents. Missing keys read as empty.
func (s PersistedState) Raw() RawInput {
	var raw RawInput
	for _, f := range Fields() {
		raw.Set(f, s[string(f)])
	}
	return raw
}

// StateFromRaw builds the record persisted for a set of field contents.
func StateFromRaw(raw RawInput) PersistedState {
	out := PersistedState{}
	for _, f := range Fields() {
		out[string(f)] = raw.Get(f)
	}
	return out
}

// WidgetState is the observable state of the widget.
type WidgetState int

const (
	StateIdle WidgetState = iota
	StateComputing
)

func (s WidgetState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputing:
		return "computing"
	}
	return "unknown"
}

func (s WidgetState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *WidgetState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StateIdle
	case "computing":
		*s = StateComputing
	default:
		return fmt.Errorf("unknown widget state %q", text)
	}
	return nil
}
