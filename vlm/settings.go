package vlm

import (
	"fmt"
	"strconv"
	"strings"
)

// RawSettings holds the vision token settings exactly as they were read from
// the environment. Empty strings mean the variable was not set.
type RawSettings struct {
	NumLookClose        string
	NumTokenLookClose   string
	SelectNumEachScale  string
	LookCloseMode       string
	SmoothSelectionProb string
}

// Settings are the parsed overrides. Nil fields leave the model default alone.
type Settings struct {
	NumLookClose        *int
	NumTokenLookClose   *int
	SelectNumEachScale  []int
	LookCloseMode       *string
	SmoothSelectionProb *bool
}

type ConfigError struct {
	Variable string
	Value    string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Variable, e.Value, e.Reason)
}

func ParseSettings(raw RawSettings) (s Settings, err error) {
	if s.NumLookClose, err = parseCount("NUM_LOOK_CLOSE", raw.NumLookClose); err != nil {
		return s, err
	}
	if s.NumTokenLookClose, err = parseCount("NUM_TOKEN_LOOK_CLOSE", raw.NumTokenLookClose); err != nil {
		return s, err
	}
	if raw.SelectNumEachScale != "" {
		for _, part := range strings.Split(raw.SelectNumEachScale, "+") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 {
				return s, &ConfigError{Variable: "SELECT_NUM_EACH_SCALE", Value: raw.SelectNumEachScale, Reason: "expected non-negative integers separated by +"}
			}
			s.SelectNumEachScale = append(s.SelectNumEachScale, n)
		}
	}
	if raw.LookCloseMode != "" {
		mode := raw.LookCloseMode
		s.LookCloseMode = &mode
	}
	if raw.SmoothSelectionProb != "" {
		var v bool
		switch strings.ToLower(raw.SmoothSelectionProb) {
		case "true":
			v = true
		case "false":
			v = false
		default:
			return s, &ConfigError{Variable: "SMOOTH_SELECTION_PROB", Value: raw.SmoothSelectionProb, Reason: "expected true or false"}
		}
		s.SmoothSelectionProb = &v
	}
	return s, nil
}

func parseCount(name, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return nil, &ConfigError{Variable: name, Value: value, Reason: "expected a non-negative integer"}
	}
	return &n, nil
}

// ContextLength returns the context window needed to fit the look-close
// tokens, never less than the tokenizer's own limit.
func ContextLength(tokenizerMaxLength int, s Settings) int {
	length := tokenizerMaxLength
	if s.NumLookClose != nil {
		length = max(length, *s.NumLookClose*2560/4+1024)
	}
	if s.NumTokenLookClose != nil {
		length = max(length, *s.NumTokenLookClose/4+1024)
	}
	return length
}
