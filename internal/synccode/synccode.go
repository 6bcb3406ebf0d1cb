// Package synccode turns the whole application state into a single-line
// opaque code and back. The code is standard base64 over the canonical JSON
// form of the state.
package synccode

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"shiftcal/internal/model"
)

// ErrInvalidCode is wrapped by every Decode failure.
var ErrInvalidCode = errors.New("invalid sync code")

// Encode serializes st and returns its sync code.
func Encode(st *model.AppState) (string, error) {
	if st == nil {
		return "", errors.New("synccode: nil state")
	}
	data, err := Marshal(st)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Marshal returns the canonical JSON form of st. It is also the storage
// blob format.
func Marshal(st *model.AppState) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("synccode: marshal state: %w", err)
	}
	return data, nil
}

// Decode parses a sync code. It fails with an error wrapping
// ErrInvalidCode when the code is not valid base64, not valid JSON, or does
// not look like an application state.
func Decode(code string) (*model.AppState, error) {
	compact := strings.Join(strings.Fields(code), "")
	if compact == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidCode)
	}

	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(compact)
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
		}
	}

	// Codes produced by a browser's btoa carry Latin-1 bytes, not UTF-8.
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
		}
	}

	st, err := Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	return st, nil
}

// shape is the minimal structure a state must have.
type shape struct {
	Calendars        []json.RawMessage  `json:"calendars"`
	ActiveCalendarID string             `json:"activeCalendarId"`
	Shifts           *[]json.RawMessage `json:"shifts"`
}

// Unmarshal parses the canonical JSON form, validates its shape and
// normalizes the result.
func Unmarshal(data []byte) (*model.AppState, error) {
	var probe shape
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	switch {
	case len(probe.Calendars) == 0:
		return nil, errors.New("state has no calendars")
	case strings.TrimSpace(probe.ActiveCalendarID) == "":
		return nil, errors.New("state has no active calendar")
	case probe.Shifts == nil:
		return nil, errors.New("state has no shift list")
	}

	var st model.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	st.Normalize()
	return &st, nil
}
