package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

var rowClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the clock that stamps FormattedAt. nil restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	rowClock = c
}

// ParseRawEvent decodes a RawEvent's value into an Earthquake, choosing the
// constructor that matches the date form present in the message. A malformed
// date string is not an error: the instant is left unset and logged.
func ParseRawEvent(raw RawEvent, opts ...Option) (Earthquake, error) {
	msg, err := DecodeQuakeMessage(raw)
	if err != nil {
		return Earthquake{}, err
	}
	return msg.Earthquake(opts...), nil
}

// DecodeQuakeMessage deserializes a RawEvent's value into a QuakeMessage.
func DecodeQuakeMessage(raw RawEvent) (QuakeMessage, error) {
	var msg QuakeMessage
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return QuakeMessage{}, fmt.Errorf("parse raw event: %w", err)
	}
	return msg, nil
}

// UsesDateString reports whether Earthquake will build the report from the
// formatted Date string rather than an instant or timestamp.
func (m QuakeMessage) UsesDateString() bool {
	return (m.Time == nil || m.Time.IsZero()) && m.Timestamp == nil && strings.TrimSpace(m.Date) != ""
}

// Earthquake builds the report described by the message.
func (m QuakeMessage) Earthquake(opts ...Option) Earthquake {
	switch {
	case m.Time != nil && !m.Time.IsZero():
		return NewEarthquake(m.Magnitude, m.Location, *m.Time)
	case m.Timestamp != nil:
		return NewEarthquakeFromTimestamp(m.Magnitude, m.Location, *m.Timestamp)
	case m.UsesDateString():
		return NewEarthquakeFromDate(m.Magnitude, m.Location, m.Date, opts...)
	default:
		return NewEarthquake(m.Magnitude, m.Location, time.Time{})
	}
}

// NewDisplayRow pairs a report with its formatted fields and stamps it.
func NewDisplayRow(eq Earthquake, fields DisplayFields) DisplayRow {
	row := DisplayRow{
		ID:          generateID(eq),
		Magnitude:   eq.Magnitude(),
		Location:    eq.Location(),
		Display:     fields,
		FormattedAt: rowClock.Now().UTC(),
	}
	if eq.HasTime() {
		at := eq.Time().UTC()
		row.OccurredAt = &at
	}
	return row
}

// generateID produces a deterministic ID from the report's key fields so
// replays of the same report publish under the same key.
func generateID(eq Earthquake) string {
	instant := ""
	if eq.HasTime() {
		instant = eq.Time().UTC().Format(time.RFC3339Nano)
	}
	input := fmt.Sprintf("%g|%s|%s", eq.Magnitude(), strings.TrimSpace(eq.Location()), instant)
	hash := sha256.Sum256([]byte(input))
	return "quake-" + hex.EncodeToString(hash[:8])
}
