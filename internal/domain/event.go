package domain

import (
	"context"
	"time"
)

// QuakeMessage is the flat JSON published to the source topic by the
// collector. Exactly one of Time, Timestamp or Date is expected; when several
// are present the first non-empty one in that order wins.
type QuakeMessage struct {
	Magnitude float64    `json:"magnitude"`
	Location  string     `json:"location"`
	Time      *time.Time `json:"time,omitempty"`      // already-parsed instant (RFC 3339)
	Timestamp *int64     `json:"timestamp,omitempty"` // epoch milliseconds
	Date      string     `json:"date,omitempty"`      // "yyyy-MM-dd HH:mm:ss"
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// DisplayRow is the serialized form destined for the sink topic: the report
// as received plus the fields a list row renders.
type DisplayRow struct {
	ID          string        `json:"id"`
	Magnitude   float64       `json:"magnitude"`
	Location    string        `json:"location"`
	OccurredAt  *time.Time    `json:"occurred_at,omitempty"`
	Display     DisplayFields `json:"display"`
	FormattedAt time.Time     `json:"formatted_at"`
}
