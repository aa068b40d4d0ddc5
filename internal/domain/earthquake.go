package domain

import (
	"log/slog"
	"strings"
	"time"
)

// DateLayout is the layout of formatted date strings accepted by
// [NewEarthquakeFromDate].
const DateLayout = "2006-01-02 15:04:05"

// Earthquake is a single report. It is immutable after construction.
type Earthquake struct {
	magnitude float64
	location  string
	at        time.Time
}

// Option configures how [NewEarthquakeFromDate] interprets its input.
type Option func(*parseOptions)

type parseOptions struct {
	tz     *time.Location
	logger *slog.Logger
}

// WithTimeZone sets the zone date strings are interpreted in. Defaults to UTC.
func WithTimeZone(tz *time.Location) Option {
	return func(o *parseOptions) {
		if tz != nil {
			o.tz = tz
		}
	}
}

// WithLogger sets the logger that receives parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *parseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEarthquake builds a report from an already-parsed instant.
func NewEarthquake(magnitude float64, location string, at time.Time) Earthquake {
	return Earthquake{magnitude: magnitude, location: location, at: at}
}

// NewEarthquakeFromDate builds a report from a "yyyy-MM-dd HH:mm:ss" string.
// When the string does not parse the instant stays unset and a warning is
// logged; the record is still returned.
func NewEarthquakeFromDate(magnitude float64, location, date string, opts ...Option) Earthquake {
	o := parseOptions{tz: time.UTC, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	eq := Earthquake{magnitude: magnitude, location: location}
	at, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), o.tz)
	if err != nil {
		o.logger.Warn("cannot parse earthquake date",
			"date", date,
			"location", location,
			"error", err,
		)
		return eq
	}
	eq.at = at
	return eq
}

// NewEarthquakeFromTimestamp builds a report from epoch milliseconds.
func NewEarthquakeFromTimestamp(magnitude float64, location string, millis int64) Earthquake {
	return Earthquake{magnitude: magnitude, location: location, at: time.UnixMilli(millis).UTC()}
}

// Magnitude returns the reported magnitude.
func (e Earthquake) Magnitude() float64 { return e.magnitude }

// Location returns the location text as received.
func (e Earthquake) Location() string { return e.location }

// Time returns the occurrence instant, or the zero time when it is unset.
func (e Earthquake) Time() time.Time { return e.at }

// HasTime reports whether the occurrence instant is set.
func (e Earthquake) HasTime() bool { return !e.at.IsZero() }
