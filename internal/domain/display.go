package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// LocationDelimiter separates a directional offset from the place name,
	// e.g. "5km NW of Springfield".
	LocationDelimiter = "of "

	// DisplayDateLayout renders the date line of a row, e.g. "Jan 2, 2016".
	DisplayDateLayout = "Jan 2, 2006"

	// DisplayTimeLayout renders the time line of a row, e.g. "03:04".
	DisplayTimeLayout = "15:04"
)

// MagnitudeBucket selects a palette color for a magnitude. Valid buckets are
// 0 through 10; 10 covers every magnitude at or above ten.
type MagnitudeBucket int

const (
	LowestBucket MagnitudeBucket = 0
	Bucket10Plus MagnitudeBucket = 10
)

// String returns the palette suffix for the bucket: "0".."9" or "10plus".
func (b MagnitudeBucket) String() string {
	if b >= Bucket10Plus {
		return "10plus"
	}
	return strconv.Itoa(int(b))
}

// MarshalText encodes the bucket by its palette suffix.
func (b MagnitudeBucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a palette suffix produced by MarshalText.
func (b *MagnitudeBucket) UnmarshalText(text []byte) error {
	parsed, err := ParseMagnitudeBucket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseMagnitudeBucket reverses MagnitudeBucket.String.
func ParseMagnitudeBucket(s string) (MagnitudeBucket, error) {
	if s == "10plus" {
		return Bucket10Plus, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(LowestBucket) || n >= int(Bucket10Plus) {
		return 0, fmt.Errorf("invalid magnitude bucket %q", s)
	}
	return MagnitudeBucket(n), nil
}

// Resources supplies the localized strings and palette values the formatter
// cannot derive on its own.
type Resources interface {
	// NearThe is the offset shown when a location has no delimiter.
	NearThe() string

	// MagnitudeColor returns the palette value for a bucket, e.g. "#FC6644".
	MagnitudeColor(b MagnitudeBucket) string
}

// DisplayFields holds everything a list row shows for one report.
type DisplayFields struct {
	Magnitude       string          `json:"magnitude"`
	PrimaryLocation string          `json:"primary_location"`
	LocationOffset  string          `json:"location_offset"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Bucket          MagnitudeBucket `json:"magnitude_bucket"`
	Color           string          `json:"magnitude_color"`
}

// Formatter derives display fields from reports. It holds no mutable state
// and is safe for concurrent use.
type Formatter struct {
	res Resources
	tz  *time.Location
}

// NewFormatter creates a Formatter rendering dates in tz. A nil tz means UTC.
func NewFormatter(res Resources, tz *time.Location) *Formatter {
	if tz == nil {
		tz = time.UTC
	}
	return &Formatter{res: res, tz: tz}
}

// Format derives the display fields for a single report.
func (f *Formatter) Format(eq Earthquake) DisplayFields {
	offset, primary := SplitLocation(eq.Location(), f.res.NearThe())
	bucket := BucketFor(eq.Magnitude())

	out := DisplayFields{
		Magnitude:       FormatMagnitude(eq.Magnitude()),
		PrimaryLocation: primary,
		LocationOffset:  offset,
		Bucket:          bucket,
		Color:           f.res.MagnitudeColor(bucket),
	}
	if eq.HasTime() {
		local := eq.Time().In(f.tz)
		out.Date = local.Format(DisplayDateLayout)
		out.Time = local.Format(DisplayTimeLayout)
	}
	return out
}

// FormatMagnitude renders a magnitude with exactly one decimal digit.
func FormatMagnitude(magnitude float64) string {
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return "0.0"
	}
	return strconv.FormatFloat(magnitude, 'f', 1, 64)
}

// BucketFor maps a magnitude to its color bucket: floor(magnitude) clamped to
// [0, 10]. Negative and NaN magnitudes land in the lowest bucket.
func BucketFor(magnitude float64) MagnitudeBucket {
	if math.IsNaN(magnitude) || magnitude < 0 {
		return LowestBucket
	}
	if magnitude >= float64(Bucket10Plus) {
		return Bucket10Plus
	}
	return MagnitudeBucket(math.Floor(magnitude))
}

// SplitLocation separates a location into its offset and primary place name.
// The location is cut at the first LocationDelimiter; the offset keeps the
// delimiter and only the outer ends of the two parts are trimmed. Without a
// delimiter the offset is fallback and the primary is location unchanged.
func SplitLocation(location, fallback string) (offset, primary string) {
	before, after, found := strings.Cut(location, LocationDelimiter)
	if !found {
		return fallback, location
	}
	return strings.TrimLeftFunc(before, unicode.IsSpace) + LocationDelimiter,
		strings.TrimRightFunc(after, unicode.IsSpace)
}
