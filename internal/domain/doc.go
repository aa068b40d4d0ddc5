// Package domain models earthquake reports and derives the fields a list view
// needs to render them.
//
// # Data Source
//
// Each report is a triple of magnitude, free-text location and occurrence
// date. An upstream collector extracts the triples from a public feed and
// publishes them to the source topic as [QuakeMessage] JSON. This package
// never fetches or parses the feed itself.
//
// # Conventions
//
// Location format:
//
//	"<distance> <compass> of <place>"  →  e.g. "5km NW of Springfield"
//	Reports without a relative offset carry the place name alone
//	(e.g. "Pacific-Antarctic Ridge"); those render with the localized
//	"Near the" prefix supplied by [Resources].
//
// Date format:
//
//	"yyyy-MM-dd HH:mm:ss" (Go layout "2006-01-02 15:04:05"), epoch
//	milliseconds, or an already-parsed instant. Strings are interpreted in
//	the display time zone. A string that does not parse leaves the instant
//	unset and logs a warning; it never fails the record.
//
// Magnitude buckets:
//
//	floor(magnitude) clamped to [0, 10]. Negative and NaN magnitudes fall into
//	bucket 0; anything at or above 10 shares bucket 10 ("10plus"). Buckets 0
//	and 1 share the palette entry "magnitude1".
//
// # ID Generation
//
// Display row IDs are deterministic SHA-256 hashes of
// magnitude|location|instant so replays of the same report publish the same
// key. See [generateID].
package domain
