// Package csvsource reads earthquake triples from CSV files.
//
// Each row is "magnitude,location,date". The date column may hold a
// "yyyy-MM-dd HH:mm:ss" string, epoch milliseconds, or an RFC 3339 instant.
// A leading header row is skipped when its first field is not a number.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-report-service/internal/domain"
)

// ReadFile reads all rows of the CSV file at path. "-" reads stdin.
func ReadFile(path string) ([]domain.QuakeMessage, error) {
	if path == "-" {
		return Read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses every row from r into a QuakeMessage.
func Read(r io.Reader) ([]domain.QuakeMessage, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var msgs []domain.QuakeMessage
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		mag, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid magnitude %q", line, row[0])
		}
		// NaN and Inf parse but cannot be encoded as JSON.
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			return nil, fmt.Errorf("line %d: invalid magnitude %q", line, row[0])
		}
		msgs = append(msgs, toMessage(mag, row[1], row[2]))
	}
}

func toMessage(mag float64, location, date string) domain.QuakeMessage {
	msg := domain.QuakeMessage{Magnitude: mag, Location: location}
	date = strings.TrimSpace(date)
	if millis, err := strconv.ParseInt(date, 10, 64); err == nil {
		msg.Timestamp = &millis
		return msg
	}
	if at, err := time.Parse(time.RFC3339, date); err == nil {
		msg.Time = &at
		return msg
	}
	msg.Date = date
	return msg
}
