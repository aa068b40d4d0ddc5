// Command genmock reads an earthquake CSV file and generates fixtures for the
// formatter test suites: the raw source messages as they appear on the input
// topic, and the display rows the service is expected to publish for them.
// It runs the real domain formatter so the expected output always matches
// pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv testdata/quakes.csv \
//	  -source-out data/mock/quakes_source.json \
//	  -rows-out data/mock/quakes_display_rows.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/quake-report-service/internal/config"
	"github.com/couchcryptid/quake-report-service/internal/csvsource"
	"github.com/couchcryptid/quake-report-service/internal/domain"
	"github.com/couchcryptid/quake-report-service/internal/resources"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "earthquake CSV file (magnitude,location,date)")
	sourceOut := flag.String("source-out", "", "output path for the raw source message fixture")
	rowsOut := flag.String("rows-out", "", "output path for the expected display row fixture")
	tzName := flag.String("timezone", "UTC", "display time zone")
	resourcesFile := flag.String("resources", "", "optional YAML resource catalog")
	flag.Parse()

	if *csvPath == "" || *sourceOut == "" || *rowsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -source-out, -rows-out")
	}

	tz, err := config.ParseTimeZone(*tzName)
	if err != nil {
		return err
	}
	catalog, err := resources.Load(*resourcesFile)
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible FormattedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	msgs, err := csvsource.ReadFile(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d records", len(msgs))

	formatter := domain.NewFormatter(catalog, tz)
	rows := make([]domain.DisplayRow, 0, len(msgs))
	for _, m := range msgs {
		eq := m.Earthquake(domain.WithTimeZone(tz))
		rows = append(rows, domain.NewDisplayRow(eq, formatter.Format(eq)))
	}

	if err := writeJSON(*sourceOut, msgs); err != nil {
		return fmt.Errorf("writing source fixture: %w", err)
	}
	log.Printf("wrote source fixture: %s", *sourceOut)

	if err := writeJSON(*rowsOut, rows); err != nil {
		return fmt.Errorf("writing display row fixture: %w", err)
	}
	log.Printf("wrote display row fixture: %s", *rowsOut)

	printStats(rows)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type bucketCount struct {
	bucket domain.MagnitudeBucket
	count  int
}

// printStats summarizes the fixture so test assertions can be updated.
func printStats(rows []domain.DisplayRow) {
	counts := map[domain.MagnitudeBucket]int{}
	undated := 0
	for i := range rows {
		counts[rows[i].Display.Bucket]++
		if rows[i].OccurredAt == nil {
			undated++
		}
	}

	bc := make([]bucketCount, 0, len(counts))
	for b, c := range counts {
		bc = append(bc, bucketCount{b, c})
	}
	sort.Slice(bc, func(i, j int) bool { return bc[i].bucket < bc[j].bucket })

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(rows))
	fmt.Printf("Without date: %d\n", undated)
	fmt.Print("By bucket:")
	for _, b := range bc {
		fmt.Printf(" %s=%d", b.bucket, b.count)
	}
	fmt.Println()
}
