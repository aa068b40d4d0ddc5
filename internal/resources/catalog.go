// Package resources is the string and palette lookup service used by the
// display formatter.
package resources

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/couchcryptid/quake-report-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultNearThe is the offset shown for locations without a delimiter.
const DefaultNearThe = "Near the"

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// defaultPalette holds the magnitude colors keyed by resource name.
var defaultPalette = map[string]string{
	"magnitude1":      "#4A7BA7",
	"magnitude2":      "#04B4B3",
	"magnitude3":      "#10CAC9",
	"magnitude4":      "#F5A623",
	"magnitude5":      "#FF7D50",
	"magnitude6":      "#FC6644",
	"magnitude7":      "#E75F40",
	"magnitude8":      "#E13A20",
	"magnitude9":      "#D93218",
	"magnitude10plus": "#C03823",
}

// Catalog implements domain.Resources. It is read-only after construction.
type Catalog struct {
	nearThe string
	palette map[string]string
}

// fileFormat is the on-disk shape of a resources file:
//
//	near_the: "Cerca de"
//	palette:
//	  magnitude6: "#FC6644"
type fileFormat struct {
	NearThe string            `yaml:"near_the"`
	Palette map[string]string `yaml:"palette"`
}

// Default returns the built-in English catalog.
func Default() *Catalog {
	palette := make(map[string]string, len(defaultPalette))
	for k, v := range defaultPalette {
		palette[k] = v
	}
	return &Catalog{nearThe: DefaultNearThe, palette: palette}
}

// Load reads overrides from a YAML file on top of the built-in catalog. An
// empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML overrides to the built-in catalog.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}

	c := Default()
	if f.NearThe != "" {
		c.nearThe = f.NearThe
	}
	for name, color := range f.Palette {
		if _, ok := defaultPalette[name]; !ok {
			return nil, fmt.Errorf("unknown palette entry %q", name)
		}
		if !colorRe.MatchString(color) {
			return nil, fmt.Errorf("palette entry %q: invalid color %q (want #RRGGBB)", name, color)
		}
		c.palette[name] = color
	}
	return c, nil
}

// NearThe returns the offset shown for locations without a delimiter.
func (c *Catalog) NearThe() string { return c.nearThe }

// MagnitudeColor returns the palette value for a bucket. Buckets 0 and 1
// share magnitude1.
func (c *Catalog) MagnitudeColor(b domain.MagnitudeBucket) string {
	return c.palette[paletteName(b)]
}

func paletteName(b domain.MagnitudeBucket) string {
	switch {
	case b <= 1:
		return "magnitude1"
	case b >= domain.Bucket10Plus:
		return "magnitude10plus"
	default:
		return "magnitude" + strconv.Itoa(int(b))
	}
}
