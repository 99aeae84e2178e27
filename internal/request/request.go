// Package request loads and validates the birth record and query that drive
// one report run. Input files may be JSON, TOML or YAML.
package request

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Birth is the birth record as supplied by the caller.
type Birth struct {
	Calendar    string `json:"calendar" toml:"calendar" yaml:"calendar"`
	Date        string `json:"date" toml:"date" yaml:"date"`
	TimeIndex   any    `json:"timeIndex" toml:"timeIndex" yaml:"timeIndex"`
	Gender      string `json:"gender" toml:"gender" yaml:"gender"`
	Birthplace  string `json:"birthplace" toml:"birthplace" yaml:"birthplace"`
	Confirmed   bool   `json:"confirmed" toml:"confirmed" yaml:"confirmed"`
	Language    string `json:"language,omitempty" toml:"language" yaml:"language"`
	FixLeap     *bool  `json:"fixLeap,omitempty" toml:"fixLeap" yaml:"fixLeap"`
	IsLeapMonth *bool  `json:"isLeapMonth,omitempty" toml:"isLeapMonth" yaml:"isLeapMonth"`
}

// Debug holds diagnostic switches.
type Debug struct {
	IncludeIndexMapping bool `json:"includeIndexMapping" toml:"includeIndexMapping" yaml:"includeIndexMapping"`
}

// Query selects the dates to correlate.
type Query struct {
	Timezone    string   `json:"timezone,omitempty" toml:"timezone" yaml:"timezone"`
	BaseDate    string   `json:"baseDate,omitempty" toml:"baseDate" yaml:"baseDate"`
	FutureDates []string `json:"futureDates,omitempty" toml:"futureDates" yaml:"futureDates"`
	Debug       Debug    `json:"debug" toml:"debug" yaml:"debug"`
}

// Input is the document read from an input file.
type Input struct {
	Birth Birth `json:"birth" toml:"birth" yaml:"birth"`
	Query Query `json:"query" toml:"query" yaml:"query"`
}

// Format identifies an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf infers the encoding from a file extension. Unknown extensions
// are read as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and decodes the input file at path.
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("request: read %s: %w", path, err)
	}
	in, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("request: %s: %w", path, err)
	}
	return in, nil
}

// Parse decodes input data in the given format.
func Parse(data []byte, format Format) (*Input, error) {
	var in Input
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &in)
	case FormatYAML:
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s input: %w", format, err)
	}
	return &in, nil
}
