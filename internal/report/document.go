package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/papapumpkin/ziwei/internal/correlate"
	"github.com/papapumpkin/ziwei/internal/sanitize"
)

// Disclaimer is attached to every document.
const Disclaimer = "For cultural study and entertainment reference only. No true-solar-time correction is applied by default."

// Mapping modes listed in the output policy.
const (
	ModeByRole  = "by_role"
	ModeByIndex = "by_index"
)

// Document is the complete output of one run.
type Document struct {
	RunID           string               `json:"runId"`
	GeneratedAt     string               `json:"generatedAt"`
	NormalizedInput NormalizedInput      `json:"normalizedInput"`
	OutputPolicy    OutputPolicy         `json:"outputPolicy"`
	Natal           any                  `json:"natal"`
	Current         any                  `json:"current"`
	Future          []FutureEntry        `json:"future"`
	CurrentDetailed correlate.Snapshot   `json:"currentDetailed"`
	FutureDetailed  []correlate.Snapshot `json:"futureDetailed"`
	FutureFailures  []FutureFailure      `json:"futureFailures,omitempty"`
}

// NormalizedInput echoes the validated request.
type NormalizedInput struct {
	Calendar       string  `json:"calendar"`
	BirthDate      string  `json:"birthDate"`
	TimeIndex      int     `json:"timeIndex"`
	Gender         string  `json:"gender"`
	Birthplace     string  `json:"birthplace"`
	BirthConfirmed bool    `json:"birthConfirmed"`
	Timezone       string  `json:"timezone"`
	BaseDateSolar  string  `json:"baseDateSolar"`
	BaseDateLunar  *string `json:"baseDateLunar"`
}

// OutputPolicy describes how the document was produced.
type OutputPolicy struct {
	DetailLevel          string   `json:"detailLevel"`
	MappingModes         []string `json:"mappingModes"`
	IncludeIndexMapping  bool     `json:"includeIndexMapping"`
	RequiredConfirmation bool     `json:"requiredConfirmation"`
	Disclaimer           string   `json:"disclaimer"`
}

// FutureEntry is the sanitized raw bundle for one future date.
type FutureEntry struct {
	TargetSolarDate string `json:"targetSolarDate"`
	Snapshot        any    `json:"snapshot"`
}

// FutureFailure records a future date whose snapshot could not be built.
// Only the isolate policy produces these.
type FutureFailure struct {
	TargetSolarDate string `json:"targetSolarDate"`
	Error           string `json:"error"`
}

func newOutputPolicy(includeIndexMapping bool) OutputPolicy {
	modes := []string{ModeByRole}
	if includeIndexMapping {
		modes = append(modes, ModeByIndex)
	}
	return OutputPolicy{
		DetailLevel:          "full",
		MappingModes:         modes,
		IncludeIndexMapping:  includeIndexMapping,
		RequiredConfirmation: true,
		Disclaimer:           Disclaimer,
	}
}

// Encode sanitizes the whole document and writes it as JSON. Pretty output
// is indented by two spaces.
func Encode(w io.Writer, doc *Document, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(sanitize.Clean(doc)); err != nil {
		return fmt.Errorf("report: encode document: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(doc *Document, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, pretty); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
