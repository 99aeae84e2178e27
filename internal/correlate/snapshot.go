package correlate

import (
	"github.com/papapumpkin/ziwei/internal/chart"
	"github.com/papapumpkin/ziwei/internal/sanitize"
)

// Options controls snapshot assembly.
type Options struct {
	// IncludeIndexMapping adds the fixed-position view next to the role view.
	IncludeIndexMapping bool
	// Vocabulary defaults to English when its label table is empty.
	Vocabulary Vocabulary
	// Sanitize copies raw scope data into a JSON-safe tree. Defaults to
	// sanitize.Clean.
	Sanitize func(any) any
}

func (o Options) vocabulary() Vocabulary {
	if len(o.Vocabulary.MutagenLabels) == 0 {
		return English()
	}
	return o.Vocabulary
}

func (o Options) sanitizer() func(any) any {
	if o.Sanitize == nil {
		return sanitize.Clean
	}
	return o.Sanitize
}

// Snapshot is the correlated view of a natal chart at one target date.
// The scope fields hold sanitized copies of the engine's raw scopes.
type Snapshot struct {
	TargetSolarDate string         `json:"targetSolarDate"`
	TargetLunarDate *string        `json:"targetLunarDate"`
	Age             any            `json:"age"`
	Decadal         any            `json:"decadal"`
	Yearly          any            `json:"yearly"`
	Monthly         any            `json:"monthly"`
	Daily           any            `json:"daily"`
	Hourly          any            `json:"hourly"`
	Palaces         []PalaceReport `json:"palaces"`
}

// AssembleSnapshot correlates the natal chart with the horoscope bundle
// computed for targetDate. It is stateless and safe to call concurrently
// with a shared natal chart.
func AssembleSnapshot(natal *chart.Natal, h *chart.Horoscope, targetDate string, opts Options) Snapshot {
	clean := opts.sanitizer()
	raw := func(kind chart.ScopeKind) any {
		v := h.RawScope(kind)
		if v == nil {
			return nil
		}
		return clean(v)
	}

	var lunar *string
	if h != nil {
		lunar = nullable(h.LunarDate)
	}

	return Snapshot{
		TargetSolarDate: targetDate,
		TargetLunarDate: lunar,
		Age:             raw(chart.ScopeAge),
		Decadal:         raw(chart.ScopeDecadal),
		Yearly:          raw(chart.ScopeYearly),
		Monthly:         raw(chart.ScopeMonthly),
		Daily:           raw(chart.ScopeDaily),
		Hourly:          raw(chart.ScopeHourly),
		Palaces:         AssemblePalaceReports(natal, h, opts),
	}
}
