// Package correlate joins a natal chart with one horoscope bundle. It builds
// star-name → mutagen tag indexes for every scope, resolves each natal palace
// in every scope both by role name and by fixed position, and assembles the
// per-palace report and the per-date snapshot.
//
// Everything in this package is a pure function of its inputs: source records
// are never modified and every derived map is allocated per call, so
// snapshots for different dates can be assembled concurrently.
package correlate

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/ziwei/internal/chart"
)

// Vocabulary fixes the strings used to build tags and display labels.
type Vocabulary struct {
	// MutagenLabels is the label table in [Lu, Quan, Ke, Ji] order.
	MutagenLabels []string
	NatalPrefix   string
	ScopePrefixes map[chart.ScopeKind]string
	PalaceSuffix  string
	BodyMarker    string
}

// English returns the transliterated labels, e.g. "natal-Ji" or "yearly-Lu".
func English() Vocabulary {
	return Vocabulary{
		MutagenLabels: []string{"Lu", "Quan", "Ke", "Ji"},
		NatalPrefix:   "natal-",
		ScopePrefixes: map[chart.ScopeKind]string{
			chart.ScopeDecadal: "decadal-",
			chart.ScopeAge:     "age-",
			chart.ScopeYearly:  "yearly-",
			chart.ScopeMonthly: "monthly-",
			chart.ScopeDaily:   "daily-",
			chart.ScopeHourly:  "hourly-",
		},
		PalaceSuffix: " palace",
		BodyMarker:   " (body)",
	}
}

// Chinese returns the customary labels, e.g. "本命忌" or "流年禄".
func Chinese() Vocabulary {
	return Vocabulary{
		MutagenLabels: []string{"禄", "权", "科", "忌"},
		NatalPrefix:   "本命",
		ScopePrefixes: map[chart.ScopeKind]string{
			chart.ScopeDecadal: "大限",
			chart.ScopeAge:     "小限",
			chart.ScopeYearly:  "流年",
			chart.ScopeMonthly: "流月",
			chart.ScopeDaily:   "流日",
			chart.ScopeHourly:  "流时",
		},
		PalaceSuffix: "宫",
		BodyMarker:   "-身宫",
	}
}

// VocabularyFor returns the vocabulary for a tag language code ("en", "zh").
func VocabularyFor(lang string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "en-us":
		return English(), nil
	case "zh", "zh-cn":
		return Chinese(), nil
	}
	return Vocabulary{}, fmt.Errorf("correlate: unknown tag language %q", lang)
}

// palaceAliases maps the two role names that have a customary alternate label.
var palaceAliases = map[string]string{
	"官禄": "事业",
	"仆役": "交友",
}

// PalaceAlias returns the alternate display label for a role name, or nil.
func PalaceAlias(name string) *string {
	alias, ok := palaceAliases[name]
	if !ok {
		return nil
	}
	return &alias
}

// displayName renders the palace label shown to readers.
func (v Vocabulary) displayName(name string, alias *string, body bool) string {
	label := name
	if alias != nil {
		label = *alias
	}
	if v.PalaceSuffix != "" && !strings.HasSuffix(label, strings.TrimSpace(v.PalaceSuffix)) {
		label += v.PalaceSuffix
	}
	if body {
		label += v.BodyMarker
	}
	return label
}
