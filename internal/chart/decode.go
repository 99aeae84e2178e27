package chart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedChart indicates engine output that lacks the documented
// top-level structure.
var ErrMalformedChart = errors.New("malformed chart data")

// DecodeNatal parses an engine natal document. A document without a
// palaces list is rejected; individual palaces are taken as given.
func DecodeNatal(data []byte) (*Natal, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chart: decode natal: %w", err)
	}
	if _, ok := raw["palaces"].([]any); !ok {
		return nil, fmt.Errorf("chart: decode natal: %w: missing palaces", ErrMalformedChart)
	}

	var n Natal
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("chart: decode natal: %w", err)
	}
	n.Raw = raw
	return &n, nil
}

// DecodeHoroscope parses an engine horoscope bundle. Only a document that is
// not a JSON object is rejected. Scope members of the wrong type decode to
// their zero value (element by element for lists) so accessors see empty
// data, while Raw keeps the bundle exactly as the engine sent it.
func DecodeHoroscope(data []byte) (*Horoscope, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chart: decode horoscope: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("chart: decode horoscope: %w: empty document", ErrMalformedChart)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("chart: decode horoscope: %w", err)
	}

	h := &Horoscope{
		SolarDate: lenient[string](fields["solarDate"]),
		LunarDate: lenient[string](fields["lunarDate"]),
		Decadal:   decodeScope(fields[string(ScopeDecadal)]),
		Age:       decodeScope(fields[string(ScopeAge)]),
		Yearly:    decodeScope(fields[string(ScopeYearly)]),
		Monthly:   decodeScope(fields[string(ScopeMonthly)]),
		Daily:     decodeScope(fields[string(ScopeDaily)]),
		Hourly:    decodeScope(fields[string(ScopeHourly)]),
		Raw:       raw,
	}
	return h, nil
}

// decodeScope returns nil unless data is a JSON object.
func decodeScope(data json.RawMessage) *Scope {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}
	s := &Scope{
		Index:         lenient[int](fields["index"]),
		Name:          lenient[string](fields["name"]),
		HeavenlyStem:  lenient[string](fields["heavenlyStem"]),
		EarthlyBranch: lenient[string](fields["earthlyBranch"]),
		PalaceNames:   lenientList(fields["palaceNames"], lenient[string]),
		Mutagen:       lenientList(fields["mutagen"], lenient[string]),
		Stars:         lenientList(fields["stars"], decodeStars),
		NominalAge:    lenient[int](fields["nominalAge"]),
	}
	var dec map[string]json.RawMessage
	if err := json.Unmarshal(fields["yearlyDecStar"], &dec); err == nil && dec != nil {
		s.YearlyDecStar = &YearlyDecStar{
			Suiqian12:   lenientList(dec["suiqian12"], lenient[string]),
			Jiangqian12: lenientList(dec["jiangqian12"], lenient[string]),
		}
	}
	return s
}

// decodeStars decodes one position's star list, dropping entries that are not
// star objects.
func decodeStars(data json.RawMessage) []Star {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	stars := make([]Star, 0, len(items))
	for _, item := range items {
		var star Star
		if err := json.Unmarshal(item, &star); err != nil {
			continue
		}
		stars = append(stars, star)
	}
	return stars
}

// lenient decodes data into a T, or returns the zero T when data is absent or
// of another type.
func lenient[T any](data json.RawMessage) T {
	var v T
	if len(data) == 0 {
		return v
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// lenientList decodes a JSON array element by element, keeping positions. It
// returns nil when data is not an array.
func lenientList[T any](data json.RawMessage, elem func(json.RawMessage) T) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = elem(item)
	}
	return out
}
