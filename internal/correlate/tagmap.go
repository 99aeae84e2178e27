package correlate

import (
	"strconv"

	"github.com/papapumpkin/ziwei/internal/chart"
)

// TagMap indexes star names to the tags they carry. Tag order is insertion
// order; duplicates are kept.
type TagMap map[string][]string

// BuildMutagenTagMap indexes a scope's mutagen list. Entry k names the star
// carrying labels[k]; past the end of the label table the label is k itself.
// Empty entries are skipped.
func BuildMutagenTagMap(mutagen []string, prefix string, labels []string) TagMap {
	m := make(TagMap)
	for k, name := range mutagen {
		if name == "" {
			continue
		}
		label := strconv.Itoa(k)
		if k < len(labels) {
			label = labels[k]
		}
		m[name] = append(m[name], prefix+label)
	}
	return m
}

// BuildNatalTagMap indexes the natal mutagens carried by major and minor
// stars. Adjective stars never carry one.
func BuildNatalTagMap(palaces []chart.Palace, prefix string) TagMap {
	m := make(TagMap)
	for _, p := range palaces {
		for _, stars := range [][]chart.Star{p.MajorStars, p.MinorStars} {
			for _, s := range stars {
				if s.Name == "" || s.Mutagen == "" {
					continue
				}
				m[s.Name] = append(m[s.Name], prefix+s.Mutagen)
			}
		}
	}
	return m
}

// TagMaps builds the full ordered set used to annotate one snapshot: natal
// first, then one map per scope in chart.ScopeKinds order. Absent scopes
// contribute an empty map.
func (v Vocabulary) TagMaps(natal *chart.Natal, h *chart.Horoscope) []TagMap {
	var palaces []chart.Palace
	if natal != nil {
		palaces = natal.Palaces
	}

	kinds := chart.ScopeKinds()
	maps := make([]TagMap, 0, 1+len(kinds))
	maps = append(maps, BuildNatalTagMap(palaces, v.NatalPrefix))
	for _, kind := range kinds {
		var mutagen []string
		if s := h.Scope(kind); s != nil {
			mutagen = s.Mutagen
		}
		maps = append(maps, BuildMutagenTagMap(mutagen, v.ScopePrefixes[kind], v.MutagenLabels))
	}
	return maps
}
