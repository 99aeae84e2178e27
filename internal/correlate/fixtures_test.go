package correlate

import (
	"fmt"

	"github.com/papapumpkin/ziwei/internal/chart"
)

var roleNames = []string{
	"Life", "Siblings", "Spouse", "Children", "Wealth", "Health",
	"Travel", "Friends", "Career", "Property", "Fortune", "Parents",
}

// testNatal returns a 12-palace chart with role names in fixed-position
// order. Palace "Life" holds major star StarA with natal mutagen Ji.
func testNatal() *chart.Natal {
	palaces := make([]chart.Palace, len(roleNames))
	for i, name := range roleNames {
		palaces[i] = chart.Palace{
			Index:         i,
			Name:          name,
			HeavenlyStem:  "S" + fmt.Sprint(i),
			EarthlyBranch: "B" + fmt.Sprint(i),
			MinorStars:    []chart.Star{{Name: fmt.Sprintf("minor%d", i), Type: "soft"}},
			Decadal:       &chart.Decadal{Range: []int{2 + 10*i, 11 + 10*i}, HeavenlyStem: "甲", EarthlyBranch: "子"},
			Ages:          []int{i + 1, i + 13},
		}
	}
	palaces[0].MajorStars = []chart.Star{{Name: "StarA", Type: "major", Scope: "origin", Brightness: "庙", Mutagen: "Ji"}}
	palaces[0].IsBodyPalace = true
	return &chart.Natal{Palaces: palaces}
}

// rotatedScope returns a scope whose role at position i is
// roleNames[(i+shift)%12] and whose stars at position i are named
// "<prefix><i>".
func rotatedScope(shift int, prefix string) *chart.Scope {
	s := &chart.Scope{
		PalaceNames: make([]string, len(roleNames)),
		Stars:       make([][]chart.Star, len(roleNames)),
	}
	for i := range roleNames {
		s.PalaceNames[i] = roleNames[(i+shift)%len(roleNames)]
		s.Stars[i] = []chart.Star{{Name: fmt.Sprintf("%s%d", prefix, i), Scope: "yearly"}}
	}
	return s
}

// positionOf returns the position a rotated scope assigns to role.
func positionOf(shift int, role string) int {
	for i := range roleNames {
		if roleNames[(i+shift)%len(roleNames)] == role {
			return i
		}
	}
	return -1
}

// testHoroscope returns a bundle whose yearly scope is rotated by three and
// carries mutagen ["StarA", "", "StarB", "StarC"], with StarC placed at the
// position holding role Life. The decadal scope is unrotated.
func testHoroscope() *chart.Horoscope {
	yearly := rotatedScope(3, "Y")
	yearly.Mutagen = []string{"StarA", "", "StarB", "StarC"}
	life := positionOf(3, "Life")
	yearly.Stars[life] = append(yearly.Stars[life], chart.Star{Name: "StarC"})
	yearly.YearlyDecStar = &chart.YearlyDecStar{
		Suiqian12:   make([]string, len(roleNames)),
		Jiangqian12: make([]string, len(roleNames)),
	}
	for i := range roleNames {
		yearly.YearlyDecStar.Suiqian12[i] = fmt.Sprintf("sui%d", i)
		yearly.YearlyDecStar.Jiangqian12[i] = fmt.Sprintf("jiang%d", i)
	}

	decadal := rotatedScope(0, "D")

	return &chart.Horoscope{
		LunarDate: "二〇二五年三月初三",
		Decadal:   decadal,
		Yearly:    yearly,
		Raw: map[string]any{
			"lunarDate": "二〇二五年三月初三",
			"decadal":   map[string]any{"name": "大限", "palaceNames": []any{"Life"}},
			"yearly":    map[string]any{"name": "流年", "mutagen": []any{"StarA", nil, "StarB", "StarC"}},
		},
	}
}

func starNames(stars []AnnotatedStar) []string {
	names := make([]string, len(stars))
	for i, s := range stars {
		names[i] = s.Name
	}
	return names
}

func findStar(stars []AnnotatedStar, name string) (AnnotatedStar, bool) {
	for _, s := range stars {
		if s.Name == name {
			return s, true
		}
	}
	return AnnotatedStar{}, false
}
