package correlate

import (
	"slices"

	"github.com/papapumpkin/ziwei/internal/chart"
)

// NatalStars holds the annotated natal star lists of one palace.
type NatalStars struct {
	MajorStars     []AnnotatedStar `json:"majorStars"`
	MinorStars     []AnnotatedStar `json:"minorStars"`
	AdjectiveStars []AnnotatedStar `json:"adjectiveStars"`
}

// FlowStars holds one annotated star list per horoscope scope. Lists are
// never nil; an absent scope yields an empty list.
type FlowStars struct {
	Decadal []AnnotatedStar `json:"decadal"`
	Age     []AnnotatedStar `json:"age"`
	Yearly  []AnnotatedStar `json:"yearly"`
	Monthly []AnnotatedStar `json:"monthly"`
	Daily   []AnnotatedStar `json:"daily"`
	Hourly  []AnnotatedStar `json:"hourly"`
}

// Get returns the list for one scope.
func (f *FlowStars) Get(kind chart.ScopeKind) []AnnotatedStar {
	if p := f.slot(kind); p != nil {
		return *p
	}
	return nil
}

func (f *FlowStars) set(kind chart.ScopeKind, stars []AnnotatedStar) {
	if p := f.slot(kind); p != nil {
		*p = stars
	}
}

func (f *FlowStars) slot(kind chart.ScopeKind) *[]AnnotatedStar {
	switch kind {
	case chart.ScopeDecadal:
		return &f.Decadal
	case chart.ScopeAge:
		return &f.Age
	case chart.ScopeYearly:
		return &f.Yearly
	case chart.ScopeMonthly:
		return &f.Monthly
	case chart.ScopeDaily:
		return &f.Daily
	case chart.ScopeHourly:
		return &f.Hourly
	}
	return nil
}

// clone deep-copies every list so the copy can be handed out independently.
func (f FlowStars) clone() FlowStars {
	var out FlowStars
	for _, kind := range chart.ScopeKinds() {
		src := f.Get(kind)
		dst := make([]AnnotatedStar, len(src))
		for i, s := range src {
			dst[i] = s.clone()
		}
		out.set(kind, dst)
	}
	return out
}

// FlowRoles holds, per scope, the role name found at a fixed position.
type FlowRoles struct {
	Decadal *string `json:"decadal"`
	Age     *string `json:"age"`
	Yearly  *string `json:"yearly"`
	Monthly *string `json:"monthly"`
	Daily   *string `json:"daily"`
	Hourly  *string `json:"hourly"`
}

func (r *FlowRoles) set(kind chart.ScopeKind, role *string) {
	switch kind {
	case chart.ScopeDecadal:
		r.Decadal = role
	case chart.ScopeAge:
		r.Age = role
	case chart.ScopeYearly:
		r.Yearly = role
	case chart.ScopeMonthly:
		r.Monthly = role
	case chart.ScopeDaily:
		r.Daily = role
	case chart.ScopeHourly:
		r.Hourly = role
	}
}

// DecorativeMarkers is the pair of yearly 12-cycle markers for one palace.
type DecorativeMarkers struct {
	Suiqian12   *string `json:"suiqian12"`
	Jiangqian12 *string `json:"jiangqian12"`
}

// PalaceReport is the assembled view of one natal palace for one date.
// The ByIndex fields are nil unless index mapping was requested.
type PalaceReport struct {
	PalaceIndex       int     `json:"palaceIndex"`
	PalaceName        string  `json:"palaceName"`
	PalaceAlias       *string `json:"palaceAlias"`
	PalaceDisplayName string  `json:"palaceDisplayName"`
	HeavenlyStem      string  `json:"heavenlyStem"`
	EarthlyBranch     string  `json:"earthlyBranch"`
	IsBodyPalace      bool    `json:"isBodyPalace"`
	IsOriginalPalace  bool    `json:"isOriginalPalace"`
	Changsheng12      *string `json:"changsheng12"`
	Boshi12           *string `json:"boshi12"`
	Jiangqian12       *string `json:"jiangqian12"`
	Suiqian12         *string `json:"suiqian12"`

	YearlyDecStar        DecorativeMarkers  `json:"yearlyDecStar"`
	YearlyDecStarByIndex *DecorativeMarkers `json:"yearlyDecStarByIndex"`

	Natal            NatalStars `json:"natal"`
	FlowStars        FlowStars  `json:"flowStars"`
	FlowStarsByRole  FlowStars  `json:"flowStarsByRole"`
	FlowStarsByIndex *FlowStars `json:"flowStarsByIndex"`
	FlowRoleAtIndex  *FlowRoles `json:"flowRoleAtIndex"`

	DecadalRange  []int   `json:"decadalRange"`
	DecadalGanZhi *string `json:"decadalGanZhi"`
	Ages          []int   `json:"ages"`
}

// correlation carries what is shared by all palaces of one snapshot. It is
// built per call and never outlives it.
type correlation struct {
	horoscope    *chart.Horoscope
	tagMaps      []TagMap
	yearlyIndex  map[string]int
	vocabulary   Vocabulary
	includeIndex bool
}

func newCorrelation(natal *chart.Natal, h *chart.Horoscope, opts Options) *correlation {
	return &correlation{
		horoscope:    h,
		tagMaps:      opts.vocabulary().TagMaps(natal, h),
		yearlyIndex:  roleIndex(h.Scope(chart.ScopeYearly)),
		vocabulary:   opts.vocabulary(),
		includeIndex: opts.IncludeIndexMapping,
	}
}

// AssemblePalaceReports builds one report per natal palace in fixed-position
// order. It never fails: missing scopes and unmatched roles degrade to empty
// lists and nulls.
func AssemblePalaceReports(natal *chart.Natal, h *chart.Horoscope, opts Options) []PalaceReport {
	if natal == nil {
		return []PalaceReport{}
	}
	c := newCorrelation(natal, h, opts)

	palaces := slices.Clone(natal.Palaces)
	slices.SortStableFunc(palaces, func(a, b chart.Palace) int { return a.Index - b.Index })

	reports := make([]PalaceReport, 0, len(palaces))
	for _, p := range palaces {
		reports = append(reports, c.palace(p))
	}
	return reports
}

func (c *correlation) palace(p chart.Palace) PalaceReport {
	alias := PalaceAlias(p.Name)
	flows := c.byRole(p.Name)

	r := PalaceReport{
		PalaceIndex:       p.Index,
		PalaceName:        p.Name,
		PalaceAlias:       alias,
		PalaceDisplayName: c.vocabulary.displayName(p.Name, alias, p.IsBodyPalace),
		HeavenlyStem:      p.HeavenlyStem,
		EarthlyBranch:     p.EarthlyBranch,
		IsBodyPalace:      p.IsBodyPalace,
		IsOriginalPalace:  p.IsOriginalPalace,
		Changsheng12:      nullable(p.Changsheng12),
		Boshi12:           nullable(p.Boshi12),
		Jiangqian12:       nullable(p.Jiangqian12),
		Suiqian12:         nullable(p.Suiqian12),
		YearlyDecStar:     c.markersByRole(p.Name),
		Natal: NatalStars{
			MajorStars:     annotateAll(p.MajorStars, c.tagMaps),
			MinorStars:     annotateAll(p.MinorStars, c.tagMaps),
			AdjectiveStars: annotateAll(p.AdjectiveStars, c.tagMaps),
		},
		FlowStars:       flows,
		FlowStarsByRole: flows.clone(),
		Ages:            append([]int{}, p.Ages...),
	}

	if c.includeIndex {
		byIndex, roles := c.byIndex(p.Index)
		markers := c.markersAt(p.Index)
		r.FlowStarsByIndex = &byIndex
		r.FlowRoleAtIndex = &roles
		r.YearlyDecStarByIndex = &markers
	}

	if p.Decadal != nil {
		if p.Decadal.Range != nil {
			r.DecadalRange = append([]int{}, p.Decadal.Range...)
		}
		ganzhi := p.Decadal.HeavenlyStem + p.Decadal.EarthlyBranch
		r.DecadalGanZhi = &ganzhi
	}
	return r
}

// byRole resolves the palace in every scope through the scope's own role
// labels, wherever that role currently sits on the ring.
func (c *correlation) byRole(role string) FlowStars {
	var f FlowStars
	for _, kind := range chart.ScopeKinds() {
		stars := StarsByRoleName(c.horoscope.Scope(kind), role)
		f.set(kind, annotateAll(stars, c.tagMaps))
	}
	return f
}

// byIndex reads every scope at the palace's fixed position, together with
// the role each scope assigns to that position.
func (c *correlation) byIndex(i int) (FlowStars, FlowRoles) {
	var (
		f     FlowStars
		roles FlowRoles
	)
	for _, kind := range chart.ScopeKinds() {
		s := c.horoscope.Scope(kind)
		f.set(kind, annotateAll(StarsAtIndex(s, i), c.tagMaps))
		roles.set(kind, RoleAtIndex(s, i))
	}
	return f, roles
}

// markersByRole reads the yearly markers at the yearly scope's own position
// for role.
func (c *correlation) markersByRole(role string) DecorativeMarkers {
	i, ok := c.yearlyIndex[role]
	if !ok {
		return DecorativeMarkers{}
	}
	return c.markersAt(i)
}

func (c *correlation) markersAt(i int) DecorativeMarkers {
	yearly := c.horoscope.Scope(chart.ScopeYearly)
	if yearly == nil || yearly.YearlyDecStar == nil {
		return DecorativeMarkers{}
	}
	return DecorativeMarkers{
		Suiqian12:   stringAt(yearly.YearlyDecStar.Suiqian12, i),
		Jiangqian12: stringAt(yearly.YearlyDecStar.Jiangqian12, i),
	}
}
