// Package chart defines the records produced by the external chart
// calculation engine: the natal chart with its 12 palaces and the per-date
// horoscope bundle with its six rotating scopes. Records are decoded once and
// treated as read-only by every consumer.
package chart

// PalaceCount is the number of fixed positions on the zodiacal ring.
const PalaceCount = 12

// ScopeKind names one horoscope granularity.
type ScopeKind string

const (
	ScopeDecadal ScopeKind = "decadal"
	ScopeAge     ScopeKind = "age"
	ScopeYearly  ScopeKind = "yearly"
	ScopeMonthly ScopeKind = "monthly"
	ScopeDaily   ScopeKind = "daily"
	ScopeHourly  ScopeKind = "hourly"
)

// ScopeKinds returns the six granularities in merge order. Each call returns
// a fresh slice.
func ScopeKinds() []ScopeKind {
	return []ScopeKind{
		ScopeDecadal,
		ScopeAge,
		ScopeYearly,
		ScopeMonthly,
		ScopeDaily,
		ScopeHourly,
	}
}

// Star is a named influence placed in one palace. Name is the only key used
// for correlation; the same name recurs across scopes.
type Star struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Brightness string `json:"brightness,omitempty"`
	Mutagen    string `json:"mutagen,omitempty"`
}

// Decadal is the ten-year window attached to a natal palace.
type Decadal struct {
	Range         []int  `json:"range"`
	HeavenlyStem  string `json:"heavenlyStem"`
	EarthlyBranch string `json:"earthlyBranch"`
}

// Palace is one of the 12 fixed positions of the natal chart.
type Palace struct {
	Index            int      `json:"index"`
	Name             string   `json:"name"`
	IsBodyPalace     bool     `json:"isBodyPalace"`
	IsOriginalPalace bool     `json:"isOriginalPalace"`
	HeavenlyStem     string   `json:"heavenlyStem"`
	EarthlyBranch    string   `json:"earthlyBranch"`
	MajorStars       []Star   `json:"majorStars"`
	MinorStars       []Star   `json:"minorStars"`
	AdjectiveStars   []Star   `json:"adjectiveStars"`
	Changsheng12     string   `json:"changsheng12,omitempty"`
	Boshi12          string   `json:"boshi12,omitempty"`
	Jiangqian12      string   `json:"jiangqian12,omitempty"`
	Suiqian12        string   `json:"suiqian12,omitempty"`
	Decadal          *Decadal `json:"decadal,omitempty"`
	Ages             []int    `json:"ages"`
}

// Natal is the birth chart. Raw keeps the engine's document as decoded so
// it can be echoed untouched.
type Natal struct {
	SolarDate string   `json:"solarDate,omitempty"`
	LunarDate string   `json:"lunarDate,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Palaces   []Palace `json:"palaces"`

	Raw map[string]any `json:"-"`
}

// YearlyDecStar holds the 12-cycle decorative markers of the yearly scope,
// indexed by the yearly scope's own positions.
type YearlyDecStar struct {
	Suiqian12   []string `json:"suiqian12"`
	Jiangqian12 []string `json:"jiangqian12"`
}

// Scope is one rotated re-labelling of the 12 fixed positions.
// PalaceNames[i] is the role occupying position i and Stars[i] the stars
// placed there.
type Scope struct {
	Index         int            `json:"index"`
	Name          string         `json:"name"`
	HeavenlyStem  string         `json:"heavenlyStem"`
	EarthlyBranch string         `json:"earthlyBranch"`
	PalaceNames   []string       `json:"palaceNames"`
	Mutagen       []string       `json:"mutagen"`
	Stars         [][]Star       `json:"stars"`
	NominalAge    int            `json:"nominalAge,omitempty"`
	YearlyDecStar *YearlyDecStar `json:"yearlyDecStar,omitempty"`
}

// Horoscope is the bundle the engine returns for one point in time. Any
// scope may be nil when the engine did not compute that granularity.
type Horoscope struct {
	SolarDate string `json:"solarDate,omitempty"`
	LunarDate string `json:"lunarDate,omitempty"`
	Decadal   *Scope `json:"decadal,omitempty"`
	Age       *Scope `json:"age,omitempty"`
	Yearly    *Scope `json:"yearly,omitempty"`
	Monthly   *Scope `json:"monthly,omitempty"`
	Daily     *Scope `json:"daily,omitempty"`
	Hourly    *Scope `json:"hourly,omitempty"`

	Raw map[string]any `json:"-"`
}

// Scope returns the scope of the given kind, or nil. A nil receiver is
// treated as a bundle with every scope absent.
func (h *Horoscope) Scope(kind ScopeKind) *Scope {
	if h == nil {
		return nil
	}
	switch kind {
	case ScopeDecadal:
		return h.Decadal
	case ScopeAge:
		return h.Age
	case ScopeYearly:
		return h.Yearly
	case ScopeMonthly:
		return h.Monthly
	case ScopeDaily:
		return h.Daily
	case ScopeHourly:
		return h.Hourly
	}
	return nil
}

// RawScope returns the undecoded form of one scope, or nil.
func (h *Horoscope) RawScope(kind ScopeKind) any {
	if h == nil || h.Raw == nil {
		return nil
	}
	return h.Raw[string(kind)]
}
