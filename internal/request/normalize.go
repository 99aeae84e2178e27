package request

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Timezone names must resolve without system zoneinfo.
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

// Error formats the field and the reason it was rejected.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Unwrap returns ErrInvalidInput for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DefaultTimezone is used when neither the query nor the config names one.
const DefaultTimezone = "Asia/Shanghai"

// Normalized is a validated request ready for the engine.
type Normalized struct {
	Calendar    string
	BirthDate   string
	TimeIndex   int
	Gender      string
	Birthplace  string
	Language    string
	FixLeap     bool
	IsLeapMonth bool

	Timezone            string
	Location            *time.Location
	BaseDate            string
	FutureDates         []string
	IncludeIndexMapping bool
}

// Defaults supplies values the input may leave out.
type Defaults struct {
	Timezone string
	Now      time.Time
}

// Normalize validates in and resolves defaults. The first invalid field is
// reported as a *ValidationError.
func Normalize(in Input, d Defaults) (*Normalized, error) {
	b := in.Birth
	if b.Calendar != "solar" && b.Calendar != "lunar" {
		return nil, invalid("birth.calendar", "must be either solar or lunar")
	}
	if !b.Confirmed {
		return nil, invalid("birth.confirmed", "must be true before generating chart output")
	}
	birthDate, err := NormalizeDate(b.Date, "birth.date")
	if err != nil {
		return nil, err
	}
	timeIndex, ok := integer(b.TimeIndex)
	if !ok || timeIndex < 0 || timeIndex > 12 {
		return nil, invalid("birth.timeIndex", "must be an integer from 0 to 12")
	}
	gender := strings.ToLower(b.Gender)
	if gender != "male" && gender != "female" {
		return nil, invalid("birth.gender", "must be male or female")
	}
	birthplace := strings.TrimSpace(b.Birthplace)
	if birthplace == "" {
		return nil, invalid("birth.birthplace", "must be a non-empty string")
	}

	n := &Normalized{
		Calendar:    b.Calendar,
		BirthDate:   birthDate,
		TimeIndex:   timeIndex,
		Gender:      gender,
		Birthplace:  birthplace,
		Language:    b.Language,
		FixLeap:     true,
		IsLeapMonth: false,

		IncludeIndexMapping: in.Query.Debug.IncludeIndexMapping,
	}
	if n.Language == "" {
		n.Language = "zh-CN"
	}
	if b.FixLeap != nil {
		n.FixLeap = *b.FixLeap
	}
	if b.IsLeapMonth != nil {
		n.IsLeapMonth = *b.IsLeapMonth
	}

	n.Timezone = in.Query.Timezone
	if n.Timezone == "" {
		n.Timezone = d.Timezone
	}
	if n.Timezone == "" {
		n.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		return nil, invalid("query.timezone", "%q is not a known timezone", n.Timezone)
	}
	n.Location = loc

	if base := in.Query.BaseDate; base == "" || base == "today" {
		now := d.Now
		if now.IsZero() {
			now = time.Now()
		}
		n.BaseDate = DateIn(now, loc)
	} else {
		n.BaseDate, err = NormalizeDate(base, "query.baseDate")
		if err != nil {
			return nil, err
		}
	}

	n.FutureDates = make([]string, 0, len(in.Query.FutureDates))
	for i, raw := range in.Query.FutureDates {
		date, err := NormalizeDate(raw, fmt.Sprintf("query.futureDates[%d]", i))
		if err != nil {
			return nil, err
		}
		n.FutureDates = append(n.FutureDates, date)
	}
	return n, nil
}

var ymdPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

// NormalizeDate validates a YYYY-M-D or YYYY-MM-DD calendar date and
// returns it without zero padding.
func NormalizeDate(text, field string) (string, error) {
	m := ymdPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", invalid(field, "must match YYYY-M-D or YYYY-MM-DD")
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return "", invalid(field, "month must be 1..12")
	}
	if day < 1 || day > 31 {
		return "", invalid(field, "day must be 1..31")
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", invalid(field, "is not a valid calendar date")
	}
	return fmt.Sprintf("%d-%d-%d", year, month, day), nil
}

// DateIn formats the calendar date of instant t in loc as Y-M-D.
func DateIn(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d-%d-%d", local.Year(), int(local.Month()), local.Day())
}

// LocalNoon returns 12:00 on a normalized Y-M-D date in loc. Horoscopes are
// always computed at local noon so the daily scope is unambiguous.
func LocalNoon(date string, loc *time.Location) (time.Time, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(date, "%d-%d-%d", &y, &m, &d); err != nil {
		return time.Time{}, fmt.Errorf("request: parse date %q: %w", date, err)
	}
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, loc), nil
}

// integer accepts the numeric forms produced by the JSON, TOML and YAML
// decoders, and numeric strings.
func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return integer(f)
	}
	return 0, false
}
