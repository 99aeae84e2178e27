// Package engine is the boundary to the external chart calculation engine.
// The engine computes the natal chart once per birth record and a horoscope
// bundle per point in time; this module never computes either itself.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/papapumpkin/ziwei/internal/chart"
	"github.com/papapumpkin/ziwei/internal/request"
)

var (
	// ErrEngine wraps every failure reported by or while reaching the engine.
	ErrEngine = errors.New("chart engine failure")
	// ErrNoHoroscope indicates the engine has no horoscope for a date.
	ErrNoHoroscope = errors.New("no horoscope for date")
)

// BirthRecord is the normalized birth data the engine consumes.
type BirthRecord struct {
	Calendar    string `json:"calendar"`
	Date        string `json:"date"`
	TimeIndex   int    `json:"timeIndex"`
	Gender      string `json:"gender"`
	Language    string `json:"language"`
	FixLeap     bool   `json:"fixLeap"`
	IsLeapMonth bool   `json:"isLeapMonth"`
}

// BirthFrom extracts the engine's view of a normalized request.
func BirthFrom(n *request.Normalized) BirthRecord {
	return BirthRecord{
		Calendar:    n.Calendar,
		Date:        n.BirthDate,
		TimeIndex:   n.TimeIndex,
		Gender:      n.Gender,
		Language:    n.Language,
		FixLeap:     n.FixLeap,
		IsLeapMonth: n.IsLeapMonth,
	}
}

// Engine produces charts.
type Engine interface {
	Chart(ctx context.Context, birth BirthRecord) (Astrolabe, error)
}

// Astrolabe is a computed natal chart that can be queried for horoscopes.
// Implementations must be safe for concurrent Horoscope calls.
type Astrolabe interface {
	Natal() *chart.Natal
	Horoscope(ctx context.Context, at time.Time) (*chart.Horoscope, error)
}
