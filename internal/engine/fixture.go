package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papapumpkin/ziwei/internal/chart"
)

// Fixture replays engine output saved on disk:
//
//	<Dir>/natal.json
//	<Dir>/horoscope/<Y-M-D>.json
//
// The birth record is ignored; the directory holds exactly one chart.
type Fixture struct {
	Dir string
}

// Chart loads natal.json.
func (f *Fixture) Chart(_ context.Context, _ BirthRecord) (Astrolabe, error) {
	path := filepath.Join(f.Dir, "natal.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrEngine, path, err)
	}
	natal, err := chart.DecodeNatal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEngine, path, err)
	}
	return &fixtureAstrolabe{dir: f.Dir, natal: natal}, nil
}

type fixtureAstrolabe struct {
	dir   string
	natal *chart.Natal
}

func (a *fixtureAstrolabe) Natal() *chart.Natal { return a.natal }

// Horoscope loads the bundle saved for the calendar date of at.
func (a *fixtureAstrolabe) Horoscope(ctx context.Context, at time.Time) (*chart.Horoscope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	date := fmt.Sprintf("%d-%d-%d", at.Year(), int(at.Month()), at.Day())
	path := filepath.Join(a.dir, "horoscope", date+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w: %s", ErrEngine, ErrNoHoroscope, date)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrEngine, path, err)
	}
	h, err := chart.DecodeHoroscope(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEngine, path, err)
	}
	return h, nil
}
