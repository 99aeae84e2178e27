package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papapumpkin/ziwei/internal/chart"
	"github.com/papapumpkin/ziwei/internal/engine"
)

var roleNames = []string{
	"命宫", "兄弟", "夫妻", "子女", "财帛", "疾厄",
	"迁移", "仆役", "官禄", "田宅", "福德", "父母",
}

// testNatal has StarA with natal mutagen Ji in the first palace, which is
// also the body palace.
func testNatal() *chart.Natal {
	palaces := make([]chart.Palace, len(roleNames))
	for i, name := range roleNames {
		palaces[i] = chart.Palace{
			Index:         i,
			Name:          name,
			HeavenlyStem:  "甲",
			EarthlyBranch: "子",
			Decadal:       &chart.Decadal{Range: []int{2 + 10*i, 11 + 10*i}},
		}
	}
	palaces[0].MajorStars = []chart.Star{{Name: "StarA", Mutagen: "Ji"}}
	palaces[0].IsBodyPalace = true
	n := &chart.Natal{SolarDate: "1990-5-7", Palaces: palaces}
	n.Raw = toRaw(n)
	return n
}

// testHoroscope rotates the yearly scope by shift and gives StarA the Lu
// mutagen. The raw form carries an astrolabe back reference.
func testHoroscope(lunar string, shift int) *chart.Horoscope {
	yearly := &chart.Scope{
		Name:        "流年",
		PalaceNames: make([]string, len(roleNames)),
		Stars:       make([][]chart.Star, len(roleNames)),
		Mutagen:     []string{"StarA", "", "", ""},
	}
	for i := range roleNames {
		yearly.PalaceNames[i] = roleNames[(i+shift)%len(roleNames)]
		yearly.Stars[i] = []chart.Star{{Name: fmt.Sprintf("Y%d", i)}}
	}
	h := &chart.Horoscope{LunarDate: lunar, Yearly: yearly}
	h.Raw = toRaw(h)
	h.Raw["astrolabe"] = map[string]any{"palaces": []any{}}
	return h
}

func toRaw(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(err)
	}
	return m
}

// fakeEngine serves charts from memory and records how horoscopes were
// requested.
type fakeEngine struct {
	natal      *chart.Natal
	chartErr   error
	horoscopes map[string]*chart.Horoscope
	failures   map[string]error
	delay      time.Duration

	mu    sync.Mutex
	times []time.Time

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		natal:      testNatal(),
		horoscopes: map[string]*chart.Horoscope{},
		failures:   map[string]error{},
	}
}

func (f *fakeEngine) Chart(ctx context.Context, _ engine.BirthRecord) (engine.Astrolabe, error) {
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f, nil
}

func (f *fakeEngine) Natal() *chart.Natal { return f.natal }

func (f *fakeEngine) Horoscope(ctx context.Context, at time.Time) (*chart.Horoscope, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		max := f.maxInflight.Load()
		if n <= max || f.maxInflight.CompareAndSwap(max, n) {
			break
		}
	}

	f.mu.Lock()
	f.times = append(f.times, at)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	date := fmt.Sprintf("%d-%d-%d", at.Year(), int(at.Month()), at.Day())
	if err := f.failures[date]; err != nil {
		return nil, err
	}
	h, ok := f.horoscopes[date]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", engine.ErrEngine, engine.ErrNoHoroscope, date)
	}
	return h, nil
}
