package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/birthmatrix/internal/catalog"
	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// CacheTimeout bounds a single cache round trip. A slow cache never fails a
// calculation; it only loses the hit.
var CacheTimeout = 250 * time.Millisecond

// Service provides the matrix calculator to transports.
type Service struct {
	calc    *numerology.Calculator
	catalog *catalog.Catalog
	history HistoryStore
	cache   Cache
	metrics *Metrics

	family     FamilyStore
	maxMembers int

	flight singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every calculation in h.
func WithHistory(h HistoryStore) Option {
	return func(s *Service) { s.history = h }
}

// WithCache looks readings up in c before computing them.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records service metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the clock used to reject future dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.calc = numerology.NewCalculator(numerology.WithClock(now)) }
}

// NewService creates a new Service instance.
func NewService(cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		calc:    numerology.NewCalculator(),
		catalog: cat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Catalog returns the interpretation catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// HistoryEnabled reports whether calculations are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.calc.Now()
}

// Calculate validates a DD.MM.YYYY input and returns its reading and analysis.
func (s *Service) Calculate(ctx context.Context, input string) (*Result, error) {
	start := time.Now()
	d, err := s.calc.Parse(input)
	if err != nil {
		s.metrics.IncrementRejections(err)
		return nil, err
	}
	return s.calculate(ctx, d, start)
}

// CalculateDate is Calculate for a day, month, year triple.
func (s *Service) CalculateDate(ctx context.Context, day, month, year int) (*Result, error) {
	start := time.Now()
	d, err := numerology.NewBirthDate(day, month, year, s.calc.Now())
	if err != nil {
		s.metrics.IncrementRejections(err)
		return nil, err
	}
	return s.calculate(ctx, d, start)
}

func (s *Service) calculate(ctx context.Context, d numerology.BirthDate, start time.Time) (*Result, error) {
	reading, cached, err := s.reading(ctx, d)
	if err != nil {
		slog.ErrorContext(ctx, "matrix calculation failed", "date", d.String(), "error", err)
		return nil, err
	}

	res := s.buildResult(reading)
	res.Cached = cached

	if s.history != nil {
		entry, err := s.history.Record(ctx, newHistoryEntry(ctx, res))
		if err != nil {
			// History is best effort; the caller still gets the result.
			s.metrics.IncrementHistoryFailures()
			slog.WarnContext(ctx, "record history failed", "date", d.String(), "error", err)
		} else {
			res.HistoryID = entry.ID
		}
	}

	s.metrics.ObserveCalculation(cached, time.Since(start))
	return res, nil
}

// reading returns the reading of d from the cache or computes it. Concurrent
// misses for the same date share one computation.
func (s *Service) reading(ctx context.Context, d numerology.BirthDate) (numerology.Reading, bool, error) {
	key := d.String()

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, CacheTimeout)
		r, ok, err := s.cache.Get(cctx, key)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "cache lookup failed", "key", key, "error", err)
		} else if ok {
			return r, true, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		r, err := numerology.Calculate(d)
		if err != nil {
			return nil, fmt.Errorf("calculate %s: %w", key, err)
		}
		if s.cache != nil {
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CacheTimeout)
			defer cancel()
			if err := s.cache.Set(cctx, key, r); err != nil {
				slog.WarnContext(ctx, "cache store failed", "key", key, "error", err)
			}
		}
		return r, nil
	})
	if err != nil {
		return numerology.Reading{}, false, err
	}
	return v.(numerology.Reading), false, nil
}

func (s *Service) buildResult(r numerology.Reading) *Result {
	analysis := numerology.Analyze(r)

	res := &Result{
		Reading:  r,
		Analysis: analysis,
		Cells:    make([]CellView, 0, 9),
	}
	for _, c := range r.Matrix.Cells() {
		res.Cells = append(res.Cells, CellView{
			Digit:   c.Digit,
			Count:   c.Count,
			Label:   s.catalog.CellLabel(c.Digit, c.Count),
			Quality: s.catalog.Quality(c.Digit),
		})
	}
	for _, n := range analysis.KarmicDebts {
		if debt, ok := s.catalog.KarmicDebt(n); ok {
			res.Karmic = append(res.Karmic, KarmicView{Number: n, KarmicDebt: debt})
		}
	}
	seen := make(map[int]bool)
	for _, digit := range analysis.Programs {
		if seen[digit] {
			continue
		}
		seen[digit] = true
		if p, ok := s.catalog.Program(digit); ok {
			res.Programs = append(res.Programs, ProgramView{Digit: digit, Program: p})
		}
	}
	res.Recommendations, res.Plan = s.recommend(analysis)
	return res
}

// Forecast validates input and returns its forecast for the year and month
// of at. A zero at means the service clock.
func (s *Service) Forecast(ctx context.Context, input string, at time.Time) (*ForecastResult, error) {
	d, err := s.calc.Parse(input)
	if err != nil {
		s.metrics.IncrementRejections(err)
		return nil, err
	}
	if at.IsZero() {
		at = s.calc.Now()
	}

	f := numerology.NewForecast(d, at)
	res := &ForecastResult{
		Forecast:   f,
		MonthName:  s.catalog.MonthName(f.Month),
		YearTheme:  s.catalog.PersonalYearTheme(f.PersonalYear),
		MonthTheme: s.catalog.PersonalYearTheme(f.PersonalMonth),
		Months:     make([]MonthView, 0, len(f.FavorableMonths)),
		Days:       make([]DayView, 0, len(f.FavorableDays)),
	}
	for _, m := range f.FavorableMonths {
		res.Months = append(res.Months, MonthView{
			Month:  m.Month,
			Name:   s.catalog.MonthName(m.Month),
			Energy: m.Energy,
			Reason: s.catalog.EnergyReason(m.Energy),
		})
	}
	for _, day := range f.FavorableDays {
		res.Days = append(res.Days, DayView{
			Date:   day.Date,
			Energy: day.Energy,
			Reason: s.catalog.EnergyReason(day.Energy),
		})
	}

	s.metrics.IncrementForecasts()
	slog.DebugContext(ctx, "forecast computed", "date", d.String(), "personal_year", f.PersonalYear)
	return res, nil
}

// History lists recorded calculations, newest first.
func (s *Service) History(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.List(ctx, f)
}

// HistoryEntry returns one recorded calculation.
func (s *Service) HistoryEntry(ctx context.Context, id string) (*HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	e, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
