// Package planner resolves each requested city, searches its forecast for
// suitable trip windows and merges the results into one report.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
	"github.com/neexbeast/weather-trip-planner/internal/location"
)

var (
	// ErrInvalidMaxPrice is returned for a maximum price below 1.
	ErrInvalidMaxPrice = errors.New("max price must be a positive integer")
	// ErrNoCities is returned when the request names no city.
	ErrNoCities = errors.New("no cities specified")
)

const defaultConcurrency = 4

// LocationSearcher returns raw location rows for a free-text query.
type LocationSearcher interface {
	Search(ctx context.Context, query string) ([]location.Candidate, error)
}

// ForecastFetcher returns the daily outlook for a location identifier.
type ForecastFetcher interface {
	Forecast(ctx context.Context, locationID string) ([]forecast.Day, error)
}

// Cache stores fetched forecasts and search rows. Misses return nil, nil.
type Cache interface {
	GetForecast(ctx context.Context, locationID string) ([]forecast.Day, error)
	SetForecast(ctx context.Context, locationID string, days []forecast.Day) error
	GetSearch(ctx context.Context, query string) ([]location.Candidate, error)
	SetSearch(ctx context.Context, query string, rows []location.Candidate) error
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *Report) error
}

// LinkBuilder turns a resolved city and window into a hotel-search URL.
type LinkBuilder interface {
	HotelSearchURL(city, regionAbbr string, start, end time.Time, maxPrice int) string
}

// Deps wires a Planner. Cache and Store are optional.
type Deps struct {
	Searcher    LocationSearcher
	Forecasts   ForecastFetcher
	Resolver    *location.Resolver
	Links       LinkBuilder
	Cache       Cache
	Store       ReportStore
	Log         *slog.Logger
	Concurrency int
}

// Planner runs the per-city pipeline.
type Planner struct {
	searcher    LocationSearcher
	forecasts   ForecastFetcher
	resolver    *location.Resolver
	links       LinkBuilder
	cache       Cache
	store       ReportStore
	log         *slog.Logger
	concurrency int
	now         func() time.Time
	newID       func() uuid.UUID
}

// New constructs a Planner from its dependencies.
func New(d Deps) *Planner {
	log := d.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	resolver := d.Resolver
	if resolver == nil {
		resolver = location.NewResolver(location.Regions, "", log)
	}
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Planner{
		searcher:    d.Searcher,
		forecasts:   d.Forecasts,
		resolver:    resolver,
		links:       d.Links,
		cache:       d.Cache,
		store:       d.Store,
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.New,
	}
}

// Validate checks the request parameters without doing any I/O.
func Validate(req Request) error {
	if req.Nights < 1 {
		return forecast.ErrInvalidNights
	}
	if req.MaxPrice < 1 {
		return ErrInvalidMaxPrice
	}
	if len(req.Cities) == 0 {
		return ErrNoCities
	}
	return nil
}

// Plan processes every city in parallel. A city that cannot be resolved or
// fetched is recorded in Report.Skipped and does not fail the run; only a
// failure to save the report is returned as an error.
func (p *Planner) Plan(ctx context.Context, req Request) (*Report, error) {
	if err := Validate(req); err != nil {
		plansTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	results := make([]*CityResult, len(req.Cities))
	skipped := make([]*Skipped, len(req.Cities))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, query := range req.Cities {
		i, query := i, query
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("city pipeline panicked", "query", query, "recover", r)
					err = fmt.Errorf("city pipeline for %s panicked: %v", query, r)
				}
			}()

			res, cityErr := p.planCity(gCtx, query, req)
			if cityErr != nil {
				p.log.Warn("skipping city", "query", query, "err", cityErr)
				citiesTotal.WithLabelValues(outcome(cityErr)).Inc()
				skipped[i] = &Skipped{Query: query, Reason: cityErr.Error()}
				return nil
			}
			citiesTotal.WithLabelValues("ok").Inc()
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		plansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("planning trips: %w", err)
	}

	report := &Report{
		ID:        p.newID(),
		CreatedAt: p.now().UTC(),
		Nights:    req.Nights,
		MaxPrice:  req.MaxPrice,
		Cities:    []CityResult{},
	}
	for i := range req.Cities {
		if results[i] != nil {
			report.Cities = append(report.Cities, *results[i])
		}
		if skipped[i] != nil {
			report.Skipped = append(report.Skipped, *skipped[i])
		}
	}
	report.Entries = Aggregate(report.Cities)
	if report.Entries == nil {
		report.Entries = []Entry{}
	}
	tripsFound.Add(float64(len(report.Entries)))

	if p.store != nil {
		if err := p.store.SaveReport(ctx, report); err != nil {
			plansTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("saving report %s: %w", report.ID, err)
		}
	}

	plansTotal.WithLabelValues("ok").Inc()
	p.log.Info("plan complete", "report_id", report.ID, "cities", len(report.Cities),
		"skipped", len(report.Skipped), "trips", len(report.Entries))
	return report, nil
}

func (p *Planner) planCity(ctx context.Context, query string, req Request) (*CityResult, error) {
	candidates, err := p.candidates(ctx, query)
	if err != nil {
		return nil, err
	}

	match, err := p.resolver.Resolve(query, candidates)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", query, err)
	}

	days, err := p.forecast(ctx, match.Identifier)
	if err != nil {
		return nil, err
	}
	if !forecast.Contiguous(days) {
		p.log.Warn("forecast dates are not consecutive", "query", query, "location_id", match.Identifier)
	}

	windows := forecast.FindSuitableWindows(days, req.Nights)
	p.log.Info("windows found", "query", query, "city", match.DisplayName, "days", len(days), "windows", len(windows))

	res := &CityResult{
		Query:        query,
		City:         match.DisplayName,
		Region:       match.Region,
		RegionAbbr:   match.RegionAbbr,
		LocationID:   match.Identifier,
		Score:        match.Score,
		ForecastDays: len(days),
		Trips:        make([]Trip, 0, len(windows)),
	}
	for _, w := range windows {
		res.Trips = append(res.Trips, Trip{
			Window:   w,
			HotelURL: p.links.HotelSearchURL(match.DisplayName, match.RegionAbbr, w.Start, w.End, req.MaxPrice),
		})
	}
	return res, nil
}

func (p *Planner) candidates(ctx context.Context, query string) ([]location.Candidate, error) {
	if p.cache != nil {
		rows, err := p.cache.GetSearch(ctx, query)
		if err != nil {
			p.log.Warn("search cache get failed", "query", query, "err", err)
		}
		if rows != nil {
			return rows, nil
		}
	}

	rows, err := p.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", query, err)
	}

	if p.cache != nil {
		if err := p.cache.SetSearch(ctx, query, rows); err != nil {
			p.log.Warn("search cache set failed", "query", query, "err", err)
		}
	}
	return rows, nil
}

func (p *Planner) forecast(ctx context.Context, locationID string) ([]forecast.Day, error) {
	if p.cache != nil {
		days, err := p.cache.GetForecast(ctx, locationID)
		if err != nil {
			p.log.Warn("forecast cache get failed", "location_id", locationID, "err", err)
		}
		if days != nil {
			forecastCache.WithLabelValues("hit").Inc()
			return days, nil
		}
		forecastCache.WithLabelValues("miss").Inc()
	}

	days, err := p.forecasts.Forecast(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast for %s: %w", locationID, err)
	}

	if p.cache != nil {
		if err := p.cache.SetForecast(ctx, locationID, days); err != nil {
			p.log.Warn("forecast cache set failed", "location_id", locationID, "err", err)
		}
	}
	return days, nil
}

func outcome(err error) string {
	if errors.Is(err, location.ErrNoEligibleCandidate) {
		return "not_found"
	}
	return "error"
}
