package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
)

// Request describes one planning run.
type Request struct {
	Nights   int      `json:"nights"`
	MaxPrice int      `json:"max_price"`
	Cities   []string `json:"cities"`
}

// Trip is a suitable window with its hotel-search link.
type Trip struct {
	Window   forecast.Window `json:"window"`
	HotelURL string          `json:"hotel_url"`
}

// CityResult holds one city's resolved identity and surviving trips.
type CityResult struct {
	Query        string `json:"query"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	RegionAbbr   string `json:"region_abbr,omitempty"`
	LocationID   string `json:"location_id"`
	Score        int    `json:"score"`
	ForecastDays int    `json:"forecast_days"`
	Trips        []Trip `json:"trips"`
}

// Skipped records a city that produced no result and why.
type Skipped struct {
	Query  string `json:"query"`
	Reason string `json:"reason"`
}

// Entry is one row of the cross-city report.
type Entry struct {
	Query string `json:"query"`
	City  string `json:"city"`
	Trip
}

// Report is the outcome of a planning run.
type Report struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Nights    int          `json:"nights"`
	MaxPrice  int          `json:"max_price"`
	Cities    []CityResult `json:"cities"`
	Skipped   []Skipped    `json:"skipped,omitempty"`
	Entries   []Entry      `json:"entries"`
}
