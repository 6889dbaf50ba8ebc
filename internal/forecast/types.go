package forecast

import "time"

// Day is one calendar day's weather summary.
type Day struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	HasRain     bool      `json:"has_rain"`
	// RainProbability is a percentage; nil when the source did not report one.
	RainProbability *int `json:"rain_probability,omitempty"`
	TempHigh        *int `json:"temp_high,omitempty"` // °F
	TempLow         *int `json:"temp_low,omitempty"`  // °F
}

// Probability returns the rain probability, treating an absent value as 0.
func (d Day) Probability() int {
	if d.RainProbability == nil {
		return 0
	}
	return *d.RainProbability
}

// Window is a trip date range of nights+1 consecutive forecast days.
type Window struct {
	Start          time.Time `json:"start_date"`
	End            time.Time `json:"end_date"`
	Days           []Day     `json:"days"`
	RainyDays      int       `json:"rainy_days"`
	RainPercentage float64   `json:"rain_percentage"`
}

// Nights is the number of nights the window covers.
func (w Window) Nights() int {
	if len(w.Days) == 0 {
		return 0
	}
	return len(w.Days) - 1
}

// Date returns the civil date y-m-d as a UTC-midnight time.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IntPtr is a convenience for building optional fields.
func IntPtr(v int) *int { return &v }
