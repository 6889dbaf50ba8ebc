package forecast

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidNights is returned by callers that reject a trip length below one night.
var ErrInvalidNights = errors.New("trip length must be at least one night")

const (
	// MaxEndpointRainProbability caps the rain chance on departure and arrival days.
	MaxEndpointRainProbability = 30
	// RainyChanceThreshold marks a day rainy when its chance exceeds it.
	RainyChanceThreshold = 20
)

var rainTerms = []string{"rain", "shower", "drizzle", "thunderstorm", "precipitation", "sprinkle", "tstorm"}

// FindSuitableWindows returns every window of nights+1 consecutive entries of
// days that has fewer than half rainy days, at most 30% rain chance on its
// first and last day, and touches a weekend. Windows come back in order of
// their starting offset and may overlap.
func FindSuitableWindows(days []Day, nights int) []Window {
	if nights < 1 {
		return nil
	}
	size := nights + 1
	if len(days) < size {
		return nil
	}

	var out []Window
	for i := 0; i+size <= len(days); i++ {
		span := days[i : i+size]
		w, ok := evaluate(span)
		if !ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

func evaluate(span []Day) (Window, bool) {
	size := len(span)
	first, last := span[0], span[size-1]

	rainy := 0
	for _, d := range span {
		if d.HasRain {
			rainy++
		}
	}
	// rainy < size/2 with real division.
	if 2*rainy >= size {
		return Window{}, false
	}
	if first.Probability() > MaxEndpointRainProbability {
		return Window{}, false
	}
	if last.Probability() > MaxEndpointRainProbability {
		return Window{}, false
	}
	if !IsWeekendAdjacent(first.Date, last.Date) {
		return Window{}, false
	}

	daysCopy := make([]Day, size)
	copy(daysCopy, span)
	return Window{
		Start:          first.Date,
		End:            last.Date,
		Days:           daysCopy,
		RainyDays:      rainy,
		RainPercentage: 100 * float64(rainy) / float64(size),
	}, true
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWeekendAdjacent reports whether any calendar day in [start, end], or the
// day just before start or just after end, is a weekend day.
func IsWeekendAdjacent(start, end time.Time) bool {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			return true
		}
	}
	return IsWeekend(start.AddDate(0, 0, -1)) || IsWeekend(end.AddDate(0, 0, 1))
}

// Contiguous reports whether days holds strictly consecutive calendar dates.
func Contiguous(days []Day) bool {
	for i := 1; i < len(days); i++ {
		if !days[i-1].Date.AddDate(0, 0, 1).Equal(days[i].Date) {
			return false
		}
	}
	return true
}

// IsRainy derives HasRain from a weather label and an optional precipitation
// chance.
func IsRainy(description string, chance *int) bool {
	lower := strings.ToLower(description)
	for _, term := range rainTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return chance != nil && *chance > RainyChanceThreshold
}
