package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

const (
	dayLayout = "Mon, Jan 02"
	rule      = "=================================================="
)

// FormatDay renders a date the way every listing in the output does.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// RenderCity writes one city's resolved location and numbered periods with
// per-day weather and the hotel link.
func RenderCity(w io.Writer, r planner.CityResult) {
	fmt.Fprintf(w, "\n%s\nANALYZING: %s\n%s\n", rule, r.Query, rule)
	fmt.Fprintf(w, "Selected location: %s (ID: %s, score %d)\n", r.City, r.LocationID, r.Score)
	fmt.Fprintf(w, "Found forecast data for %d days\n", r.ForecastDays)

	if len(r.Trips) == 0 {
		fmt.Fprintf(w, "No suitable periods found in the forecast for %s\n", r.Query)
		return
	}

	fmt.Fprintf(w, "\nSuitable periods for %s:\n", r.Query)
	for i, t := range r.Trips {
		fmt.Fprintf(w, "%d. %s to %s (%d nights / %d days)\n",
			i+1, FormatDay(t.Window.Start), FormatDay(t.Window.End), t.Window.Nights(), len(t.Window.Days))
		for _, d := range t.Window.Days {
			fmt.Fprintf(w, "   - %s%s: %s\n", FormatDay(d.Date), bracketTemps(d), d.Description)
		}
		fmt.Fprintf(w, "   Hotel search: %s\n", t.HotelURL)
	}
}

// RenderSkipped lists cities that produced no result.
func RenderSkipped(w io.Writer, skipped []planner.Skipped) {
	for _, s := range skipped {
		fmt.Fprintf(w, "\nCould not process %s: %s\n", s.Query, s.Reason)
	}
}

// RenderSummary writes the cross-city list, numbered from 1 in start-date
// order. It reports false when there is nothing to list.
func RenderSummary(w io.Writer, entries []planner.Entry) bool {
	if len(entries) == 0 {
		fmt.Fprintln(w, "\nNo suitable periods found for any cities.")
		return false
	}

	fmt.Fprintf(w, "\n%s\nSUMMARY OF ALL RESULTS\n%s\n", rule, rule)
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s: %s to %s (%d nights)\n",
			i+1, e.Query, FormatDay(e.Window.Start), FormatDay(e.Window.End), e.Window.Nights())
		fmt.Fprintf(w, "   Temperatures: %s\n", TemperatureSummary(e.Window.Days))
	}
	return true
}

// TemperatureSummary joins "high°F/low°F" for each day that reports both.
func TemperatureSummary(days []forecast.Day) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		if d.TempHigh != nil && d.TempLow != nil {
			parts = append(parts, fmt.Sprintf("%d°F/%d°F", *d.TempHigh, *d.TempLow))
		}
	}
	return strings.Join(parts, ", ")
}

func bracketTemps(d forecast.Day) string {
	if d.TempHigh == nil || d.TempLow == nil {
		return ""
	}
	return fmt.Sprintf(" [%d°F / %d°F]", *d.TempHigh, *d.TempLow)
}
