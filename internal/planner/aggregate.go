package planner

import (
	"sort"
	"strings"
)

// Aggregate flattens per-city trips into one list sorted by start date.
// Trips starting the same day keep city order, then window order.
func Aggregate(results []CityResult) []Entry {
	var entries []Entry
	for _, r := range results {
		for _, t := range r.Trips {
			entries = append(entries, Entry{Query: r.Query, City: r.City, Trip: t})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Window.Start.Before(entries[j].Window.Start)
	})
	return entries
}

// ParseCityList splits "Ocean City, MD & Virginia Beach, VA" into trimmed,
// non-empty city queries.
func ParseCityList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, "&") {
		if city := strings.TrimSpace(part); city != "" {
			out = append(out, city)
		}
	}
	return out
}
