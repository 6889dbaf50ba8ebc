// Package cli parses command-line input and renders planner results as text.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

// Usage is printed when the positional arguments are missing.
const Usage = `Usage: planner [flags] <trip_length_in_nights> <max_price> <city_name1> [& <city_name2> ...]
Example: planner 2 400 'Ocean City, MD & Virginia Beach, VA'`

var (
	// ErrUsage is returned when fewer than three positional arguments are given.
	ErrUsage = errors.New("missing arguments")
	// ErrInvalidSelection is returned for a selection that is neither "all"
	// nor a comma-separated list of numbers.
	ErrInvalidSelection = errors.New("invalid selection")
)

// ParseArgs turns the positional arguments into a planning request. Every
// argument after the price is joined with spaces and split on "&", so both
// quoted and unquoted city lists work.
func ParseArgs(args []string) (planner.Request, error) {
	if len(args) < 3 {
		return planner.Request{}, ErrUsage
	}

	nights, err := positive(args[0], "trip length")
	if err != nil {
		return planner.Request{}, err
	}
	maxPrice, err := positive(args[1], "max price")
	if err != nil {
		return planner.Request{}, err
	}

	cities := planner.ParseCityList(strings.Join(args[2:], " "))
	if len(cities) == 0 {
		return planner.Request{}, planner.ErrNoCities
	}

	return planner.Request{Nights: nights, MaxPrice: maxPrice, Cities: cities}, nil
}

func positive(raw, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

// ParseSelection interprets the link-opening prompt answer against n entries.
// It returns the valid 1-based indices in input order and, separately, any
// numbers outside 1..n. An empty answer selects nothing.
func ParseSelection(input string, n int) (valid, outOfRange []int, err error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "all") {
		for i := 1; i <= n; i++ {
			valid = append(valid, i)
		}
		return valid, nil, nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, convErr := strconv.Atoi(part)
		if convErr != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		if idx < 1 || idx > n {
			outOfRange = append(outOfRange, idx)
			continue
		}
		valid = append(valid, idx)
	}
	return valid, outOfRange, nil
}
