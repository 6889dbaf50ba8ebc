package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

// Prompt asks which summary entries to open and returns the raw answer.
// End of input yields an empty answer.
func Prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "\nDo you want to open any of the hotel search URLs? (Enter numbers separated by comma, or 'all')")
	fmt.Fprint(out, "Selection: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// OpenSelection opens the hotel links chosen by answer with open, reporting
// each step to out. It returns how many links were opened.
func OpenSelection(out io.Writer, entries []planner.Entry, answer string, open func(url string) error) (int, error) {
	valid, outOfRange, err := ParseSelection(answer, len(entries))
	if err != nil {
		fmt.Fprintln(out, "Invalid selection. No URLs opened.")
		return 0, err
	}

	opened := 0
	for _, idx := range valid {
		e := entries[idx-1]
		fmt.Fprintf(out, "Opening URL for %s: %s to %s\n", e.Query, FormatDay(e.Window.Start), FormatDay(e.Window.End))
		if err := open(e.HotelURL); err != nil {
			fmt.Fprintf(out, "Could not open URL: %v\n", err)
			continue
		}
		opened++
	}
	for _, idx := range outOfRange {
		fmt.Fprintf(out, "Invalid index: %d\n", idx)
	}
	return opened, nil
}
