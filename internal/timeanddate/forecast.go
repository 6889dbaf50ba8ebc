package timeanddate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
)

// ErrNoForecastTable is returned when the extended forecast page has no
// recognisable forecast table.
var ErrNoForecastTable = errors.New("forecast table not found")

// chanceColumn is the index of the precipitation chance cell in a row.
const chanceColumn = 7

var (
	monthDayRe    = regexp.MustCompile(`<br\s*/?>\s*([A-Za-z]+)\s+(\d{1,2})`)
	temperatureRe = regexp.MustCompile(`(-?\d+)\s*/\s*(-?\d+)`)
	percentRe     = regexp.MustCompile(`^(\d{1,3})\s*%$`)
)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
	"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
	"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// Forecast fetches the extended forecast for a location identifier.
func (c *Client) Forecast(ctx context.Context, locationID string) ([]forecast.Day, error) {
	endpoint := c.opts.BaseURL + "/weather/@" + url.PathEscape(locationID) + "/ext"

	doc, err := c.document(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("forecast fetch for location %s: %w", locationID, err)
	}

	days, err := c.parseForecast(doc)
	if err != nil {
		return nil, fmt.Errorf("forecast parse for location %s: %w", locationID, err)
	}
	c.log.Debug("forecast parsed", "location_id", locationID, "days", len(days))
	return days, nil
}

func (c *Client) parseForecast(doc *goquery.Document) ([]forecast.Day, error) {
	table := doc.Find("table#wt-ext").First()
	if table.Length() == 0 {
		table = doc.Find("table.zebra, table.fw, table.tb-wt").First()
		if table.Length() == 0 {
			return nil, ErrNoForecastTable
		}
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}

	now := c.now()
	var days []forecast.Day
	rows.Each(func(i int, row *goquery.Selection) {
		day, err := parseRow(row, now)
		if err != nil {
			c.log.Debug("skipping forecast row", "row", i, "err", err)
			return
		}
		days = append(days, day)
	})
	return days, nil
}

func parseRow(row *goquery.Selection, now time.Time) (forecast.Day, error) {
	th := row.Find("th").First()
	if th.Length() == 0 {
		return forecast.Day{}, errors.New("no header cell")
	}
	if th.Find("span.smaller").Length() == 0 {
		return forecast.Day{}, errors.New("no weekday span")
	}

	inner, err := th.Html()
	if err != nil {
		return forecast.Day{}, fmt.Errorf("rendering header cell: %w", err)
	}
	m := monthDayRe.FindStringSubmatch(inner)
	if m == nil {
		return forecast.Day{}, fmt.Errorf("no month/day in %q", inner)
	}
	date, err := civilDate(m[1], m[2], now)
	if err != nil {
		return forecast.Day{}, err
	}

	day := forecast.Day{Date: date}
	if title, ok := row.Find("img.mtt").First().Attr("title"); ok {
		day.Description = strings.TrimSpace(title)
	}

	cells := row.Find("td")
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := cell.Text()
		if !strings.Contains(text, "°F") && !strings.Contains(text, "°C") {
			return true
		}
		if tm := temperatureRe.FindStringSubmatch(text); tm != nil {
			high, _ := strconv.Atoi(tm[1])
			low, _ := strconv.Atoi(tm[2])
			day.TempHigh = &high
			day.TempLow = &low
		}
		return false
	})

	if cells.Length() > chanceColumn {
		chanceText := strings.TrimSpace(cells.Eq(chanceColumn).Text())
		if pm := percentRe.FindStringSubmatch(chanceText); pm != nil {
			if p, err := strconv.Atoi(pm[1]); err == nil && p <= 100 {
				day.RainProbability = &p
			}
		}
	}

	day.HasRain = forecast.IsRainy(day.Description, day.RainProbability)
	return day, nil
}

// civilDate resolves "Jan 3" against now; January rows seen in December
// belong to the next year.
func civilDate(monthAbbr, dayText string, now time.Time) (time.Time, error) {
	month, ok := months[monthAbbr]
	if !ok {
		return time.Time{}, fmt.Errorf("invalid month abbreviation %q", monthAbbr)
	}
	dayNum, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", dayText, err)
	}

	year := now.Year()
	if month == time.January && now.Month() == time.December {
		year++
	}

	date := forecast.Date(year, month, dayNum)
	if date.Day() != dayNum || date.Month() != month {
		return time.Time{}, fmt.Errorf("invalid date %s %d", monthAbbr, dayNum)
	}
	return date, nil
}
