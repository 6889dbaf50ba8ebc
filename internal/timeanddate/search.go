package timeanddate

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/neexbeast/weather-trip-planner/internal/location"
)

var locationIDRe = regexp.MustCompile(`@(\d+)`)

// Search returns the raw location rows the site lists for query. Rows
// without a link keep an empty identifier so the resolver can discard them.
func (c *Client) Search(ctx context.Context, query string) ([]location.Candidate, error) {
	endpoint := c.opts.BaseURL + "/weather/?query=" + url.QueryEscape(query) + "+usa"

	doc, err := c.document(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("location search for %s: %w", query, err)
	}

	candidates := parseSearchResults(doc)
	c.log.Debug("location search", "query", query, "rows", len(candidates))
	return candidates, nil
}

func parseSearchResults(doc *goquery.Document) []location.Candidate {
	rows := doc.Find("table tr")
	if rows.Length() <= 1 {
		return nil
	}

	var out []location.Candidate
	// The first row is the table header.
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		if link.Length() == 0 {
			return
		}

		c := location.Candidate{
			DisplayName: strings.TrimSpace(link.Text()),
			FullText:    rowText(row),
		}
		if href, ok := link.Attr("href"); ok {
			if m := locationIDRe.FindStringSubmatch(href); m != nil {
				c.Identifier = m[1]
			}
		}
		out = append(out, c)
	})
	return out
}

// rowText joins the trimmed text of every cell with single spaces.
func rowText(row *goquery.Selection) string {
	var parts []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		if t := strings.Join(strings.Fields(cell.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return strings.Join(strings.Fields(row.Text()), " ")
	}
	return strings.Join(parts, " ")
}
