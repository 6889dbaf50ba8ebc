// Package links builds outbound hotel-search URLs for trip windows.
package links

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	expediaSearchURL = "https://www.expedia.com/Hotel-Search"
	countryName      = "United States of America"
	dateLayout       = "2006-01-02"
)

// Builder produces hotel-search URLs against a configurable base URL.
type Builder struct {
	baseURL string
}

// NewBuilder returns a Builder for the production Expedia search page.
func NewBuilder() *Builder {
	return &Builder{baseURL: expediaSearchURL}
}

// NewBuilderWithURL returns a Builder pointing at a custom base URL (for tests).
func NewBuilderWithURL(baseURL string) *Builder {
	return &Builder{baseURL: baseURL}
}

// HotelSearchURL returns the search URL for hotels in city between start and
// end, capped at maxPrice per night. regionAbbr may be empty.
func (b *Builder) HotelSearchURL(city, regionAbbr string, start, end time.Time, maxPrice int) string {
	destination := city + ", " + countryName
	if regionAbbr != "" {
		destination = city + ", " + regionAbbr + ", " + countryName
	}

	params := []string{
		"MDPCID=US.META.HPA.HOTEL-CORESEARCH-desktop.HOTEL",
		"adults=2",
		"children=",
		"destination=" + url.QueryEscape(destination),
		"endDate=" + end.Format(dateLayout),
		"startDate=" + start.Format(dateLayout),
		"sort=REVIEW_RELEVANT",
		"paymentType=FREE_CANCELLATION",
		"price=0",
		"price=" + strconv.Itoa(maxPrice),
		"stay_options_group=hotels_option",
	}
	return b.baseURL + "?" + strings.Join(params, "&")
}
