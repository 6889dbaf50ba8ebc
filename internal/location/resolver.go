package location

import (
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// DefaultCountryMarker is the text a candidate row must contain to be eligible.
const DefaultCountryMarker = "USA"

// ErrNoEligibleCandidate is returned when no candidate passes the country
// filter and the city-name gate.
var ErrNoEligibleCandidate = errors.New("no eligible location candidate")

// disqualifyingTerms demote sub-districts and directional qualifiers.
var disqualifyingTerms = []string{"historical", "district", "north", "south", "east", "west"}

const (
	exactNameBonus     = 100
	partialNameBonus   = 50
	regionMatchBonus   = 50
	regionMismatch     = -20
	exactNameExtra     = 30
	disqualifyingTerm  = -10
	diagnosticTopCount = 3
)

// Resolver picks the best location for a free-text city query.
type Resolver struct {
	regions  *RegionTable
	marker   string
	regionRe *regexp.Regexp
	log      *slog.Logger
}

// NewResolver constructs a Resolver. An empty marker falls back to
// DefaultCountryMarker and a nil logger discards output.
func NewResolver(regions *RegionTable, marker string, log *slog.Logger) *Resolver {
	if regions == nil {
		regions = Regions
	}
	if marker == "" {
		marker = DefaultCountryMarker
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		regions:  regions,
		marker:   marker,
		regionRe: regexp.MustCompile(regexp.QuoteMeta(marker) + `,\s*([\w\s\-]+),`),
		log:      log,
	}
}

// ParseQuery splits "<city>, <region>" at the first comma. When nothing
// precedes the comma the whole input is kept as the city.
func ParseQuery(raw string) Query {
	raw = strings.TrimSpace(raw)
	city, region, found := strings.Cut(raw, ",")
	if !found {
		return Query{City: raw}
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return Query{City: raw}
	}
	return Query{City: city, Region: strings.TrimSpace(region)}
}

// Score ranks every eligible candidate for q, highest first. Candidates
// without an identifier, outside the country marker, or whose display name
// does not contain the city are left out entirely.
func (r *Resolver) Score(q Query, candidates []Candidate) []ScoredCandidate {
	city := strings.ToLower(strings.TrimSpace(q.City))
	if city == "" {
		return nil
	}
	regionFull := ""
	if q.Region != "" {
		regionFull = r.regions.Expand(q.Region)
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Identifier == "" {
			continue
		}
		if !strings.Contains(c.FullText, r.marker) {
			continue
		}

		name := strings.ToLower(c.DisplayName)
		exact := name == city

		score := 0
		switch {
		case exact:
			score += exactNameBonus
		case strings.Contains(name, city):
			score += partialNameBonus
		default:
			continue
		}

		if q.Region != "" {
			if strings.Contains(c.FullText, strings.ToUpper(q.Region)) ||
				(regionFull != "" && strings.Contains(c.FullText, regionFull)) {
				score += regionMatchBonus
			} else {
				score += regionMismatch
			}
		}

		// Exact names are rewarded a second time on purpose; see DESIGN.md.
		if exact {
			score += exactNameExtra
		}

		lowerText := strings.ToLower(c.FullText)
		for _, term := range disqualifyingTerms {
			if strings.Contains(lowerText, term) {
				score += disqualifyingTerm
				break
			}
		}

		scored = append(scored, ScoredCandidate{Candidate: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Resolve returns the best candidate for the raw query.
func (r *Resolver) Resolve(raw string, candidates []Candidate) (Match, error) {
	q := ParseQuery(raw)
	scored := r.Score(q, candidates)
	if len(scored) == 0 {
		r.log.Info("no eligible location", "query", raw, "candidates", len(candidates))
		return Match{}, ErrNoEligibleCandidate
	}

	for i, s := range scored {
		if i == diagnosticTopCount {
			break
		}
		r.log.Info("location match", "rank", i+1, "text", s.FullText, "score", s.Score)
	}

	best := scored[0]
	region := r.RegionOf(best.FullText)
	m := Match{ScoredCandidate: best, Region: region}
	if region != "" {
		m.RegionAbbr = r.regions.Abbreviation(region)
	}
	r.log.Info("selected location", "query", raw, "name", best.DisplayName, "id", best.Identifier)
	return m, nil
}

// RegionOf extracts the region segment from "<marker>, <region>, <city>".
func (r *Resolver) RegionOf(fullText string) string {
	m := r.regionRe.FindStringSubmatch(fullText)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
