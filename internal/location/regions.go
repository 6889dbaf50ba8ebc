package location

import (
	"sort"
	"strings"
)

// RegionTable maps first-level administrative region codes to full names.
// It is built once and never mutated, so a single instance is shared by the
// resolver and link generation.
type RegionTable struct {
	byCode map[string]string
	byName map[string]string // lower-cased full name -> code
	names  []string          // full names, longest first
}

// Regions is the table of US states plus the District of Columbia.
var Regions = NewRegionTable(map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
	"DC": "District of Columbia",
})

// NewRegionTable copies codeToName into a new immutable table.
func NewRegionTable(codeToName map[string]string) *RegionTable {
	t := &RegionTable{
		byCode: make(map[string]string, len(codeToName)),
		byName: make(map[string]string, len(codeToName)),
		names:  make([]string, 0, len(codeToName)),
	}
	for code, name := range codeToName {
		t.byCode[strings.ToUpper(code)] = name
		t.byName[strings.ToLower(name)] = strings.ToUpper(code)
		t.names = append(t.names, name)
	}
	sort.Slice(t.names, func(i, j int) bool {
		if len(t.names[i]) != len(t.names[j]) {
			return len(t.names[i]) > len(t.names[j])
		}
		return t.names[i] < t.names[j]
	})
	return t
}

// Expand returns the full region name for an abbreviation or a full name,
// case-insensitively. Unknown tokens are returned unchanged.
func (t *RegionTable) Expand(token string) string {
	token = strings.TrimSpace(token)
	if name, ok := t.byCode[strings.ToUpper(token)]; ok {
		return name
	}
	if code, ok := t.byName[strings.ToLower(token)]; ok {
		return t.byCode[code]
	}
	return token
}

// Abbreviation returns the code for a region name. An exact name match wins;
// otherwise the first name (longest first) that contains or is contained in
// name is used. Returns "" when nothing matches.
func (t *RegionTable) Abbreviation(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}
	if code, ok := t.byName[lower]; ok {
		return code
	}
	if _, ok := t.byCode[strings.ToUpper(lower)]; ok {
		return strings.ToUpper(lower)
	}
	for _, n := range t.names {
		ln := strings.ToLower(n)
		if strings.Contains(lower, ln) || strings.Contains(ln, lower) {
			return t.byName[ln]
		}
	}
	return ""
}
