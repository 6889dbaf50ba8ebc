package location

// Candidate is one raw row from a location lookup.
type Candidate struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	FullText    string `json:"full_text"`
}

// ScoredCandidate is an eligible candidate with its match score.
type ScoredCandidate struct {
	Candidate
	Score int `json:"score"`
}

// Match is the resolver's pick for a query.
type Match struct {
	ScoredCandidate
	// Region is parsed from FullText ("USA, Maryland, Ocean City"); empty when
	// the text has a different shape.
	Region     string `json:"region,omitempty"`
	RegionAbbr string `json:"region_abbr,omitempty"`
}

// Query is a parsed free-text city query.
type Query struct {
	City   string
	Region string // empty when the query had no region hint
}
