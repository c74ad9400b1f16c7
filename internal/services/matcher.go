package services

// MatchResult is the outcome of disambiguating a search result set.
// Exactly one of three states holds: Match set (auto-resolved),
// Candidates populated (caller must choose), or neither (no match).
type MatchResult struct {
	Match      *CardRecord  `json:"match,omitempty"`
	Candidates []CardRecord `json:"candidates,omitempty"`
}

// NoMatch reports an empty search result. Not an error.
func (r MatchResult) NoMatch() bool {
	return r.Match == nil && len(r.Candidates) == 0
}

// MatchCards applies the disambiguation rule to a search result set:
// a single candidate resolves automatically; two or more are handed back
// for the caller to choose from, in the order the API returned them.
// No scoring or ranking is applied.
func MatchCards(records []CardRecord) MatchResult {
	switch len(records) {
	case 0:
		return MatchResult{}
	case 1:
		return MatchResult{Match: &records[0]}
	default:
		return MatchResult{Candidates: records}
	}
}
