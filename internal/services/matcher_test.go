package services

import "testing"

func TestMatchCardsSingleCandidateAutoResolves(t *testing.T) {
	records := []CardRecord{{ID: "pokemon-base1-charizard-holo-rare"}}

	result := MatchCards(records)
	if result.Match == nil {
		t.Fatal("expected an automatic match")
	}
	if result.Match.ID != records[0].ID {
		t.Errorf("matched %s, want %s", result.Match.ID, records[0].ID)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.Candidates))
	}
	if result.NoMatch() {
		t.Error("NoMatch() = true for a resolved match")
	}
}

func TestMatchCardsMultipleCandidatesDeferChoice(t *testing.T) {
	records := []CardRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	result := MatchCards(records)
	if result.Match != nil {
		t.Errorf("expected no automatic match, got %s", result.Match.ID)
	}
	if len(result.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(result.Candidates))
	}
	// Ordering is whatever the API returned
	for i, want := range []string{"a", "b", "c"} {
		if result.Candidates[i].ID != want {
			t.Errorf("candidate[%d] = %s, want %s", i, result.Candidates[i].ID, want)
		}
	}
}

func TestMatchCardsEmptyResultIsNoMatch(t *testing.T) {
	result := MatchCards(nil)
	if !result.NoMatch() {
		t.Error("expected NoMatch() for an empty result set")
	}
	if result.Match != nil || len(result.Candidates) != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
}
