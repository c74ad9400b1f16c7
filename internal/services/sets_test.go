package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/psyrax/pokePrices/internal/models"
)

func newSetServer(t *testing.T, cardsCount int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": [
			{"id": "base1", "name": "Base Set", "game_id": "pokemon", "game": "Pokemon", "release_date": "1999-01-09", "cards_count": %d},
			{"id": "sv8", "name": "Surging Sparks", "game_id": "pokemon", "game": "Pokemon", "release_date": "2024-11-08", "cards_count": 252}
		]}`, cardsCount)
	}))
}

func TestRefreshSetsUpserts(t *testing.T) {
	db := newTestDB(t)

	ts := newSetServer(t, 102)
	svc, err := NewSetService(newTestClient(ts, ""), db, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	if n, err := svc.RefreshSets(context.Background(), "pokemon"); err != nil || n != 2 {
		t.Fatalf("RefreshSets() = %d, %v", n, err)
	}
	ts.Close()

	// Second refresh with changed counts updates in place instead of duplicating
	ts = newSetServer(t, 103)
	defer ts.Close()
	svc, err = NewSetService(newTestClient(ts, ""), db, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RefreshSets(context.Background(), "pokemon"); err != nil {
		t.Fatal(err)
	}

	var total int64
	db.Model(&models.GameSet{}).Count(&total)
	if total != 2 {
		t.Errorf("stored %d sets, want 2", total)
	}

	var base models.GameSet
	if err := db.First(&base, "code = ?", "base1").Error; err != nil {
		t.Fatal(err)
	}
	if base.CardsCount != 103 {
		t.Errorf("cards_count = %d, want 103", base.CardsCount)
	}
}

func TestLookupSetServesRepeatsFromCache(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewSetService(NewJustTCGClient(JustTCGConfig{}), db, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}

	release := "1999-01-09"
	db.Create(&models.GameSet{Code: "base1", Name: "Base Set", GameID: "pokemon", Game: "Pokemon", ReleaseDate: &release, CardsCount: 102})

	set, err := svc.LookupSet("base1")
	if err != nil || set == nil || set.Name != "Base Set" {
		t.Fatalf("LookupSet() = %+v, %v", set, err)
	}

	// The row can vanish underneath; the cached entry still answers
	db.Delete(&models.GameSet{}, "code = ?", "base1")
	set, err = svc.LookupSet("base1")
	if err != nil || set == nil {
		t.Fatalf("cached LookupSet() = %+v, %v", set, err)
	}

	if missing, err := svc.LookupSet("nope"); err != nil || missing != nil {
		t.Errorf("unknown code: got %+v, %v, want nil, nil", missing, err)
	}
}

func TestListStoredNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewSetService(NewJustTCGClient(JustTCGConfig{}), db, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}

	old, recent := "1999-01-09", "2024-11-08"
	db.Create(&models.GameSet{Code: "base1", Name: "Base Set", GameID: "pokemon", Game: "Pokemon", ReleaseDate: &old})
	db.Create(&models.GameSet{Code: "sv8", Name: "Surging Sparks", GameID: "pokemon", Game: "Pokemon", ReleaseDate: &recent})

	sets, err := svc.ListStored("Pokemon")
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 || sets[0].Code != "sv8" || sets[1].Code != "base1" {
		t.Errorf("unexpected order: %+v", sets)
	}
}
