package engine_test

import (
	"reflect"
	"testing"

	"dutch/internal/engine"
)

func TestStandings(t *testing.T) {
	players := []engine.Player{
		{ID: "a", Name: "Ann", TotalScore: 10},
		{ID: "b", Name: "Bo", TotalScore: 5},
		{ID: "c", Name: "Cy", TotalScore: 10},
		{ID: "d", Name: "Di", TotalScore: 20},
	}
	rows := engine.Standings(players)

	var ids []string
	var ranks []int
	for _, r := range rows {
		ids = append(ids, r.PlayerID)
		ranks = append(ranks, r.Rank)
	}
	if !reflect.DeepEqual(ids, []string{"b", "a", "c", "d"}) {
		t.Errorf("order = %v", ids)
	}
	if !reflect.DeepEqual(ranks, []int{1, 2, 2, 4}) {
		t.Errorf("ranks = %v", ranks)
	}
}

func TestLeaders(t *testing.T) {
	players := []engine.Player{{ID: "a", TotalScore: 4}, {ID: "b", TotalScore: 9}, {ID: "c", TotalScore: 4}}
	if got := engine.Leaders(players); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Leaders() = %v, want [a c]", got)
	}
	if got := engine.Leaders(nil); got != nil {
		t.Fatalf("Leaders(nil) = %v", got)
	}
}

func TestHistoryRunningTotals(t *testing.T) {
	g := newTestGame(t, "P1", "P2")
	g, _ = addRound(t, g, engine.RawScores{"P1": 10, "P2": 5})
	g, _ = addRound(t, g, engine.RawScores{"P1": 1, "P2": 8})

	rows := engine.History(g.Players, g.Ledger)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[1].RunningTotals, []int{11, 13}) {
		t.Errorf("running totals = %v, want [11 13]", rows[1].RunningTotals)
	}
	if rows[0].DutchPlayerID != "P2" || rows[1].DutchPlayerID != "P1" {
		t.Errorf("dutch = %s/%s", rows[0].DutchPlayerID, rows[1].DutchPlayerID)
	}

	v := g.View()
	if v.Round != 2 || v.GameOver || len(v.Standings) != 2 || v.Standings[0].PlayerID != "P1" {
		t.Errorf("view = %+v", v)
	}
}
