package sim

import (
	"reflect"
	"testing"
)

func tickPlayer() PlayerState {
	owned := baseCompany()
	target := baseCompany()
	target.ID = "co2"
	target.Name = "Target Co"
	target.DealClosed = false
	target.DealPhase = PhaseBidding

	p := healthyPlayer()
	p.Portfolio = []PortfolioCompany{owned, target}
	return p
}

func tickNPCs() []NPC {
	return []NPC{
		{ID: "n1", Name: "Theo", Role: "banker", Relationship: 20},
		{ID: "n2", Name: "Walt", Role: "mentor", Relationship: 80},
	}
}

func tickRivals() []RivalFund {
	return []RivalFund{
		{ID: "r1", Name: "Sterling Ridge", Aggression: 0.9, Reputation: 80, DryPowder: 500_000_000},
	}
}

func TestTickIsReproducible(t *testing.T) {
	player := tickPlayer()
	for week := 1; week <= 26; week++ {
		a := Tick(player, tickRivals(), tickNPCs(), week, VolatilityNormal, NewSeeded(99))
		b := Tick(player, tickRivals(), tickNPCs(), week, VolatilityNormal, NewSeeded(99))
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("week %d: same seed produced different ticks", week)
		}
	}
}

func TestTickQuarterBoundary(t *testing.T) {
	player := tickPlayer()

	mid := Tick(player, nil, nil, 14, VolatilityNormal, NewSeeded(1))
	if mid.QuarterClosed {
		t.Fatal("week 14 should not close a quarter")
	}
	if len(mid.CompanyUpdates) != 0 {
		t.Fatalf("mid-quarter tick produced %d company updates", len(mid.CompanyUpdates))
	}

	boundary := Tick(player, nil, nil, 13, VolatilityNormal, NewSeeded(1))
	if !boundary.QuarterClosed {
		t.Fatal("week 13 should close a quarter")
	}
	if _, ok := boundary.CompanyUpdates["co1"]; !ok {
		t.Fatal("owned company missing its quarterly update")
	}
	if _, ok := boundary.CompanyUpdates["co2"]; ok {
		t.Fatal("unowned target should not be simulated")
	}
}

func TestTickDoesNotMutateInput(t *testing.T) {
	player := tickPlayer()
	snapshot := tickPlayer()
	_ = Tick(player, tickRivals(), tickNPCs(), 13, VolatilityPanic, NewSeeded(5))
	if !reflect.DeepEqual(player, snapshot) {
		t.Fatal("tick mutated the input player state")
	}
}

func TestApplyTickMergesUpdatesAndEvents(t *testing.T) {
	player := tickPlayer()
	result := WorldTickResult{
		Week: 13,
		CompanyUpdates: map[string]CompanyUpdate{
			"co1": {CompanyID: "co1", Revenue: 11_000_000, GrowthRate: 0.18, CEOPerformance: 48, BoardAlignment: 55},
		},
		NewEvents: []CompanyActiveEvent{
			{ID: "ev1", CompanyID: "co2", Type: EventCompetitorThreat, ExpiresWeek: 16},
		},
	}
	ApplyTick(&player, result)

	if player.Portfolio[0].Revenue != 11_000_000 {
		t.Fatalf("revenue not merged: %d", player.Portfolio[0].Revenue)
	}
	if player.Portfolio[0].RevenueGrowth != 0.18 {
		t.Fatalf("growth not merged: %v", player.Portfolio[0].RevenueGrowth)
	}
	if player.Portfolio[1].ActiveEvent == nil || player.Portfolio[1].ActiveEvent.ID != "ev1" {
		t.Fatal("event not attached to its company")
	}
}

func TestApplyChoiceClampsStats(t *testing.T) {
	player := healthyPlayer()
	player.Stress = 95
	player.Relationships = map[string]int{"n1": 95}

	ApplyChoice(&player, DramaChoice{
		ID: "c",
		Effect: StatDelta{
			Cash:          -50_000,
			Stress:        20,
			Health:        50,
			Relationships: map[string]int{"n1": 20},
		},
	})

	if player.Cash != 50_000 {
		t.Fatalf("cash = %d, want 50000", player.Cash)
	}
	if player.Stress != 100 {
		t.Fatalf("stress = %d, want clamp at 100", player.Stress)
	}
	if player.Health != 100 {
		t.Fatalf("health = %d, want clamp at 100", player.Health)
	}
	if player.Relationships["n1"] != 100 {
		t.Fatalf("relationship = %d, want clamp at 100", player.Relationships["n1"])
	}
}
