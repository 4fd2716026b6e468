package sim

import "testing"

func TestDramaSouredRelationship(t *testing.T) {
	player := healthyPlayer()
	npcs := []NPC{
		{ID: "n1", Name: "Theo", Role: "banker", Relationship: 10},
		{ID: "n2", Name: "Priya", Role: "lawyer", Relationship: 15},
	}

	// Roll clears the 0.7 gate.
	d := GenerateNPCDrama(player, npcs, 5, &scriptedSource{vals: []float64{0.9}})
	if d == nil {
		t.Fatal("expected a drama for the soured relationship")
	}
	if d.NPCID != "n1" {
		t.Fatalf("drama targeted %s, want first soured npc n1", d.NPCID)
	}
	if d.ExpiresWeek != 7 {
		t.Fatalf("expiry = %d, want week+2 = 7", d.ExpiresWeek)
	}
	if len(d.Choices) != 3 {
		t.Fatalf("choices = %d, want 3", len(d.Choices))
	}
}

func TestDramaFirstCandidateBlocksTheRest(t *testing.T) {
	// A low relationship exists but its roll misses. The chain stops there
	// even though the stress candidate would roll well.
	player := healthyPlayer()
	player.Stress = 90
	npcs := []NPC{{ID: "n1", Name: "Theo", Role: "banker", Relationship: 10}}

	d := GenerateNPCDrama(player, npcs, 5, &scriptedSource{vals: []float64{0.1, 0.99}})
	if d == nil {
		t.Fatal("expected the stress intervention")
	}
	if d.Title == "Theo stops returning your calls" {
		t.Fatal("soured-relationship drama fired despite a missed roll")
	}
}

func TestDramaStressIntervention(t *testing.T) {
	player := healthyPlayer()
	player.Stress = 90
	npcs := []NPC{{ID: "n2", Name: "Walt", Role: "mentor", Relationship: 80}}

	d := GenerateNPCDrama(player, npcs, 5, &scriptedSource{vals: []float64{0.9}})
	if d == nil {
		t.Fatal("expected an intervention")
	}
	if d.NPCID != "n2" {
		t.Fatalf("intervention should name the trusted npc, got %q", d.NPCID)
	}
	if d.Choices[0].Effect.Relationships["n2"] != 10 {
		t.Fatal("listening should improve the mentor relationship")
	}
}

func TestDramaNothingHappens(t *testing.T) {
	player := healthyPlayer()
	if d := GenerateNPCDrama(player, nil, 5, &scriptedSource{vals: []float64{0.0}}); d != nil {
		t.Fatalf("calm state produced drama: %+v", d)
	}
}

func TestRivalCompetingBid(t *testing.T) {
	player := healthyPlayer()
	target := baseCompany()
	target.DealClosed = false
	target.DealPhase = PhaseBidding
	player.Portfolio = []PortfolioCompany{target}

	rivals := []RivalFund{{ID: "r1", Name: "Sterling Ridge", Aggression: 0.9, Reputation: 50}}
	a := GenerateRivalAction(player, rivals, 5, &scriptedSource{vals: []float64{0.0}})
	if a == nil {
		t.Fatal("expected a rival action")
	}
	if a.Kind != "competing_bid" {
		t.Fatalf("kind = %s, want competing_bid", a.Kind)
	}
	if a.CompanyID != target.ID {
		t.Fatalf("action should name the contested company, got %q", a.CompanyID)
	}
}

func TestRivalTalentPoach(t *testing.T) {
	player := healthyPlayer()
	player.Reputation = 40
	rivals := []RivalFund{{ID: "r1", Name: "Granite Peak", Aggression: 0.2, Reputation: 90}}

	// First draw picks the rival, second clears the 0.5 poach roll.
	a := GenerateRivalAction(player, rivals, 5, &scriptedSource{vals: []float64{0.0, 0.9}})
	if a == nil || a.Kind != "talent_poach" {
		t.Fatalf("expected talent_poach, got %+v", a)
	}
}

func TestRivalFallbackFundraise(t *testing.T) {
	player := healthyPlayer()
	player.Reputation = 95
	rivals := []RivalFund{{ID: "r1", Name: "Granite Peak", Aggression: 0.2, Reputation: 50, DryPowder: 800_000_000}}

	a := GenerateRivalAction(player, rivals, 5, &scriptedSource{vals: []float64{0.0}})
	if a == nil || a.Kind != "fundraise_announcement" {
		t.Fatalf("expected fundraise_announcement, got %+v", a)
	}
	if a.ExpiresWeek != 9 {
		t.Fatalf("expiry = %d, want week+4", a.ExpiresWeek)
	}
}

func TestRivalActionNoRivals(t *testing.T) {
	if a := GenerateRivalAction(healthyPlayer(), nil, 5, NewSeeded(1)); a != nil {
		t.Fatalf("no rivals should mean no action, got %+v", a)
	}
}

func TestMarketShiftsRespectRegimeGraph(t *testing.T) {
	allowed := map[MarketVolatility]map[MarketVolatility]bool{
		VolatilityNormal:       {VolatilityBullRun: true, VolatilityCreditCrunch: true, VolatilityNormal: true},
		VolatilityBullRun:      {VolatilityNormal: true, VolatilityPanic: true},
		VolatilityCreditCrunch: {VolatilityPanic: true, VolatilityNormal: true},
		VolatilityPanic:        {VolatilityCreditCrunch: true},
	}

	for from, targets := range allowed {
		seen := make(map[MarketVolatility]bool)
		for seed := int64(0); seed < 200; seed++ {
			ev := GenerateMarketEvent(from, 5, NewSeeded(seed))
			if ev == nil {
				t.Fatalf("%s: no shift generated", from)
			}
			if !targets[ev.NewVolatility] {
				t.Fatalf("%s: illegal transition to %s", from, ev.NewVolatility)
			}
			seen[ev.NewVolatility] = true
		}
		if len(seen) != len(targets) {
			t.Fatalf("%s: only reached %v of %v", from, seen, targets)
		}
	}
}
