package sim

// Per-tick gate probabilities for the narrative generators. These live in the
// orchestrator, not in the generators, so the generators stay pure content
// selection.
const (
	dramaChance       = 0.10
	rivalChance       = 0.05
	marketEventChance = 0.02
)

// Tick advances the world by one simulated week and returns everything that
// happened. Fully reproducible given a seeded Source; the input state is
// never mutated, the caller merges the result.
//
// Order matters within one tick: a company's quarterly update is computed
// before its event check, because the trigger engine reads post-update
// fields. Across companies the order is irrelevant.
func Tick(player PlayerState, rivals []RivalFund, npcs []NPC, currentWeek int, volatility MarketVolatility, rng Source) WorldTickResult {
	result := WorldTickResult{
		Week:           currentWeek,
		QuarterClosed:  currentWeek%WeeksPerQuarter == 0,
		CompanyUpdates: make(map[string]CompanyUpdate),
	}

	for i := range player.Portfolio {
		c := player.Portfolio[i]
		if !c.DealClosed {
			continue
		}
		NormalizeCompany(&c)

		var upd *CompanyUpdate
		if result.QuarterClosed {
			u := SimulateQuarter(c, volatility, rng)
			result.CompanyUpdates[c.ID] = u
			upd = &u
		}

		if ev := CheckCompanyEvent(c, upd, currentWeek, rng); ev != nil {
			result.NewEvents = append(result.NewEvents, *ev)
		}
	}

	result.Warnings = GenerateWarnings(player, currentWeek)

	if chance(rng, dramaChance) {
		result.Drama = GenerateNPCDrama(player, npcs, currentWeek, rng)
	}
	if chance(rng, rivalChance) {
		result.RivalAction = GenerateRivalAction(player, rivals, currentWeek, rng)
	}
	if chance(rng, marketEventChance) {
		result.MarketEvent = GenerateMarketEvent(volatility, currentWeek, rng)
	}

	return result
}

// ApplyTick merges a tick result into player state: company snapshots are
// replaced wholesale and new events are attached. Warnings are derived data
// and are not stored. Narrative events (drama, rival, market) carry player
// choices and are left to the host to resolve.
func ApplyTick(player *PlayerState, result WorldTickResult) {
	for i := range player.Portfolio {
		c := &player.Portfolio[i]
		if u, ok := result.CompanyUpdates[c.ID]; ok {
			c.Apply(u)
		}
	}
	for _, ev := range result.NewEvents {
		ev := ev
		for i := range player.Portfolio {
			if player.Portfolio[i].ID == ev.CompanyID {
				player.Portfolio[i].ActiveEvent = &ev
				break
			}
		}
	}
}

// ApplyChoice applies a drama choice's stat payload to player state, clamping
// the bounded stats.
func ApplyChoice(player *PlayerState, choice DramaChoice) {
	player.Cash += choice.Effect.Cash
	player.Health = clampInt(player.Health+choice.Effect.Health, 0, 100)
	player.Stress = clampInt(player.Stress+choice.Effect.Stress, 0, 100)
	player.Reputation = clampInt(player.Reputation+choice.Effect.Reputation, 0, 100)
	player.Ethics = clampInt(player.Ethics+choice.Effect.Ethics, 0, 100)
	player.AuditRisk = clampInt(player.AuditRisk+choice.Effect.AuditRisk, 0, 100)
	if len(choice.Effect.Relationships) > 0 && player.Relationships == nil {
		player.Relationships = make(map[string]int)
	}
	for id, delta := range choice.Effect.Relationships {
		player.Relationships[id] = clampInt(player.Relationships[id]+delta, 0, 100)
	}
}
