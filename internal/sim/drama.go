package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// Drama selection deliberately keeps the original priority-chain semantics:
// candidates are checked in a fixed order and each eligible candidate rolls
// its own independent gate. The first candidate whose condition holds AND
// whose roll clears wins; later candidates are then never considered. Game
// balance was tuned against these nested rolls, so they are not collapsed
// into a single weighted draw.

const dramaExpiryWeeks = 2

// GenerateNPCDrama returns at most one triggered NPC drama for this tick.
// The 10% outer gate lives in Tick, not here.
func GenerateNPCDrama(player PlayerState, npcs []NPC, currentWeek int, rng Source) *NPCDrama {
	// Candidate 1: a relationship has soured badly.
	for _, npc := range npcs {
		if npc.Relationship >= 30 {
			continue
		}
		if rng.Next() > 0.7 {
			return &NPCDrama{
				ID:          uuid.NewString(),
				NPCID:       npc.ID,
				Title:       fmt.Sprintf("%s stops returning your calls", npc.Name),
				Description: fmt.Sprintf("%s (%s) has gone cold after your last exchange. Word of a falling-out is starting to circulate.", npc.Name, npc.Role),
				Urgency:     LevelHigh,
				ExpiresWeek: currentWeek + dramaExpiryWeeks,
				Choices: []DramaChoice{
					{
						ID:      "apologize",
						Label:   "Swallow your pride and make it right",
						Outcome: "A long dinner and a longer apology. The relationship thaws, but everyone saw you grovel.",
						Effect:  StatDelta{Stress: 5, Reputation: -3, Relationships: map[string]int{npc.ID: 20}},
					},
					{
						ID:      "freeze_out",
						Label:   "Freeze them out first",
						Outcome: "You move your business elsewhere. Clean break, new enemy.",
						Effect:  StatDelta{Stress: -5, Relationships: map[string]int{npc.ID: -15}},
					},
					{
						ID:      "spread_word",
						Label:   "Quietly poison the well",
						Outcome: "Two phone calls and their pipeline dries up. Effective, and exactly the kind of thing that gets around.",
						Effect:  StatDelta{Ethics: -10, AuditRisk: 5, Reputation: 2, Relationships: map[string]int{npc.ID: -30}},
					},
				},
			}
		}
		break
	}

	// Candidate 2: stress-driven intervention from a mentor figure.
	if player.Stress > 70 && rng.Next() > 0.8 {
		npcID := ""
		npcName := "Your old mentor"
		for _, npc := range npcs {
			if npc.Relationship > 60 {
				npcID = npc.ID
				npcName = npc.Name
				break
			}
		}
		drama := &NPCDrama{
			ID:          uuid.NewString(),
			NPCID:       npcID,
			Title:       fmt.Sprintf("%s stages an intervention", npcName),
			Description: "You look terrible and everyone has noticed. An unsolicited lecture about burnout, delivered over a lunch you did not have time for.",
			Urgency:     LevelMedium,
			ExpiresWeek: currentWeek + dramaExpiryWeeks,
			Choices: []DramaChoice{
				{
					ID:      "listen",
					Label:   "Actually listen",
					Outcome: "You take the weekend off for the first time in months.",
					Effect:  StatDelta{Stress: -20, Health: 5},
				},
				{
					ID:      "brush_off",
					Label:   "Nod along and get back to work",
					Outcome: "The deals won't close themselves.",
					Effect:  StatDelta{Stress: 5},
				},
			},
		}
		if npcID != "" {
			drama.Choices[0].Effect.Relationships = map[string]int{npcID: 10}
		}
		return drama
	}

	// Candidate 3: success attracts press attention.
	if player.Reputation > 60 && rng.Next() > 0.85 {
		return &NPCDrama{
			ID:          uuid.NewString(),
			Title:       "A journalist wants a profile",
			Description: "A financial reporter is writing a piece on rising fund managers and wants an interview. Flattering, and dangerous.",
			Urgency:     LevelMedium,
			ExpiresWeek: currentWeek + dramaExpiryWeeks,
			Choices: []DramaChoice{
				{
					ID:      "sit_down",
					Label:   "Give the interview",
					Outcome: "The piece runs mostly flattering. Your LPs forward it to each other.",
					Effect:  StatDelta{Reputation: 8, Stress: 5, AuditRisk: 3},
				},
				{
					ID:      "decline",
					Label:   "Politely decline",
					Outcome: "The piece runs anyway, thinner and less kind.",
					Effect:  StatDelta{Reputation: -2},
				},
				{
					ID:      "leak_rival",
					Label:   "Redirect them to a rival's problems",
					Outcome: "The story finds a different target. You sleep fine, mostly.",
					Effect:  StatDelta{Ethics: -8, Reputation: 3},
				},
			},
		}
	}

	return nil
}

// GenerateRivalAction returns at most one rival-fund move for this tick. The
// 5% outer gate lives in Tick.
func GenerateRivalAction(player PlayerState, rivals []RivalFund, currentWeek int, rng Source) *RivalAction {
	if len(rivals) == 0 {
		return nil
	}
	rival := rivals[PickIndex(rng, len(rivals))]

	// An aggressive rival goes after a live process if the player has one.
	if rival.Aggression > 0.5 {
		for i := range player.Portfolio {
			c := &player.Portfolio[i]
			if c.DealPhase != PhaseBidding && c.DealPhase != PhaseAnalyzed {
				continue
			}
			return &RivalAction{
				ID:          uuid.NewString(),
				RivalID:     rival.ID,
				Kind:        "competing_bid",
				Title:       fmt.Sprintf("%s enters the %s process", rival.Name, c.Name),
				Description: fmt.Sprintf("%s submitted an indication on %s. The banker is suddenly much less responsive to you.", rival.Name, c.Name),
				CompanyID:   c.ID,
				Urgency:     LevelHigh,
				ExpiresWeek: currentWeek + 2,
			}
		}
	}

	if rival.Reputation > player.Reputation && rng.Next() > 0.5 {
		return &RivalAction{
			ID:          uuid.NewString(),
			RivalID:     rival.ID,
			Kind:        "talent_poach",
			Title:       fmt.Sprintf("%s is recruiting your bench", rival.Name),
			Description: fmt.Sprintf("%s has been taking your operating partners to lunch. Expensive lunches.", rival.Name),
			Urgency:     LevelMedium,
			ExpiresWeek: currentWeek + 3,
		}
	}

	return &RivalAction{
		ID:          uuid.NewString(),
		RivalID:     rival.ID,
		Kind:        "fundraise_announcement",
		Title:       fmt.Sprintf("%s announces a new fund", rival.Name),
		Description: fmt.Sprintf("%s closed a fresh vehicle with %s of dry powder. Every banker in town now has their number.", rival.Name, FormatMoney(rival.DryPowder)),
		Urgency:     LevelMedium,
		ExpiresWeek: currentWeek + 4,
	}
}

// marketShift describes one macro transition reachable from a given regime.
type marketShift struct {
	From        MarketVolatility
	To          MarketVolatility
	Title       string
	Description string
}

var marketShifts = []marketShift{
	{VolatilityNormal, VolatilityBullRun, "Risk appetite returns", "Credit spreads tighten and multiples drift upward. Everything is for sale at a price, and the price is high."},
	{VolatilityNormal, VolatilityCreditCrunch, "Lenders pull back", "Two banks walked from committed financings this week. Leverage just got expensive."},
	{VolatilityBullRun, VolatilityNormal, "The melt-up cools", "The market takes a breath. Bankers call it healthy consolidation."},
	{VolatilityBullRun, VolatilityPanic, "The music stops", "A crowded unwind turns into a rout. Margin calls ripple through the leveraged names."},
	{VolatilityCreditCrunch, VolatilityPanic, "Crunch becomes crisis", "A mid-sized lender fails and the interbank market seizes. Deals die mid-signature."},
	{VolatilityCreditCrunch, VolatilityNormal, "Credit thaws", "The new issue market reopens, cautiously."},
	{VolatilityPanic, VolatilityCreditCrunch, "Panic subsides to a crunch", "The fire sales are over but nobody is lending yet."},
	{VolatilityNormal, VolatilityNormal, "Sector rotation", "Money sloshes between sectors. Your portfolio marks wobble and recover."},
}

// GenerateMarketEvent returns at most one macro event, picked uniformly among
// the shifts reachable from the current regime. The 2% outer gate lives in
// Tick.
func GenerateMarketEvent(current MarketVolatility, currentWeek int, rng Source) *MarketEvent {
	var reachable []marketShift
	for _, s := range marketShifts {
		if s.From == current {
			reachable = append(reachable, s)
		}
	}
	if len(reachable) == 0 {
		return nil
	}
	s := reachable[PickIndex(rng, len(reachable))]
	return &MarketEvent{
		ID:            uuid.NewString(),
		Title:         s.Title,
		Description:   s.Description,
		NewVolatility: s.To,
		ExpiresWeek:   currentWeek + 4,
	}
}
