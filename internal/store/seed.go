package store

import (
	"github.com/google/uuid"

	"dealflow/internal/sim"
)

// NewGameState builds the week-one save: a fresh fund, the starter deal
// pipeline, and the standing cast of rivals and contacts.
func NewGameState(seed int64, volatility sim.MarketVolatility, seedPipeline bool) GameState {
	state := GameState{
		Player: sim.PlayerState{
			Cash:       500_000,
			Health:     80,
			Stress:     20,
			Reputation: 40,
			Ethics:     70,
			AuditRisk:  5,
			Level:      1,
			Relationships: map[string]int{
				"npc_banker": 50,
				"npc_lawyer": 55,
				"npc_mentor": 70,
			},
		},
		Rivals:     starterRivals(),
		NPCs:       starterNPCs(),
		Week:       1,
		Volatility: volatility,
		Seed:       seed,
	}
	if seedPipeline {
		state.Player.Portfolio = starterPipeline()
	}
	return state
}

// starterPipeline is the opening deal funnel. One closed platform company so
// the quarterly simulator has something to chew on from week one, plus live
// targets at each funnel stage.
func starterPipeline() []sim.PortfolioCompany {
	return []sim.PortfolioCompany{
		{
			ID:               uuid.NewString(),
			Name:             "Harbor Logistics Group",
			Sector:           "logistics",
			DealType:         "buyout",
			Revenue:          42_000_000,
			EBITDA:           6_300_000,
			EBITDAMargin:     0.15,
			Debt:             24_000_000,
			CashBalance:      3_100_000,
			CurrentValuation: 58_000_000,
			RevenueGrowth:    0.08,
			EmployeeCount:    310,
			CustomerChurn:    0.04,
			RunwayMonths:     sim.RunwayInfinite,
			CEOPerformance:   72,
			BoardAlignment:   80,
			IsAnalyzed:       true,
			DealClosed:       true,
			DealPhase:        sim.PhaseWon,
			EntryEquity:      18_000_000,
			AcquiredWeek:     1,
		},
		{
			ID:               uuid.NewString(),
			Name:             "Meridian Dental Partners",
			Sector:           "healthcare",
			DealType:         "rollup",
			Revenue:          28_000_000,
			EBITDA:           5_600_000,
			EBITDAMargin:     0.20,
			CurrentValuation: 67_000_000,
			RevenueGrowth:    0.14,
			EmployeeCount:    450,
			CustomerChurn:    0.06,
			CEOPerformance:   65,
			BoardAlignment:   70,
			IsAnalyzed:       true,
			DealPhase:        sim.PhaseBidding,
		},
		{
			ID:               uuid.NewString(),
			Name:             "Cobalt Software Systems",
			Sector:           "software",
			DealType:         "growth",
			Revenue:          15_000_000,
			EBITDA:           2_250_000,
			EBITDAMargin:     0.15,
			CurrentValuation: 54_000_000,
			RevenueGrowth:    0.32,
			EmployeeCount:    120,
			CustomerChurn:    0.09,
			CEOPerformance:   85,
			BoardAlignment:   75,
			IsAnalyzed:       true,
			DealPhase:        sim.PhaseAnalyzed,
		},
		{
			ID:               uuid.NewString(),
			Name:             "Pinnacle Food Services",
			Sector:           "consumer",
			DealType:         "buyout",
			Revenue:          95_000_000,
			EBITDA:           7_600_000,
			CurrentValuation: 72_000_000,
			RevenueGrowth:    0.03,
			EmployeeCount:    1200,
			DealPhase:        sim.PhasePipeline,
		},
		{
			ID:               uuid.NewString(),
			Name:             "Atlas Testing Labs",
			Sector:           "industrials",
			DealType:         "carveout",
			Revenue:          22_000_000,
			EBITDA:           4_400_000,
			CurrentValuation: 48_000_000,
			RevenueGrowth:    0.11,
			EmployeeCount:    260,
			DealPhase:        sim.PhasePipeline,
		},
	}
}

func starterRivals() []sim.RivalFund {
	return []sim.RivalFund{
		{
			ID:         "rival_sterling",
			Name:       "Sterling Ridge Capital",
			Aggression: 0.8,
			Reputation: 70,
			DryPowder:  900_000_000,
		},
		{
			ID:         "rival_granite",
			Name:       "Granite Creek Partners",
			Aggression: 0.4,
			Reputation: 55,
			DryPowder:  400_000_000,
		},
		{
			ID:         "rival_helix",
			Name:       "Helix Growth Equity",
			Aggression: 0.6,
			Reputation: 45,
			DryPowder:  250_000_000,
		},
	}
}

func starterNPCs() []sim.NPC {
	return []sim.NPC{
		{ID: "npc_banker", Name: "Theo Marchetti", Role: "sell-side banker", Relationship: 50},
		{ID: "npc_lawyer", Name: "Priya Raman", Role: "deal counsel", Relationship: 55},
		{ID: "npc_mentor", Name: "Walt Donnelly", Role: "retired fund founder", Relationship: 70},
		{ID: "npc_lp", Name: "Agnes Kohl", Role: "anchor LP", Relationship: 45},
		{ID: "npc_journalist", Name: "Sam Ito", Role: "financial reporter", Relationship: 35},
	}
}
