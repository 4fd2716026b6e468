package sim

import (
	"reflect"
	"testing"
)

func findWarning(warnings []Warning, id string) *Warning {
	for i := range warnings {
		if warnings[i].ID == id {
			return &warnings[i]
		}
	}
	return nil
}

func healthyPlayer() PlayerState {
	return PlayerState{
		Cash:       100_000,
		Health:     80,
		Stress:     20,
		Reputation: 60,
		Ethics:     70,
	}
}

func TestCashWarningLevels(t *testing.T) {
	tests := []struct {
		cash  int64
		level WarningLevel
		fires bool
	}{
		{cash: 100_000, fires: false},
		{cash: 5_000, fires: false},
		{cash: 4_999, level: LevelHigh, fires: true},
		{cash: 999, level: LevelCritical, fires: true},
	}
	for _, tc := range tests {
		p := healthyPlayer()
		p.Cash = tc.cash
		w := findWarning(GenerateWarnings(p, 1), "low_cash")
		if !tc.fires {
			if w != nil {
				t.Fatalf("cash %d: unexpected warning %+v", tc.cash, w)
			}
			continue
		}
		if w == nil {
			t.Fatalf("cash %d: expected a warning", tc.cash)
		}
		if w.Level != tc.level {
			t.Fatalf("cash %d: level = %v, want %v", tc.cash, w.Level, tc.level)
		}
		if w.CurrentValue != float64(tc.cash) || w.Threshold != 5_000 {
			t.Fatalf("cash %d: value/threshold = %v/%v", tc.cash, w.CurrentValue, w.Threshold)
		}
	}
}

func TestPersonalStatWarnings(t *testing.T) {
	p := healthyPlayer()
	p.Health = 14
	p.Stress = 95
	p.Reputation = 10

	warnings := GenerateWarnings(p, 1)
	for _, id := range []string{"low_health", "high_stress", "low_reputation"} {
		w := findWarning(warnings, id)
		if w == nil {
			t.Fatalf("expected %s warning", id)
		}
		if w.Level != LevelCritical {
			t.Fatalf("%s: level = %v, want CRITICAL", id, w.Level)
		}
	}
}

func TestLoanBurdenWarning(t *testing.T) {
	p := healthyPlayer()
	p.Cash = 10_000
	p.WeeklyLoanInterest = 2_500
	w := findWarning(GenerateWarnings(p, 1), "loan_burden")
	if w == nil {
		t.Fatal("expected loan burden warning at 25% of cash")
	}
	if w.Level != LevelMedium {
		t.Fatalf("level = %v, want MEDIUM", w.Level)
	}

	p.WeeklyLoanInterest = 4_500
	w = findWarning(GenerateWarnings(p, 1), "loan_burden")
	if w == nil || w.Level != LevelHigh {
		t.Fatalf("expected HIGH at 45%% of cash, got %+v", w)
	}
}

func TestCompanyWarningsRequireClosedDeal(t *testing.T) {
	p := healthyPlayer()
	p.Portfolio = []PortfolioCompany{
		{
			ID:             "open",
			Name:           "Open Target",
			DealClosed:     false,
			HasBoardCrisis: true,
		},
		{
			ID:             "owned",
			Name:           "Owned Co",
			DealClosed:     true,
			HasBoardCrisis: true,
			EBITDA:         -1_000_000,
			RunwayMonths:   4,
			ActiveEvent: &CompanyActiveEvent{
				ID:          "ev",
				CompanyID:   "owned",
				Title:       "Regulatory inquiry",
				ExpiresWeek: 11,
			},
		},
	}

	warnings := GenerateWarnings(p, 10)
	if findWarning(warnings, "board_crisis_open") != nil {
		t.Fatal("warning fired for a deal that is not closed")
	}
	if findWarning(warnings, "board_crisis_owned") == nil {
		t.Fatal("expected board crisis warning for owned company")
	}

	deadline := findWarning(warnings, "event_deadline_owned")
	if deadline == nil {
		t.Fatal("expected event deadline warning")
	}
	if deadline.Level != LevelCritical {
		t.Fatalf("one week left should be CRITICAL, got %v", deadline.Level)
	}

	runway := findWarning(warnings, "low_runway_owned")
	if runway == nil {
		t.Fatal("expected runway warning for cash-burning company")
	}
	if runway.Level != LevelCritical {
		t.Fatalf("4 months runway should be CRITICAL, got %v", runway.Level)
	}
}

func TestWarningsAreStableAcrossCalls(t *testing.T) {
	p := healthyPlayer()
	p.Cash = 500
	p.Stress = 85
	a := GenerateWarnings(p, 3)
	b := GenerateWarnings(p, 3)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same state produced different warnings:\n%+v\n%+v", a, b)
	}
}
