package sim

import "fmt"

// Warning thresholds. These mirror the balance table the game was tuned
// against; warnings fire well before the corresponding fail state.
const (
	cashWarnThreshold     = 5_000
	cashCritThreshold     = 1_000
	healthWarnThreshold   = 30
	healthCritThreshold   = 15
	stressWarnThreshold   = 80
	stressCritThreshold   = 90
	repWarnThreshold      = 30
	repCritThreshold      = 15
	loanBurdenMediumRatio = 0.20
	loanBurdenHighRatio   = 0.40
	runwayWarnMonths      = 12
	runwayCritMonths      = 6
	deadlineWarnWeeks     = 2
)

// GenerateWarnings derives the full list of active risk warnings from player
// state. Stateless and fully regenerated on every call; callers replace, not
// merge.
func GenerateWarnings(player PlayerState, currentWeek int) []Warning {
	warnings := make([]Warning, 0, 8)

	if player.Cash < cashWarnThreshold {
		level := LevelHigh
		if player.Cash < cashCritThreshold {
			level = LevelCritical
		}
		warnings = append(warnings, Warning{
			ID:              "low_cash",
			Kind:            "cash",
			Level:           level,
			Message:         fmt.Sprintf("Personal cash down to %s.", FormatMoney(player.Cash)),
			CurrentValue:    float64(player.Cash),
			Threshold:       cashWarnThreshold,
			SuggestedAction: "Draw management fees or close a deal before you miss rent.",
		})
	}

	if player.Health < healthWarnThreshold {
		level := LevelHigh
		if player.Health < healthCritThreshold {
			level = LevelCritical
		}
		warnings = append(warnings, Warning{
			ID:              "low_health",
			Kind:            "health",
			Level:           level,
			Message:         fmt.Sprintf("Health at %d. You cannot diligence from a hospital bed.", player.Health),
			CurrentValue:    float64(player.Health),
			Threshold:       healthWarnThreshold,
			SuggestedAction: "Take a rest week before something gives.",
		})
	}

	if player.Stress > stressWarnThreshold {
		level := LevelHigh
		if player.Stress > stressCritThreshold {
			level = LevelCritical
		}
		warnings = append(warnings, Warning{
			ID:              "high_stress",
			Kind:            "stress",
			Level:           level,
			Message:         fmt.Sprintf("Stress at %d and climbing.", player.Stress),
			CurrentValue:    float64(player.Stress),
			Threshold:       stressWarnThreshold,
			SuggestedAction: "Delegate something. Anything.",
		})
	}

	if player.Reputation < repWarnThreshold {
		level := LevelHigh
		if player.Reputation < repCritThreshold {
			level = LevelCritical
		}
		warnings = append(warnings, Warning{
			ID:              "low_reputation",
			Kind:            "reputation",
			Level:           level,
			Message:         fmt.Sprintf("Street reputation at %d. LPs are asking questions.", player.Reputation),
			CurrentValue:    float64(player.Reputation),
			Threshold:       repWarnThreshold,
			SuggestedAction: "Win something public, or at least stop losing publicly.",
		})
	}

	if player.Cash > 0 && player.WeeklyLoanInterest > 0 {
		ratio := float64(player.WeeklyLoanInterest) / float64(player.Cash)
		if ratio > loanBurdenMediumRatio {
			level := LevelMedium
			if ratio > loanBurdenHighRatio {
				level = LevelHigh
			}
			warnings = append(warnings, Warning{
				ID:              "loan_burden",
				Kind:            "debt",
				Level:           level,
				Message:         fmt.Sprintf("Weekly interest of %s is eating %.0f%% of your cash.", FormatMoney(player.WeeklyLoanInterest), ratio*100),
				CurrentValue:    ratio,
				Threshold:       loanBurdenMediumRatio,
				SuggestedAction: "Pay down the loan before the interest owns you.",
			})
		}
	}

	for i := range player.Portfolio {
		c := &player.Portfolio[i]
		if !c.DealClosed {
			continue
		}
		if c.HasBoardCrisis {
			warnings = append(warnings, Warning{
				ID:              "board_crisis_" + c.ID,
				Kind:            "board_crisis",
				Level:           LevelHigh,
				Message:         fmt.Sprintf("%s board is in open revolt.", c.Name),
				CurrentValue:    1,
				Threshold:       0,
				SuggestedAction: "Call an emergency board meeting.",
				CompanyID:       c.ID,
			})
		}
		if c.ActiveEvent != nil && !c.ActiveEvent.Expired(currentWeek) {
			weeksLeft := c.ActiveEvent.ExpiresWeek - currentWeek
			if weeksLeft <= deadlineWarnWeeks {
				level := LevelHigh
				if weeksLeft <= 1 {
					level = LevelCritical
				}
				warnings = append(warnings, Warning{
					ID:              "event_deadline_" + c.ID,
					Kind:            "event_deadline",
					Level:           level,
					Message:         fmt.Sprintf("%s: %q needs a decision within %d week(s).", c.Name, c.ActiveEvent.Title, weeksLeft),
					CurrentValue:    float64(weeksLeft),
					Threshold:       deadlineWarnWeeks,
					SuggestedAction: "Resolve the situation before the window closes.",
					CompanyID:       c.ID,
				})
			}
		}
		if c.EBITDA < 0 && c.RunwayMonths < runwayWarnMonths {
			level := LevelHigh
			if c.RunwayMonths < runwayCritMonths {
				level = LevelCritical
			}
			warnings = append(warnings, Warning{
				ID:              "low_runway_" + c.ID,
				Kind:            "runway",
				Level:           level,
				Message:         fmt.Sprintf("%s has %d months of runway left.", c.Name, c.RunwayMonths),
				CurrentValue:    float64(c.RunwayMonths),
				Threshold:       runwayWarnMonths,
				SuggestedAction: "Inject equity, cut burn, or start the sale process.",
				CompanyID:       c.ID,
			})
		}
	}

	return warnings
}
