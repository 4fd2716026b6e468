package sim

import "math"

// WeeksPerQuarter is the simulated quarter boundary: company financials only
// move every 13 weeks, everything else moves weekly.
const WeeksPerQuarter = 13

// volatilityGrowthBias is the additive annual growth adjustment per market
// regime.
var volatilityGrowthBias = map[MarketVolatility]float64{
	VolatilityNormal:       0,
	VolatilityBullRun:      0.05,
	VolatilityCreditCrunch: -0.08,
	VolatilityPanic:        -0.15,
}

// SimulateQuarter advances one company by a single quarter and returns the
// resulting snapshot of its simulated fields. Pure: no I/O, no mutation of
// the input, all randomness drawn from rng.
func SimulateQuarter(c PortfolioCompany, volatility MarketVolatility, rng Source) CompanyUpdate {
	growthRate := c.RevenueGrowth + uniform(rng, -0.05, 0.05)
	growthRate += volatilityGrowthBias[volatility]

	if c.CEOPerformance < 30 {
		growthRate -= 0.05
	} else if c.CEOPerformance > 80 {
		growthRate += 0.03
	}
	if c.BoardAlignment < 40 {
		growthRate -= 0.02
	}

	quarterly := growthRate / 4
	revenue := int64(math.Round(float64(c.Revenue) * (1 + quarterly)))

	margin := c.EBITDAMargin
	if chance(rng, 0.7) {
		margin -= 0.02
	} else {
		margin += 0.01
	}
	margin = clampFloat(margin, 0.05, 0.5)
	ebitda := int64(math.Round(float64(revenue) * margin))

	multiple := 8 + 20*math.Max(0, growthRate)
	valuation := int64(math.Round(float64(ebitda) * multiple))
	if valuation < 0 {
		valuation = 0
	}

	employees := c.EmployeeCount
	switch {
	case growthRate > 0.15:
		employees += int(math.Round(float64(employees) * 0.05))
	case growthRate < -0.10:
		employees -= int(math.Round(float64(employees) * 0.10))
		if employees < 10 {
			employees = 10
		}
	}

	cash := c.CashBalance + ebitda/4 - int64(math.Round(float64(c.Debt)*0.02))

	runway := RunwayInfinite
	if ebitda < 0 {
		monthlyBurn := math.Abs(float64(ebitda)) / 12
		if cash <= 0 {
			runway = 0
		} else {
			runway = int(math.Floor(float64(cash) / monthlyBurn))
		}
	}

	churn := clampFloat(c.CustomerChurn+uniform(rng, -0.01, 0.01), 0, 0.3)

	ceo := c.CEOPerformance
	if chance(rng, 0.10) {
		ceo -= 5
		if ceo < 20 {
			ceo = 20
		}
	}

	board := c.BoardAlignment
	if chance(rng, 0.15) {
		if chance(rng, 0.5) {
			board += 5
		} else {
			board -= 5
		}
		board = clampInt(board, 20, 100)
	}

	return CompanyUpdate{
		CompanyID:        c.ID,
		Revenue:          revenue,
		EBITDA:           ebitda,
		EBITDAMargin:     margin,
		CurrentValuation: valuation,
		CashBalance:      cash,
		RunwayMonths:     runway,
		EmployeeCount:    employees,
		CustomerChurn:    churn,
		CEOPerformance:   ceo,
		BoardAlignment:   board,
		GrowthRate:       growthRate,
	}
}

// NormalizeCompany fills optional fields with documented defaults so the
// engine never has to special-case sparse records mid-tick.
func NormalizeCompany(c *PortfolioCompany) {
	if c.EmployeeCount == 0 && c.Revenue > 0 {
		c.EmployeeCount = int(c.Revenue / 200_000)
		if c.EmployeeCount < 1 {
			c.EmployeeCount = 1
		}
	}
	if c.EBITDAMargin == 0 && c.Revenue > 0 {
		c.EBITDAMargin = float64(c.EBITDA) / float64(c.Revenue)
	}
	if c.CashBalance == 0 {
		c.CashBalance = c.EBITDA / 2
	}
	if c.RunwayMonths == 0 {
		c.RunwayMonths = RunwayInfinite
	}
	if c.CustomerChurn == 0 {
		c.CustomerChurn = 0.05
	}
	if c.CEOPerformance == 0 {
		c.CEOPerformance = 70
	}
	if c.BoardAlignment == 0 {
		c.BoardAlignment = 80
	}
}
