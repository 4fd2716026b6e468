package sim

import "github.com/google/uuid"

// eventSpec is the single static catalog entry per event type: title,
// severity, and whether resolving it offers an advisor consult.
type eventSpec struct {
	Title          string
	Description    string
	Severity       Severity
	ConsultAdvisor bool
}

var eventCatalog = map[EventType]eventSpec{
	EventRevenueDrop: {
		Title:       "Revenue slide",
		Description: "Bookings came in well under plan and the sales team is pointing fingers.",
		Severity:    SeverityWarning,
	},
	EventKeyCustomerLoss: {
		Title:       "Key customer loss",
		Description: "A top-three account gave notice. Concentration risk just became real.",
		Severity:    SeverityCritical,
	},
	EventManagementDeparture: {
		Title:       "Management departure",
		Description: "A C-suite officer resigned with two weeks' notice and no successor.",
		Severity:    SeverityWarning,
	},
	EventCompetitorThreat: {
		Title:       "Competitor offensive",
		Description: "A well-funded competitor is undercutting pricing in the core segment.",
		Severity:    SeverityWarning,
	},
	EventAcquisitionOpportunity: {
		Title:          "Bolt-on opportunity",
		Description:    "A smaller rival is quietly for sale and the bank wants a fast answer.",
		Severity:       SeverityInfo,
		ConsultAdvisor: true,
	},
	EventRegulatoryIssue: {
		Title:          "Regulatory inquiry",
		Description:    "A regulator opened an inquiry into past billing practices.",
		Severity:       SeverityCritical,
		ConsultAdvisor: true,
	},
	EventUnionDispute: {
		Title:       "Union dispute",
		Description: "Plant workers rejected the contract offer and are threatening a walkout.",
		Severity:    SeverityWarning,
	},
	EventSupplyChainCrisis: {
		Title:       "Supply chain crisis",
		Description: "A sole-source supplier failed and lead times just tripled.",
		Severity:    SeverityCritical,
	},
	EventActivistInvestor: {
		Title:          "Activist on the register",
		Description:    "An activist fund disclosed a position and wants board seats.",
		Severity:       SeverityWarning,
		ConsultAdvisor: true,
	},
	EventIPOWindow: {
		Title:          "IPO window open",
		Description:    "Bankers say the listing window is open for growth stories like this one.",
		Severity:       SeverityInfo,
		ConsultAdvisor: true,
	},
	EventStrategicBuyerInterest: {
		Title:          "Strategic buyer interest",
		Description:    "A strategic acquirer made an unsolicited approach at a healthy premium.",
		Severity:       SeverityInfo,
		ConsultAdvisor: true,
	},
}

const (
	eventBaseChance   = 0.08
	eventExpiryWeeks  = 3
	rareEventChance   = 0.05
	bigCompanyValue   = 100_000_000
	ipoMinValuation   = 50_000_000
	boltOnMinValue    = 20_000_000
	unionMinEmployees = 500
)

// CheckCompanyEvent decides whether a new company-level event fires this week.
// upd carries the just-simulated quarter when the tick landed on a quarter
// boundary; otherwise the company's stored fields are used as-is. Returns nil
// when nothing fires. A company holding a non-expired event is skipped
// unconditionally.
func CheckCompanyEvent(c PortfolioCompany, upd *CompanyUpdate, currentWeek int, rng Source) *CompanyActiveEvent {
	if c.ActiveEvent != nil && !c.ActiveEvent.Expired(currentWeek) {
		return nil
	}

	growth := c.RevenueGrowth
	ceo := c.CEOPerformance
	board := c.BoardAlignment
	valuation := c.CurrentValuation
	churn := c.CustomerChurn
	employees := c.EmployeeCount
	if upd != nil {
		growth = upd.GrowthRate
		ceo = upd.CEOPerformance
		board = upd.BoardAlignment
		valuation = upd.CurrentValuation
		churn = upd.CustomerChurn
		employees = upd.EmployeeCount
	}

	p := eventBaseChance
	if growth < -0.10 {
		p += 0.10
	}
	if ceo < 40 {
		p += 0.05
	}
	if board < 50 {
		p += 0.05
	}
	if !chance(rng, p) {
		return nil
	}

	var eligible []EventType
	if growth < 0 {
		eligible = append(eligible, EventRevenueDrop)
	}
	if churn > 0.10 {
		eligible = append(eligible, EventKeyCustomerLoss)
	}
	if ceo < 50 {
		eligible = append(eligible, EventManagementDeparture)
	}
	if growth < 0.05 {
		eligible = append(eligible, EventCompetitorThreat)
	}
	if valuation > boltOnMinValue {
		eligible = append(eligible, EventAcquisitionOpportunity)
	}
	if employees > unionMinEmployees {
		eligible = append(eligible, EventUnionDispute)
	}
	if valuation > bigCompanyValue {
		eligible = append(eligible, EventActivistInvestor, EventStrategicBuyerInterest)
	}
	if growth > 0.20 && valuation > ipoMinValuation {
		eligible = append(eligible, EventIPOWindow)
	}
	// Rare types join the pool on an independent draw regardless of state.
	if chance(rng, rareEventChance) {
		eligible = append(eligible, EventRegulatoryIssue)
	}
	if chance(rng, rareEventChance) {
		eligible = append(eligible, EventSupplyChainCrisis)
	}

	typ := EventCompetitorThreat
	if len(eligible) > 0 {
		typ = eligible[PickIndex(rng, len(eligible))]
	}

	spec := eventCatalog[typ]
	return &CompanyActiveEvent{
		ID:             uuid.NewString(),
		CompanyID:      c.ID,
		Type:           typ,
		Title:          spec.Title,
		Description:    spec.Description,
		Severity:       spec.Severity,
		ExpiresWeek:    currentWeek + eventExpiryWeeks,
		ConsultAdvisor: spec.ConsultAdvisor,
	}
}
