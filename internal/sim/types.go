package sim

// MarketVolatility is the regime the whole simulated economy is in. It biases
// every company's quarterly growth and gates which market events can fire.
type MarketVolatility string

const (
	VolatilityNormal       MarketVolatility = "NORMAL"
	VolatilityBullRun      MarketVolatility = "BULL_RUN"
	VolatilityCreditCrunch MarketVolatility = "CREDIT_CRUNCH"
	VolatilityPanic        MarketVolatility = "PANIC"
)

// DealPhase tracks where a company sits in the fund's deal funnel. Transitions
// only move forward; the single sanctioned reversal is cancelling an exit
// process, which is a flag on the company rather than a phase.
type DealPhase string

const (
	PhasePipeline   DealPhase = "PIPELINE"
	PhaseAnalyzed   DealPhase = "ANALYZED"
	PhaseBidding    DealPhase = "BIDDING"
	PhaseWon        DealPhase = "WON"
	PhaseLost       DealPhase = "LOST"
	PhaseWalkedAway DealPhase = "WALKED_AWAY"
)

type EventType string

const (
	EventRevenueDrop            EventType = "REVENUE_DROP"
	EventKeyCustomerLoss        EventType = "KEY_CUSTOMER_LOSS"
	EventManagementDeparture    EventType = "MANAGEMENT_DEPARTURE"
	EventCompetitorThreat       EventType = "COMPETITOR_THREAT"
	EventAcquisitionOpportunity EventType = "ACQUISITION_OPPORTUNITY"
	EventRegulatoryIssue        EventType = "REGULATORY_ISSUE"
	EventUnionDispute           EventType = "UNION_DISPUTE"
	EventSupplyChainCrisis      EventType = "SUPPLY_CHAIN_CRISIS"
	EventActivistInvestor       EventType = "ACTIVIST_INVESTOR"
	EventIPOWindow              EventType = "IPO_WINDOW"
	EventStrategicBuyerInterest EventType = "STRATEGIC_BUYER_INTEREST"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// WarningLevel grades player-facing risk warnings, distinct from company
// event severity.
type WarningLevel string

const (
	LevelMedium   WarningLevel = "MEDIUM"
	LevelHigh     WarningLevel = "HIGH"
	LevelCritical WarningLevel = "CRITICAL"
)

// RunwayInfinite is the sentinel for companies that are not burning cash.
const RunwayInfinite = 999

// PortfolioCompany is one company the fund has sourced, bid on, or owns.
// Money fields are whole dollars.
type PortfolioCompany struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	DealType string `json:"deal_type"`

	Revenue          int64   `json:"revenue"`
	EBITDA           int64   `json:"ebitda"`
	EBITDAMargin     float64 `json:"ebitda_margin"`
	Debt             int64   `json:"debt"`
	CashBalance      int64   `json:"cash_balance"`
	CurrentValuation int64   `json:"current_valuation"`
	RevenueGrowth    float64 `json:"revenue_growth"`
	EmployeeCount    int     `json:"employee_count"`
	EmployeeGrowth   float64 `json:"employee_growth"`
	CustomerChurn    float64 `json:"customer_churn"`
	RunwayMonths     int     `json:"runway_months"`

	CEOPerformance int `json:"ceo_performance"`
	BoardAlignment int `json:"board_alignment"`

	IsAnalyzed          bool `json:"is_analyzed"`
	DealClosed          bool `json:"deal_closed"`
	IsInExitProcess     bool `json:"is_in_exit_process"`
	HasBoardCrisis      bool `json:"has_board_crisis"`
	LeverageModelViewed bool `json:"leverage_model_viewed"`

	DealPhase    DealPhase `json:"deal_phase"`
	EntryEquity  int64     `json:"entry_equity"`
	AcquiredWeek int       `json:"acquired_week"`

	ActiveEvent *CompanyActiveEvent `json:"active_event,omitempty"`
}

// CompanyActiveEvent is a transient narrative/financial event attached to one
// company. A company holds at most one non-expired event at a time.
type CompanyActiveEvent struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Type           EventType `json:"type"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	ExpiresWeek    int       `json:"expires_week"`
	ConsultAdvisor bool      `json:"consult_advisor"`
}

// Expired reports whether the event's response window has closed.
func (e *CompanyActiveEvent) Expired(currentWeek int) bool {
	return e == nil || currentWeek >= e.ExpiresWeek
}

// CompanyUpdate is the full post-quarter snapshot of a company's simulated
// fields. Returning whole snapshots instead of sparse patches keeps the merge
// trivial and leaves nothing half-applied.
type CompanyUpdate struct {
	CompanyID        string  `json:"company_id"`
	Revenue          int64   `json:"revenue"`
	EBITDA           int64   `json:"ebitda"`
	EBITDAMargin     float64 `json:"ebitda_margin"`
	CurrentValuation int64   `json:"current_valuation"`
	CashBalance      int64   `json:"cash_balance"`
	RunwayMonths     int     `json:"runway_months"`
	EmployeeCount    int     `json:"employee_count"`
	CustomerChurn    float64 `json:"customer_churn"`
	CEOPerformance   int     `json:"ceo_performance"`
	BoardAlignment   int     `json:"board_alignment"`

	// GrowthRate is the effective annualized growth applied this quarter,
	// after volatility and management biases. The event trigger engine reads
	// it in the same tick.
	GrowthRate float64 `json:"growth_rate"`
}

// Apply merges the update back into the company record.
func (c *PortfolioCompany) Apply(u CompanyUpdate) {
	c.Revenue = u.Revenue
	c.EBITDA = u.EBITDA
	c.EBITDAMargin = u.EBITDAMargin
	c.CurrentValuation = u.CurrentValuation
	c.CashBalance = u.CashBalance
	c.RunwayMonths = u.RunwayMonths
	c.EmployeeCount = u.EmployeeCount
	c.CustomerChurn = u.CustomerChurn
	c.CEOPerformance = u.CEOPerformance
	c.BoardAlignment = u.BoardAlignment
	c.RevenueGrowth = u.GrowthRate
}

// Warning is a derived risk flag. Warnings are recomputed wholesale on every
// tick and carry stable ids so the presentation layer can deduplicate.
type Warning struct {
	ID              string       `json:"id"`
	Kind            string       `json:"kind"`
	Level           WarningLevel `json:"level"`
	Message         string       `json:"message"`
	CurrentValue    float64      `json:"current_value"`
	Threshold       float64      `json:"threshold"`
	SuggestedAction string       `json:"suggested_action"`
	CompanyID       string       `json:"company_id,omitempty"`
}

// PlayerState is the full snapshot the tick engine reads. It is never mutated
// by the engine; the caller merges the returned WorldTickResult.
type PlayerState struct {
	Cash               int64   `json:"cash"`
	Health             int     `json:"health"`
	Stress             int     `json:"stress"`
	Reputation         int     `json:"reputation"`
	Ethics             int     `json:"ethics"`
	AuditRisk          int     `json:"audit_risk"`
	WeeklyLoanInterest int64   `json:"weekly_loan_interest"`
	Level              int     `json:"level"`

	Portfolio     []PortfolioCompany `json:"portfolio"`
	Relationships map[string]int     `json:"relationships"`
}

// RivalFund is a competing sponsor that can act against the player.
type RivalFund struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Aggression float64 `json:"aggression"`
	Reputation int     `json:"reputation"`
	DryPowder  int64   `json:"dry_powder"`
}

// NPC is a named character the player has a relationship with.
type NPC struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Relationship int    `json:"relationship"`
}

// StatDelta is the stat-change payload attached to a drama choice.
type StatDelta struct {
	Cash          int64          `json:"cash,omitempty"`
	Health        int            `json:"health,omitempty"`
	Stress        int            `json:"stress,omitempty"`
	Reputation    int            `json:"reputation,omitempty"`
	Ethics        int            `json:"ethics,omitempty"`
	AuditRisk     int            `json:"audit_risk,omitempty"`
	Relationships map[string]int `json:"relationships,omitempty"`
}

// DramaChoice is one discrete response the player can pick for an NPC drama.
type DramaChoice struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Outcome string    `json:"outcome"`
	Effect  StatDelta `json:"effect"`
}

// NPCDrama is a triggered narrative event involving one NPC.
type NPCDrama struct {
	ID          string        `json:"id"`
	NPCID       string        `json:"npc_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Urgency     WarningLevel  `json:"urgency"`
	ExpiresWeek int           `json:"expires_week"`
	Choices     []DramaChoice `json:"choices"`
}

// RivalAction is a move by a competing fund.
type RivalAction struct {
	ID          string       `json:"id"`
	RivalID     string       `json:"rival_id"`
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CompanyID   string       `json:"company_id,omitempty"`
	Urgency     WarningLevel `json:"urgency"`
	ExpiresWeek int          `json:"expires_week"`
}

// MarketEvent is a macro shift; when it carries a new volatility regime the
// host applies it to subsequent ticks.
type MarketEvent struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	NewVolatility MarketVolatility `json:"new_volatility"`
	ExpiresWeek   int              `json:"expires_week"`
}

// WorldTickResult is the immutable output of one world tick. The caller owns
// merging it into durable state.
type WorldTickResult struct {
	Week           int                      `json:"week"`
	QuarterClosed  bool                     `json:"quarter_closed"`
	CompanyUpdates map[string]CompanyUpdate `json:"company_updates"`
	NewEvents      []CompanyActiveEvent     `json:"new_events"`
	Warnings       []Warning                `json:"warnings"`
	Drama          *NPCDrama                `json:"drama,omitempty"`
	RivalAction    *RivalAction             `json:"rival_action,omitempty"`
	MarketEvent    *MarketEvent             `json:"market_event,omitempty"`
}
