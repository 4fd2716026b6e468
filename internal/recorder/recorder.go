package recorder

import (
	"dealflow/internal/ic"
	"dealflow/internal/sim"
)

// TickSnapshot is one week of world history, flattened for analysis.
type TickSnapshot struct {
	GameID        string
	Week          int
	QuarterClosed bool
	Volatility    sim.MarketVolatility
	Cash          int64
	Reputation    int
	Stress        int
	PortfolioSize int
	EventCount    int
	WarningCount  int
}

// VerdictRecord is one finalized committee decision.
type VerdictRecord struct {
	GameID    string
	SessionID string
	CompanyID string
	Company   string
	Outcome   ic.Outcome
	Overall   float64
}

// Recorder persists play history for after-the-fact analysis. It sits beside
// the primary store, not in front of it; losing the recorder loses charts,
// not saves.
type Recorder interface {
	RecordTick(snap *TickSnapshot) error
	RecordVerdict(rec *VerdictRecord) error
	Close() error
}
