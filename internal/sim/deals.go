package sim

import (
	"errors"
	"fmt"
	"math"
)

var ErrBadPhaseTransition = errors.New("deal phase cannot move backward")

// phaseOrder gives each funnel phase a monotonic index. Terminal phases share
// the top slot; once a deal is WON, LOST, or WALKED_AWAY it never re-enters
// the funnel.
var phaseOrder = map[DealPhase]int{
	PhasePipeline:   0,
	PhaseAnalyzed:   1,
	PhaseBidding:    2,
	PhaseWon:        3,
	PhaseLost:       3,
	PhaseWalkedAway: 3,
}

// AdvancePhase moves a company forward in the deal funnel. Backward moves are
// programming errors and rejected.
func AdvancePhase(c *PortfolioCompany, next DealPhase) error {
	from, ok := phaseOrder[c.DealPhase]
	if !ok {
		return fmt.Errorf("unknown deal phase %q", c.DealPhase)
	}
	to, ok := phaseOrder[next]
	if !ok {
		return fmt.Errorf("unknown deal phase %q", next)
	}
	if to <= from {
		return fmt.Errorf("%w: %s -> %s", ErrBadPhaseTransition, c.DealPhase, next)
	}
	c.DealPhase = next
	if next == PhaseWon {
		c.DealClosed = true
	}
	return nil
}

// StartExit flags an owned company as in a sale process.
func StartExit(c *PortfolioCompany) error {
	if !c.DealClosed {
		return fmt.Errorf("cannot exit %s: deal not closed", c.Name)
	}
	c.IsInExitProcess = true
	return nil
}

// CancelExit is the single sanctioned backward move: an exit process can be
// called off, returning the company to plain ownership.
func CancelExit(c *PortfolioCompany) {
	c.IsInExitProcess = false
}

// MOIC is the multiple on invested capital for a realized exit.
func MOIC(entryEquity, exitEquity int64) float64 {
	if entryEquity <= 0 {
		return 0
	}
	return float64(exitEquity) / float64(entryEquity)
}

// IRR is the simplified annualized return used for scorekeeping:
// (exit/entry)^(1/years) - 1. Not audit-grade and not meant to be.
func IRR(entryEquity, exitEquity int64, holdWeeks int) float64 {
	if entryEquity <= 0 || exitEquity <= 0 || holdWeeks <= 0 {
		return 0
	}
	years := float64(holdWeeks) / 52
	if years < 0.25 {
		years = 0.25
	}
	return math.Pow(float64(exitEquity)/float64(entryEquity), 1/years) - 1
}
