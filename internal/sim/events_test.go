package sim

import "testing"

func TestEventSkippedWhileOneIsActive(t *testing.T) {
	c := baseCompany()
	c.ActiveEvent = &CompanyActiveEvent{ID: "ev", CompanyID: c.ID, ExpiresWeek: 20}

	// Draws that would otherwise guarantee a trigger.
	rng := &scriptedSource{vals: []float64{0.0}}
	if ev := CheckCompanyEvent(c, nil, 10, rng); ev != nil {
		t.Fatalf("expected no event while one is active, got %v", ev.Type)
	}

	// Once the window closes the company is eligible again.
	if ev := CheckCompanyEvent(c, nil, 20, &scriptedSource{vals: []float64{0.0, 0.99, 0.99}}); ev == nil {
		t.Fatal("expected an event after the old one expired")
	}
}

func TestEventGateCanFail(t *testing.T) {
	c := baseCompany()
	rng := &scriptedSource{vals: []float64{0.99}}
	if ev := CheckCompanyEvent(c, nil, 5, rng); ev != nil {
		t.Fatalf("gate draw of 0.99 should not trigger, got %v", ev.Type)
	}
}

func TestEventDefaultsToCompetitorThreat(t *testing.T) {
	// Healthy mid-size company: no eligibility condition holds.
	c := baseCompany()
	c.RevenueGrowth = 0.10
	c.CurrentValuation = 10_000_000

	// Gate passes, both rare draws miss.
	rng := &scriptedSource{vals: []float64{0.0, 0.99, 0.99}}
	ev := CheckCompanyEvent(c, nil, 8, rng)
	if ev == nil {
		t.Fatal("expected an event")
	}
	if ev.Type != EventCompetitorThreat {
		t.Fatalf("default type = %v, want %v", ev.Type, EventCompetitorThreat)
	}
	if ev.ExpiresWeek != 11 {
		t.Fatalf("expiry = %d, want week+3 = 11", ev.ExpiresWeek)
	}
	if ev.Severity != SeverityWarning {
		t.Fatalf("severity = %v, want %v", ev.Severity, SeverityWarning)
	}
}

func TestEventEligibilityShrinkingCompany(t *testing.T) {
	c := baseCompany()
	c.RevenueGrowth = -0.20
	c.CurrentValuation = 10_000_000

	// Gate passes (raised probability), rare draws miss, index draw lands
	// on the first eligible entry.
	rng := &scriptedSource{vals: []float64{0.0, 0.99, 0.99, 0.0}}
	ev := CheckCompanyEvent(c, nil, 8, rng)
	if ev == nil {
		t.Fatal("expected an event")
	}
	if ev.Type != EventRevenueDrop {
		t.Fatalf("type = %v, want %v", ev.Type, EventRevenueDrop)
	}
}

func TestEventReadsFreshQuarterNumbers(t *testing.T) {
	c := baseCompany()
	c.RevenueGrowth = 0.10

	upd := &CompanyUpdate{
		CompanyID:      c.ID,
		GrowthRate:     -0.20,
		CEOPerformance: c.CEOPerformance,
		BoardAlignment: c.BoardAlignment,
		CustomerChurn:  c.CustomerChurn,
		EmployeeCount:  c.EmployeeCount,
	}
	rng := &scriptedSource{vals: []float64{0.0, 0.99, 0.99, 0.0}}
	ev := CheckCompanyEvent(c, upd, 8, rng)
	if ev == nil {
		t.Fatal("expected an event")
	}
	if ev.Type != EventRevenueDrop {
		t.Fatalf("trigger should read the post-quarter growth, got %v", ev.Type)
	}
}

func TestEventLargeCompanyPool(t *testing.T) {
	c := baseCompany()
	c.RevenueGrowth = 0.25
	c.CurrentValuation = 150_000_000
	c.EmployeeCount = 800

	seen := make(map[EventType]bool)
	for seed := int64(0); seed < 2000; seed++ {
		ev := CheckCompanyEvent(c, nil, 8, NewSeeded(seed))
		if ev != nil {
			seen[ev.Type] = true
		}
	}
	for _, want := range []EventType{
		EventAcquisitionOpportunity,
		EventUnionDispute,
		EventActivistInvestor,
		EventStrategicBuyerInterest,
		EventIPOWindow,
	} {
		if !seen[want] {
			t.Fatalf("event type %v never fired across seeds, pool looks wrong (saw %v)", want, seen)
		}
	}
}
