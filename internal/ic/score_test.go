package ic

import (
	"reflect"
	"strings"
	"testing"
)

func TestScorePitchBaseline(t *testing.T) {
	if got := ScorePitch("We like the company."); got != 50 {
		t.Fatalf("bland pitch = %d, want base 50", got)
	}
}

func TestScorePitchKeywords(t *testing.T) {
	if got := ScorePitch("Our thesis is simple."); got != 55 {
		t.Fatalf("one keyword = %d, want 55", got)
	}
	// Two keywords plus three numeric tokens.
	if got := ScorePitch("Entry at 8x, exit at 11x, IRR of 25%."); got != 70 {
		t.Fatalf("numbers pitch = %d, want 70", got)
	}
}

func TestScorePitchFullMarks(t *testing.T) {
	pitch := "The thesis: buy at 8x EBITDA with modest leverage, drive value creation " +
		"through a management upgrade and pricing, and exit at 10x in year 5 for a 25% IRR " +
		"at a 2.5x multiple. The principal risk is customer concentration, which we mitigate " +
		"through contract renegotiation in the first hundred days."
	if n := len(pitch); n <= 200 || n >= 800 {
		t.Fatalf("fixture length %d drifted out of the bonus band", n)
	}
	if got := ScorePitch(pitch); got != 100 {
		t.Fatalf("full pitch = %d, want clamp at 100", got)
	}
}

func TestScorePitchRamblePenalty(t *testing.T) {
	if got := ScorePitch(strings.Repeat("blah ", 200)); got != 45 {
		t.Fatalf("rambling pitch = %d, want 45", got)
	}
}

func TestScoreResponseFinancials(t *testing.T) {
	q := Question{ID: "q", PartnerID: "victoria", Category: CategoryFinancials}
	victoria := Partner{ID: "victoria", Focus: CategoryFinancials, Affinity: "irr"}

	strong := "The entry multiple is 8.5x and leverage is 4x of EBITDA, leaving comfortable headroom across the projection period."
	delta, reaction, followUp := scoreResponse(q, victoria, strong)
	if delta != 25 {
		t.Fatalf("numeric answer delta = %d, want 25", delta)
	}
	if reaction != ReactionSatisfied {
		t.Fatalf("reaction = %s, want satisfied", reaction)
	}
	if followUp != "" {
		t.Fatalf("strong answer earned a follow-up: %q", followUp)
	}

	vague := "We believe the valuation is reasonable given market conditions."
	delta, reaction, _ = scoreResponse(q, victoria, vague)
	if delta != -10 {
		t.Fatalf("numberless answer delta = %d, want -10", delta)
	}
	if reaction != ReactionSkeptical {
		t.Fatalf("reaction = %s, want skeptical", reaction)
	}
}

func TestScoreResponseOperationsMarkers(t *testing.T) {
	q := Question{ID: "q", PartnerID: "david", Category: CategoryOperations}
	david := Partner{ID: "david", Focus: CategoryOperations, Affinity: "management"}

	text := "Specifically, we will consolidate the three distribution centers and renegotiate the freight contracts with management."
	delta, reaction, _ := scoreResponse(q, david, text)
	// Marker +10, long-and-specific +10, affinity +5.
	if delta != 25 {
		t.Fatalf("delta = %d, want 25", delta)
	}
	if reaction != ReactionSatisfied {
		t.Fatalf("reaction = %s, want satisfied", reaction)
	}
}

func TestScoreResponseRiskDownside(t *testing.T) {
	q := Question{ID: "q", PartnerID: "margaret", Category: CategoryRisk}
	margaret := Partner{ID: "margaret", Focus: CategoryRisk, Affinity: "covenant"}

	text := "The downside scenario still covers the covenant obligations with room to spare."
	delta, reaction, _ := scoreResponse(q, margaret, text)
	// Downside +10, affinity +5.
	if delta != 15 {
		t.Fatalf("delta = %d, want 15", delta)
	}
	if reaction != ReactionSatisfied {
		t.Fatalf("reaction = %s, want satisfied", reaction)
	}
}

func TestScoreResponseShortAnswer(t *testing.T) {
	q := Question{
		ID: "q", PartnerID: "margaret", Category: CategoryRisk,
		Text:     "What is the downside case?",
		FollowUp: "Try again, with numbers this time.",
	}
	margaret := Partner{ID: "margaret", Focus: CategoryRisk, Affinity: "covenant"}

	delta, reaction, followUp := scoreResponse(q, margaret, "It will be fine.")
	if delta != -15 {
		t.Fatalf("delta = %d, want -15", delta)
	}
	if reaction != ReactionDismissive {
		t.Fatalf("reaction = %s, want dismissive", reaction)
	}
	if followUp != q.FollowUp {
		t.Fatalf("follow-up = %q, want the question's own", followUp)
	}

	// A question without its own follow-up gets the stock rephrasing.
	q.FollowUp = ""
	_, _, followUp = scoreResponse(q, margaret, "It will be fine.")
	if !strings.Contains(followUp, q.Text) {
		t.Fatalf("default follow-up should repeat the question, got %q", followUp)
	}
}

func TestScoreResponseNeutralIsProbing(t *testing.T) {
	q := Question{ID: "q", PartnerID: "richard", Category: CategoryStrategy}
	richard := Partner{ID: "richard", Focus: CategoryStrategy, Affinity: "reputation"}

	text := "We think the sector dynamics favor consolidation over time."
	delta, reaction, _ := scoreResponse(q, richard, text)
	if delta != 0 {
		t.Fatalf("delta = %d, want 0", delta)
	}
	if reaction != ReactionProbing {
		t.Fatalf("reaction = %s, want probing", reaction)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	partners := DefaultPartners()
	sat := map[string]int{"margaret": 65, "david": 72, "victoria": 58, "richard": 44}
	history := []Exchange{{Reaction: ReactionSatisfied}, {Reaction: ReactionProbing}}

	a := Evaluate(70, partners, sat, history, DefaultWeights(), DefaultThresholds())
	b := Evaluate(70, partners, sat, history, DefaultWeights(), DefaultThresholds())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same inputs gave different verdicts:\n%+v\n%+v", a, b)
	}
}

func TestEvaluateVoteTiers(t *testing.T) {
	partners := DefaultPartners()
	sat := map[string]int{"margaret": 80, "david": 60, "victoria": 45, "richard": 20}

	v := Evaluate(60, partners, sat, nil, DefaultWeights(), DefaultThresholds())
	if len(v.Votes) != 4 {
		t.Fatalf("votes = %d, want 4", len(v.Votes))
	}
	// Votes come back sorted by partner id.
	wantOrder := []string{"david", "margaret", "richard", "victoria"}
	wantVote := map[string]Outcome{
		"margaret": OutcomeApproved,
		"david":    OutcomeConditional,
		"victoria": OutcomeTabled,
		"richard":  OutcomeRejected,
	}
	for i, vote := range v.Votes {
		if vote.PartnerID != wantOrder[i] {
			t.Fatalf("vote %d from %s, want %s", i, vote.PartnerID, wantOrder[i])
		}
		if vote.Vote != wantVote[vote.PartnerID] {
			t.Fatalf("%s voted %s, want %s", vote.PartnerID, vote.Vote, wantVote[vote.PartnerID])
		}
	}
	if v.Votes[1].Reasoning != "The risk analysis was thorough. I'm comfortable with the downside." {
		t.Fatalf("unexpected reasoning: %q", v.Votes[1].Reasoning)
	}
}

func TestEvaluateOutcomeThresholds(t *testing.T) {
	partners := DefaultPartners()

	high := map[string]int{"margaret": 90, "david": 90, "victoria": 90, "richard": 90}
	v := Evaluate(90, partners, high, nil, DefaultWeights(), DefaultThresholds())
	if v.Outcome != OutcomeApproved {
		t.Fatalf("strong meeting = %s (overall %.1f), want APPROVED", v.Outcome, v.Overall)
	}

	low := map[string]int{"margaret": 10, "david": 10, "victoria": 10, "richard": 10}
	v = Evaluate(20, partners, low, nil, DefaultWeights(), DefaultThresholds())
	if v.Outcome != OutcomeRejected {
		t.Fatalf("weak meeting = %s (overall %.1f), want REJECTED", v.Outcome, v.Overall)
	}
	if v.Summary != summaryText[OutcomeRejected] {
		t.Fatalf("summary = %q", v.Summary)
	}
}

func TestEvaluateCustomRosterFallbacks(t *testing.T) {
	partners := []Partner{{ID: "guest", Name: "Guest Partner", Focus: CategoryStrategy}}
	sat := map[string]int{"guest": 75}

	v := Evaluate(80, partners, sat, nil, DefaultWeights(), DefaultThresholds())
	// No financials, risk, or operations partner on the roster: those
	// dimensions settle at neutral.
	for _, dim := range []string{DimFinancialRigor, DimRiskAwareness, DimValueCreation} {
		if v.Dimensions[dim] != 50 {
			t.Fatalf("%s = %v, want neutral 50", dim, v.Dimensions[dim])
		}
	}
	if v.Votes[0].Reasoning != genericReasoning[OutcomeApproved] {
		t.Fatalf("unknown partner should use generic reasoning, got %q", v.Votes[0].Reasoning)
	}
}

func TestEvaluateNormalizesWeights(t *testing.T) {
	partners := DefaultPartners()
	sat := map[string]int{"margaret": 60, "david": 60, "victoria": 60, "richard": 60}

	v := Evaluate(80, partners, sat, nil, Weights{DimThesisClarity: 2}, DefaultThresholds())
	// Single-dimension weights collapse the overall onto that dimension.
	want := 0.6*80 + 0.4*60
	if diff := v.Overall - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("overall = %v, want %v", v.Overall, want)
	}
}

func TestSpecificityDimensionCounts(t *testing.T) {
	partners := DefaultPartners()
	sat := map[string]int{"margaret": 50, "david": 50, "victoria": 50, "richard": 50}
	history := []Exchange{
		{Reaction: ReactionSatisfied},
		{Reaction: ReactionSatisfied},
		{Reaction: ReactionSkeptical},
	}
	v := Evaluate(50, partners, sat, history, DefaultWeights(), DefaultThresholds())
	if v.Dimensions[DimSpecificity] != 60 {
		t.Fatalf("specificity = %v, want 2*15+30 = 60", v.Dimensions[DimSpecificity])
	}
}
