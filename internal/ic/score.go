package ic

import (
	"sort"
	"strings"
	"unicode"
)

// Outcome is both a partner's individual vote and the committee's final call.
type Outcome string

const (
	OutcomeApproved    Outcome = "APPROVED"
	OutcomeConditional Outcome = "CONDITIONAL"
	OutcomeTabled      Outcome = "TABLED"
	OutcomeRejected    Outcome = "REJECTED"
	OutcomeCancelled   Outcome = "CANCELLED"
)

// Reaction is the partner's read on a single response.
type Reaction string

const (
	ReactionSatisfied  Reaction = "satisfied"
	ReactionProbing    Reaction = "probing"
	ReactionSkeptical  Reaction = "skeptical"
	ReactionDismissive Reaction = "dismissive"
)

// Evaluation dimension names. Weights and verdict thresholds are
// configurable; the dimension set is not.
const (
	DimThesisClarity  = "thesis_clarity"
	DimFinancialRigor = "financial_rigor"
	DimRiskAwareness  = "risk_awareness"
	DimValueCreation  = "value_creation"
	DimConviction     = "conviction"
	DimSpecificity    = "specificity"
)

// Weights holds the per-dimension weights for the overall score. They should
// sum to 1; Evaluate normalizes just in case a config file doesn't.
type Weights map[string]float64

// Thresholds are the overall-score cutoffs for the committee verdict,
// checked top down.
type Thresholds struct {
	Approved    float64 `yaml:"approved"`
	Conditional float64 `yaml:"conditional"`
	Tabled      float64 `yaml:"tabled"`
}

func DefaultWeights() Weights {
	return Weights{
		DimThesisClarity:  0.20,
		DimFinancialRigor: 0.25,
		DimRiskAwareness:  0.15,
		DimValueCreation:  0.15,
		DimConviction:     0.10,
		DimSpecificity:    0.15,
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{Approved: 75, Conditional: 60, Tabled: 45}
}

// PartnerVote is one committee member's position in the final verdict.
type PartnerVote struct {
	PartnerID    string  `json:"partner_id"`
	Name         string  `json:"name"`
	Satisfaction int     `json:"satisfaction"`
	Vote         Outcome `json:"vote"`
	Reasoning    string  `json:"reasoning"`
}

// Verdict is the committee's final, immutable output.
type Verdict struct {
	Outcome    Outcome            `json:"outcome"`
	Overall    float64            `json:"overall"`
	Dimensions map[string]float64 `json:"dimensions"`
	Votes      []PartnerVote      `json:"votes"`
	Summary    string             `json:"summary"`
}

// pitchKeywords are the terms a committee expects to hear in any competent
// opening pitch. Each one present earns the same fixed bonus.
var pitchKeywords = []string{
	"thesis", "ebitda", "irr", "multiple", "risk", "value creation", "exit", "management",
}

// ScorePitch rates an opening pitch 0-100 on clarity alone. It reads
// structure, not truth: keywords, length discipline, and whether the pitch
// contains actual numbers.
func ScorePitch(text string) int {
	lower := strings.ToLower(text)
	score := 50
	for _, kw := range pitchKeywords {
		if strings.Contains(lower, kw) {
			score += 5
		}
	}
	n := len(text)
	switch {
	case n > 200 && n < 800:
		score += 10
	case n >= 800:
		score -= 5
	}
	if countNumericTokens(text) >= 3 {
		score += 10
	}
	return clamp(score, 0, 100)
}

// specificityMarkers are phrases that signal a concrete answer rather than a
// rehearsed one.
var specificityMarkers = []string{"specifically", "for example", "in this case"}

func hasSpecifics(lower string) bool {
	for _, m := range specificityMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return containsDigit(lower)
}

// scoreResponse rates one interrogation answer against the question's
// category and the asking partner's tastes. It returns the satisfaction
// delta, the reaction bucket, and a follow-up question text when the answer
// was weak enough to earn one.
func scoreResponse(q Question, partner Partner, text string) (delta int, reaction Reaction, followUp string) {
	lower := strings.ToLower(text)
	delta = 0

	switch q.Category {
	case CategoryFinancials:
		if containsDigit(text) {
			delta += 15
		} else {
			delta -= 10
		}
	case CategoryOperations:
		for _, m := range specificityMarkers {
			if strings.Contains(lower, m) {
				delta += 10
				break
			}
		}
	case CategoryRisk:
		if strings.Contains(lower, "downside") {
			delta += 10
		}
	}

	if len(text) > 100 && hasSpecifics(lower) {
		delta += 10
	}

	short := len(text) < 50
	if short {
		delta -= 15
	}

	if partner.Affinity != "" && strings.Contains(lower, partner.Affinity) {
		delta += 5
	}

	switch {
	case short:
		reaction = ReactionDismissive
	case delta > 10:
		reaction = ReactionSatisfied
	case delta >= 0:
		reaction = ReactionProbing
	case delta >= -10:
		reaction = ReactionSkeptical
	default:
		reaction = ReactionDismissive
	}

	if short {
		followUp = q.FollowUp
		if followUp == "" {
			followUp = "That was thin. Let me put it differently: " + q.Text
		}
	}
	return delta, reaction, followUp
}

// Evaluate turns a finished interrogation into the committee verdict. It is
// deterministic: same pitch score, satisfaction map, and exchange history
// always produce the same verdict.
func Evaluate(pitchScore int, partners []Partner, satisfaction map[string]int, history []Exchange, weights Weights, thresholds Thresholds) Verdict {
	avg := 0.0
	if len(partners) > 0 {
		for _, p := range partners {
			avg += float64(satisfaction[p.ID])
		}
		avg /= float64(len(partners))
	}

	satisfiedCount := 0
	for _, ex := range history {
		if ex.Reaction == ReactionSatisfied {
			satisfiedCount++
		}
	}

	pitch := float64(pitchScore)
	dims := map[string]float64{
		DimThesisClarity:  clampF(0.6*pitch+0.4*avg, 0, 100),
		DimFinancialRigor: clampF(avgFocusSatisfaction(partners, satisfaction, CategoryFinancials, CategoryRisk), 0, 100),
		DimRiskAwareness:  clampF(avgFocusSatisfaction(partners, satisfaction, CategoryRisk), 0, 100),
		DimValueCreation:  clampF(avgFocusSatisfaction(partners, satisfaction, CategoryOperations), 0, 100),
		DimConviction:     clampF(0.5*pitch+0.5*avg, 0, 100),
		DimSpecificity:    clampF(float64(satisfiedCount)*15+30, 0, 100),
	}

	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	totalW := 0.0
	for _, w := range weights {
		totalW += w
	}
	overall := 0.0
	if totalW > 0 {
		for name, w := range weights {
			overall += w * dims[name]
		}
		overall /= totalW
	}

	var outcome Outcome
	switch {
	case overall >= thresholds.Approved:
		outcome = OutcomeApproved
	case overall >= thresholds.Conditional:
		outcome = OutcomeConditional
	case overall >= thresholds.Tabled:
		outcome = OutcomeTabled
	default:
		outcome = OutcomeRejected
	}

	votes := make([]PartnerVote, 0, len(partners))
	for _, p := range partners {
		sat := satisfaction[p.ID]
		vote := voteForSatisfaction(sat)
		votes = append(votes, PartnerVote{
			PartnerID:    p.ID,
			Name:         p.Name,
			Satisfaction: sat,
			Vote:         vote,
			Reasoning:    reasoningFor(p.ID, vote),
		})
	}
	sort.SliceStable(votes, func(i, j int) bool { return votes[i].PartnerID < votes[j].PartnerID })

	return Verdict{
		Outcome:    outcome,
		Overall:    overall,
		Dimensions: dims,
		Votes:      votes,
		Summary:    defaultSummary(outcome, overall),
	}
}

// voteForSatisfaction maps an individual partner's satisfaction to a vote.
// Individual tiers are fixed; only the committee-level thresholds are
// configurable.
func voteForSatisfaction(sat int) Outcome {
	switch {
	case sat >= 70:
		return OutcomeApproved
	case sat >= 55:
		return OutcomeConditional
	case sat >= 40:
		return OutcomeTabled
	default:
		return OutcomeRejected
	}
}

var summaryText = map[Outcome]string{
	OutcomeApproved:    "The committee approves the investment. Papers to follow.",
	OutcomeConditional: "Approved in principle, subject to conditions the partners will circulate.",
	OutcomeTabled:      "The committee tables the deal pending further work.",
	OutcomeRejected:    "The committee declines to proceed.",
}

func defaultSummary(outcome Outcome, overall float64) string {
	return summaryText[outcome]
}

// avgFocusSatisfaction averages satisfaction across the partners whose focus
// matches any of the given categories. Falls back to 50 if the roster has no
// such partner, so a custom committee never zeroes a dimension by omission.
func avgFocusSatisfaction(partners []Partner, satisfaction map[string]int, focuses ...Category) float64 {
	sum, n := 0.0, 0
	for _, p := range partners {
		for _, f := range focuses {
			if p.Focus == f {
				sum += float64(satisfaction[p.ID])
				n++
				break
			}
		}
	}
	if n == 0 {
		return 50
	}
	return sum / float64(n)
}

func countNumericTokens(s string) int {
	n := 0
	for _, tok := range strings.Fields(s) {
		if strings.ContainsFunc(tok, unicode.IsDigit) {
			n++
		}
	}
	return n
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
