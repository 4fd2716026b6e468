package ic

// Category buckets interrogation questions by what the partner is probing.
type Category string

const (
	CategoryFinancials Category = "financials"
	CategoryOperations Category = "operations"
	CategoryRisk       Category = "risk"
	CategoryStrategy   Category = "strategy"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one interrogation prompt owned by a partner. FollowUp, when
// set, is the drill-down the partner reaches for after a weak answer.
type Question struct {
	ID         string
	PartnerID  string
	Category   Category
	Difficulty Difficulty
	Text       string
	FollowUp   string
}

// Partner is one committee member. Focus ties the partner to an evaluation
// dimension; Affinity is a pet keyword that earns a small bonus when a
// response uses it.
type Partner struct {
	ID       string
	Name     string
	Title    string
	Focus    Category
	Affinity string
	Style    string
}

// DefaultPartners is the standing four-member committee. The engine never
// assumes these ids; rosters are carried on the session so they can vary.
func DefaultPartners() []Partner {
	return []Partner{
		{
			ID:       "margaret",
			Name:     "Margaret Whitmore",
			Title:    "Senior Partner, Credit & Risk",
			Focus:    CategoryRisk,
			Affinity: "covenant",
			Style:    "forensic",
		},
		{
			ID:       "david",
			Name:     "David Okafor",
			Title:    "Partner, Operations",
			Focus:    CategoryOperations,
			Affinity: "management",
			Style:    "pragmatic",
		},
		{
			ID:       "victoria",
			Name:     "Victoria Lang",
			Title:    "Partner, Financial Strategy",
			Focus:    CategoryFinancials,
			Affinity: "irr",
			Style:    "quantitative",
		},
		{
			ID:       "richard",
			Name:     "Richard Hale",
			Title:    "Managing Partner",
			Focus:    CategoryStrategy,
			Affinity: "reputation",
			Style:    "political",
		},
	}
}

// DefaultQuestions is the standing question bank, keyed off the default
// roster's partner ids.
func DefaultQuestions() []Question {
	return []Question{
		// Margaret — risk.
		{ID: "mw_easy_1", PartnerID: "margaret", Category: CategoryRisk, Difficulty: DifficultyEasy,
			Text: "Walk me through the two or three things that keep you up at night on this deal."},
		{ID: "mw_med_1", PartnerID: "margaret", Category: CategoryRisk, Difficulty: DifficultyMedium,
			Text:     "What does the downside case look like if revenue comes in 20% under plan?",
			FollowUp: "And at what point in that downside case do we breach the covenants?"},
		{ID: "mw_med_2", PartnerID: "margaret", Category: CategoryFinancials, Difficulty: DifficultyMedium,
			Text: "How much leverage are you putting on this, and what covenant headroom does that leave?"},
		{ID: "mw_hard_1", PartnerID: "margaret", Category: CategoryRisk, Difficulty: DifficultyHard,
			Text:     "Customer concentration, supplier concentration, key-person risk. Rank them for this asset and tell me which one kills the thesis.",
			FollowUp: "You ranked those quickly. What data is that ranking based on?"},
		{ID: "mw_hard_2", PartnerID: "margaret", Category: CategoryRisk, Difficulty: DifficultyHard,
			Text: "If credit markets close the quarter after we sign, how do we fund the deal?"},

		// David — operations.
		{ID: "do_easy_1", PartnerID: "david", Category: CategoryOperations, Difficulty: DifficultyEasy,
			Text: "What do you actually think of the management team?"},
		{ID: "do_med_1", PartnerID: "david", Category: CategoryOperations, Difficulty: DifficultyMedium,
			Text:     "Where does the margin expansion in your model come from, operationally?",
			FollowUp: "Name the specific cost line and who on the ground owns it."},
		{ID: "do_med_2", PartnerID: "david", Category: CategoryOperations, Difficulty: DifficultyMedium,
			Text: "What is the first thing you change in the first hundred days?"},
		{ID: "do_hard_1", PartnerID: "david", Category: CategoryOperations, Difficulty: DifficultyHard,
			Text:     "The CEO has run this business for eleven years. Convince me he'll take direction from a board half his age.",
			FollowUp: "Have you actually had that conversation with him, or are you hoping?"},
		{ID: "do_hard_2", PartnerID: "david", Category: CategoryStrategy, Difficulty: DifficultyHard,
			Text: "Every sponsor deck promises value creation. What can this firm do for this company that the last owner couldn't?"},

		// Victoria — financials.
		{ID: "vl_easy_1", PartnerID: "victoria", Category: CategoryFinancials, Difficulty: DifficultyEasy,
			Text: "Give me the headline numbers: entry multiple, leverage, and your base-case return."},
		{ID: "vl_med_1", PartnerID: "victoria", Category: CategoryFinancials, Difficulty: DifficultyMedium,
			Text:     "Your IRR depends on multiple expansion. Why should we underwrite exit at a richer multiple than entry?",
			FollowUp: "So strip the multiple expansion out. What's the return on operations alone?"},
		{ID: "vl_med_2", PartnerID: "victoria", Category: CategoryFinancials, Difficulty: DifficultyMedium,
			Text: "How real is the EBITDA? Walk me through the add-backs."},
		{ID: "vl_hard_1", PartnerID: "victoria", Category: CategoryFinancials, Difficulty: DifficultyHard,
			Text:     "Bridge me from the quality-of-earnings EBITDA to the number in your model. Every step.",
			FollowUp: "That bridge had a gap in it. Try the working-capital adjustment again."},
		{ID: "vl_hard_2", PartnerID: "victoria", Category: CategoryFinancials, Difficulty: DifficultyHard,
			Text: "At what entry price does this deal stop working? Show me you know where your walk-away is."},

		// Richard — strategy and firm standing.
		{ID: "rh_easy_1", PartnerID: "richard", Category: CategoryStrategy, Difficulty: DifficultyEasy,
			Text: "Why this deal, why now, and why us?"},
		{ID: "rh_med_1", PartnerID: "richard", Category: CategoryStrategy, Difficulty: DifficultyMedium,
			Text:     "Who else looked at this and passed? Auctions don't usually leave money on the table.",
			FollowUp: "So what do you know that they didn't?"},
		{ID: "rh_med_2", PartnerID: "richard", Category: CategoryRisk, Difficulty: DifficultyMedium,
			Text: "If this deal goes wrong, it goes wrong with our name on it. How does that look in the press?"},
		{ID: "rh_hard_1", PartnerID: "richard", Category: CategoryStrategy, Difficulty: DifficultyHard,
			Text:     "Our LPs saw three sponsors blow up in this sector last cycle. Why is our reputation safe underwriting a fourth attempt?",
			FollowUp: "That's the pitch version. Give me the version you'd tell me over a drink."},
		{ID: "rh_hard_2", PartnerID: "richard", Category: CategoryStrategy, Difficulty: DifficultyHard,
			Text: "What's the exit? Name the buyers who pay up for this in five years."},
	}
}

// voteReasoning is the canned per-partner explanation attached to each vote
// tier. Table-driven so verdicts stay deterministic for a given satisfaction
// map.
var voteReasoning = map[string]map[Outcome]string{
	"margaret": {
		OutcomeApproved:    "The risk analysis was thorough. I'm comfortable with the downside.",
		OutcomeConditional: "Acceptable, provided we tighten the covenant package before signing.",
		OutcomeTabled:      "The downside work isn't finished. Come back when it is.",
		OutcomeRejected:    "The risk answers were hand-waving. I won't underwrite hope.",
	},
	"david": {
		OutcomeApproved:    "There's a real operational plan here, not just a spreadsheet.",
		OutcomeConditional: "Fine on the numbers, but I want a named operating partner attached.",
		OutcomeTabled:      "I don't yet believe management can execute this plan.",
		OutcomeRejected:    "No credible answer on who actually runs the value-creation plan.",
	},
	"victoria": {
		OutcomeApproved:    "The returns hold up without heroic assumptions. That's rare.",
		OutcomeConditional: "Workable, if we re-cut the model at a lower entry multiple.",
		OutcomeTabled:      "The financial bridge has gaps. Rebuild it and re-present.",
		OutcomeRejected:    "The numbers don't survive contact with arithmetic.",
	},
	"richard": {
		OutcomeApproved:    "Good deal, good story, good for the franchise. Do it.",
		OutcomeConditional: "I'll support it if the headline risk is managed from day one.",
		OutcomeTabled:      "The timing is wrong for the firm. Park it a quarter.",
		OutcomeRejected:    "This is a deal we'd spend years explaining to LPs. Pass.",
	},
}

// genericReasoning backs any partner id missing from the table, so custom
// rosters still produce a complete verdict.
var genericReasoning = map[Outcome]string{
	OutcomeApproved:    "The answers held up under pressure. I'm a yes.",
	OutcomeConditional: "Supportable with conditions attached.",
	OutcomeTabled:      "Not convinced yet. More work needed.",
	OutcomeRejected:    "The pitch didn't survive the questions.",
}

func reasoningFor(partnerID string, vote Outcome) string {
	if table, ok := voteReasoning[partnerID]; ok {
		if text, ok := table[vote]; ok {
			return text
		}
	}
	return genericReasoning[vote]
}

// reactionFeedback is what the partner says back after a scored response,
// keyed by reaction bucket.
var reactionFeedback = map[Reaction]string{
	ReactionSatisfied:  "That's a real answer. Noted.",
	ReactionProbing:    "Hm. Say more about that next time.",
	ReactionSkeptical:  "I've heard that line in a hundred pitches.",
	ReactionDismissive: "That's not an answer. Let's try again.",
}
