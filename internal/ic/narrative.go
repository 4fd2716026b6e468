package ic

import (
	"context"
	"fmt"
	"strings"
)

// Narrator dresses committee output in prose. Implementations may call out
// to an external text service; the engine treats them as best-effort and
// falls back to canned text on any error. One attempt, no retries.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// NopNarrator always declines, leaving the canned text in place.
type NopNarrator struct{}

func (NopNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

// narrateSummary asks the narrator for a verdict write-up. Timer state is
// irrelevant here since the meeting is already decided.
func (s *Session) narrateSummary(v Verdict) string {
	fallback := defaultSummary(v.Outcome, v.Overall)

	ctx, cancel := context.WithTimeout(context.Background(), narrateTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize an investment committee verdict on %s in two sentences, in the dry voice of a fund's meeting minutes.\n", s.Company.Name)
	fmt.Fprintf(&b, "Outcome: %s. Overall score: %.0f/100.\n", v.Outcome, v.Overall)
	for _, vote := range v.Votes {
		fmt.Fprintf(&b, "%s voted %s: %s\n", vote.Name, vote.Vote, vote.Reasoning)
	}

	text, err := s.narrator.Narrate(ctx, b.String())
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}
