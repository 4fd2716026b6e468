package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"dealflow/internal/sim"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(format string, args ...any) {
	success.Printf(format+"\n", args...)
}

func printWarn(format string, args ...any) {
	warn.Printf(format+"\n", args...)
}

func printInfo(format string, args ...any) {
	neutral.Printf(format+"\n", args...)
}

// decodePayload round-trips a generic API map into a typed struct.
func decodePayload(in map[string]any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type gamePayload struct {
	ID         string          `json:"id"`
	Week       int             `json:"week"`
	Volatility string          `json:"volatility"`
	Player     sim.PlayerState `json:"player"`
	Rivals     []sim.RivalFund `json:"rivals"`
}

type warningsPayload struct {
	Warnings []sim.Warning `json:"warnings"`
}

type advancePayload struct {
	Result sim.WorldTickResult `json:"result"`
}

func renderGame(g gamePayload) {
	accent.Printf("Week %d", g.Week)
	fmt.Printf("  market %s\n", g.Volatility)
	fmt.Printf("Cash %s   Rep %d   Stress %d   Health %d   Ethics %d\n",
		sim.FormatMoney(g.Player.Cash), g.Player.Reputation, g.Player.Stress, g.Player.Health, g.Player.Ethics)

	if len(g.Player.Portfolio) == 0 {
		printInfo("Pipeline is empty.")
		return
	}
	fmt.Println()
	accent.Println("Pipeline")
	for _, c := range g.Player.Portfolio {
		phase := string(c.DealPhase)
		line := fmt.Sprintf("  %-28s %-11s val %-9s growth %s",
			c.Name, phase, sim.FormatMoney(c.CurrentValuation), sim.FormatPercent(c.RevenueGrowth))
		switch c.DealPhase {
		case sim.PhaseWon:
			success.Println(line)
		case sim.PhaseLost, sim.PhaseWalkedAway:
			danger.Println(line)
		default:
			fmt.Println(line)
		}
		if c.ActiveEvent != nil {
			warn.Printf("      ! %s (respond by week %d)\n", c.ActiveEvent.Title, c.ActiveEvent.ExpiresWeek)
		}
		fmt.Printf("      id %s\n", c.ID)
	}
}

func renderWarnings(warnings []sim.Warning) {
	if len(warnings) == 0 {
		printSuccess("No active warnings.")
		return
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		return warningRank(warnings[i].Level) > warningRank(warnings[j].Level)
	})
	for _, w := range warnings {
		line := fmt.Sprintf("[%s] %s", w.Level, w.Message)
		switch w.Level {
		case sim.LevelCritical:
			danger.Println(line)
		case sim.LevelHigh:
			warn.Println(line)
		default:
			fmt.Println(line)
		}
		fmt.Printf("    -> %s\n", w.SuggestedAction)
	}
}

func renderTick(result sim.WorldTickResult) {
	accent.Printf("Week %d advanced", result.Week)
	if result.QuarterClosed {
		fmt.Print("  (quarter closed)")
	}
	fmt.Println()

	for id, u := range result.CompanyUpdates {
		fmt.Printf("  %s: revenue %s, valuation %s, growth %s\n",
			shortID(id), sim.FormatMoney(u.Revenue), sim.FormatMoney(u.CurrentValuation), sim.FormatPercent(u.GrowthRate))
	}
	for _, ev := range result.NewEvents {
		warn.Printf("  event: %s [%s]\n", ev.Title, ev.Severity)
	}
	if result.Drama != nil {
		warn.Printf("  drama: %s\n", result.Drama.Title)
		for _, ch := range result.Drama.Choices {
			fmt.Printf("      (%s) %s\n", ch.ID, ch.Label)
		}
	}
	if result.RivalAction != nil {
		warn.Printf("  rival: %s\n", result.RivalAction.Title)
	}
	if result.MarketEvent != nil {
		danger.Printf("  market: %s -> %s\n", result.MarketEvent.Title, result.MarketEvent.NewVolatility)
	}
	renderWarnings(result.Warnings)
}

func warningRank(l sim.WarningLevel) int {
	switch l {
	case sim.LevelCritical:
		return 3
	case sim.LevelHigh:
		return 2
	default:
		return 1
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderMeetingTurn prints the state of the floor after a non-interactive
// meeting command: who is asking, what, and how long is left on the clock.
func renderMeetingTurn(view map[string]any) {
	phase, _ := view["phase"].(string)
	company, _ := view["company"].(string)
	accent.Printf("%s  [%s]\n", company, phase)

	if history, ok := view["history"].([]any); ok && len(history) > 0 {
		if last, ok := history[len(history)-1].(map[string]any); ok {
			if feedback, _ := last["feedback"].(string); feedback != "" {
				reaction, _ := last["reaction"].(string)
				fmt.Printf("  (%s) %s\n", reaction, feedback)
			}
		}
	}

	if v, ok := view["verdict"].(map[string]any); ok {
		renderVerdict(v)
		return
	}

	if partner, ok := view["current_partner"].(map[string]any); ok {
		name, _ := partner["name"].(string)
		title, _ := partner["title"].(string)
		question, _ := view["current_question"].(string)
		warn.Printf("%s, %s:\n", name, title)
		fmt.Printf("  %s\n", question)
	}
	if remaining, ok := view["timer_remaining"].(float64); ok && remaining > 0 {
		printInfo("%.0fs on the clock.", remaining)
	}
}

func renderVerdict(v map[string]any) {
	outcome, _ := v["outcome"].(string)
	overall, _ := v["overall"].(float64)
	line := fmt.Sprintf("Verdict: %s (%.0f/100)", outcome, overall)
	switch outcome {
	case "APPROVED":
		success.Println(line)
	case "REJECTED":
		danger.Println(line)
	default:
		warn.Println(line)
	}
	if summary, ok := v["summary"].(string); ok && summary != "" {
		fmt.Println(summary)
	}
	if votes, ok := v["votes"].([]any); ok {
		for _, raw := range votes {
			vote, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := vote["name"].(string)
			call, _ := vote["vote"].(string)
			reason, _ := vote["reasoning"].(string)
			fmt.Printf("  %-18s %-12s %s\n", name, call, reason)
		}
	}
	if dims, ok := v["dimensions"].(map[string]any); ok {
		keys := make([]string, 0, len(dims))
		for k := range dims {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if f, ok := dims[k].(float64); ok {
				parts = append(parts, fmt.Sprintf("%s %.0f", k, f))
			}
		}
		fmt.Println("  " + strings.Join(parts, " | "))
	}
}
