package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cl "dealflow/internal/cli"
	"dealflow/internal/config"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "df",
		Short:        "Dealflow private equity game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newGamesCmd(&apiBase),
		newWarningsCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newICCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newGamesCmd(apiBase *string) *cobra.Command {
	games := &cobra.Command{
		Use:   "games",
		Short: "Manage playthroughs",
	}

	var seed int64
	var volatility string
	create := &cobra.Command{
		Use:   "create",
		Short: "Start a new fund",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()

			var seedPtr *int64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}
			out, err := newClient(apiBase).CreateGame(ctx, seedPtr, volatility)
			if err != nil {
				return err
			}
			id, _ := out["id"].(string)
			if err := cl.SaveState(cl.State{GameID: id}); err != nil {
				return err
			}
			printSuccess("Game %s created and set as active.", id)
			return nil
		},
	}
	create.Flags().Int64Var(&seed, "seed", 0, "world seed for a reproducible run")
	create.Flags().StringVar(&volatility, "volatility", "", "starting market regime (NORMAL, BULL_RUN, CREDIT_CRUNCH, PANIC)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the active game",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).GetGame(ctx, state.GameID)
			if err != nil {
				return err
			}
			var g gamePayload
			if err := decodePayload(out, &g); err != nil {
				return err
			}
			renderGame(g)
			return nil
		},
	}

	advance := &cobra.Command{
		Use:   "advance",
		Short: "Advance the world one week",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Advance(ctx, state.GameID, uuid.NewString())
			if err != nil {
				return err
			}
			var p advancePayload
			if err := decodePayload(out, &p); err != nil {
				return err
			}
			renderTick(p.Result)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <game-id>",
		Short: "Switch the active game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.SaveState(cl.State{GameID: args[0]}); err != nil {
				return err
			}
			printSuccess("Active game set to %s.", args[0])
			return nil
		},
	}

	games.AddCommand(create, show, advance, use)
	return games
}

func newWarningsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "warnings",
		Short: "Show active risk warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Warnings(ctx, state.GameID)
			if err != nil {
				return err
			}
			var p warningsPayload
			if err := decodePayload(out, &p); err != nil {
				return err
			}
			renderWarnings(p.Warnings)
			return nil
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).History(ctx, state.GameID, limit)
			if err != nil {
				return err
			}
			ticks, _ := out["ticks"].([]any)
			if len(ticks) == 0 {
				printInfo("No history yet.")
				return nil
			}
			for _, raw := range ticks {
				rec, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				week, _ := rec["Week"].(float64)
				fmt.Printf("week %d\n", int(week))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of weeks to show")
	return cmd
}

func newICCmd(apiBase *string) *cobra.Command {
	ic := &cobra.Command{
		Use:   "ic",
		Short: "Investment committee meetings",
	}

	start := &cobra.Command{
		Use:   "start <company-id>",
		Short: "Open a committee session for a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).StartMeeting(ctx, state.GameID, args[0])
			if err != nil {
				return err
			}
			sid, _ := out["id"].(string)
			state.SessionID = sid
			if err := cl.SaveState(state); err != nil {
				return err
			}
			company, _ := out["company"].(string)
			printSuccess("Committee session %s opened for %s.", sid, company)
			printInfo("Run `df ic meeting` to enter the room.")
			return nil
		},
	}

	meeting := &cobra.Command{
		Use:   "meeting",
		Short: "Enter the committee room (interactive)",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session, run `df ic start <company-id>` first")
			}
			return runMeetingTUI(newClient(apiBase), state.SessionID)
		},
	}

	enter := &cobra.Command{
		Use:   "enter",
		Short: "Take your seat and start the pitch clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingEnter(ctx, state.SessionID)
			if err != nil {
				return err
			}
			renderMeetingTurn(out)
			return nil
		},
	}

	pitch := &cobra.Command{
		Use:   "pitch <text>",
		Short: "Deliver the opening pitch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingPitch(ctx, state.SessionID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			renderMeetingTurn(out)
			return nil
		},
	}

	respond := &cobra.Command{
		Use:   "respond <text>",
		Short: "Answer the question on the floor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingRespond(ctx, state.SessionID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			renderMeetingTurn(out)
			return nil
		},
	}

	skip := &cobra.Command{
		Use:   "skip",
		Short: "Pass on the current question",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingSkip(ctx, state.SessionID)
			if err != nil {
				return err
			}
			renderMeetingTurn(out)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the open session",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingState(ctx, state.SessionID)
			if err != nil {
				return err
			}
			phase, _ := out["phase"].(string)
			company, _ := out["company"].(string)
			fmt.Printf("%s: %s\n", company, phase)
			if v, ok := out["verdict"].(map[string]any); ok {
				renderVerdict(v)
			}
			return nil
		},
	}

	finalize := &cobra.Command{
		Use:   "finalize",
		Short: "Force the verdict without waiting out deliberation",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).MeetingFinalize(ctx, state.SessionID)
			if err != nil {
				return err
			}
			if v, ok := out["verdict"].(map[string]any); ok {
				renderVerdict(v)
			}
			return nil
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Walk out of the meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cl.LoadState()
			if err != nil {
				return err
			}
			if state.SessionID == "" {
				return fmt.Errorf("no open session")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).MeetingCancel(ctx, state.SessionID); err != nil {
				return err
			}
			state.SessionID = ""
			if err := cl.SaveState(state); err != nil {
				return err
			}
			printWarn("Meeting cancelled. The partners will remember.")
			return nil
		},
	}

	ic.AddCommand(start, meeting, enter, pitch, respond, skip, status, finalize, cancelCmd)
	return ic
}
