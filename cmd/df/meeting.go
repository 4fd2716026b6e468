package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cl "dealflow/internal/cli"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	partnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	questionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(78)
	timerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	timerLowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	feedbackStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("7"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	verdictStyle  = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 2)
)

type tickMsg time.Time

type stateMsg map[string]any

type errMsg struct{ err error }

type meetingModel struct {
	client *cl.Client
	sid    string

	phase        string
	company      string
	partnerName  string
	question     string
	feedback     string
	timer        int
	asked        int
	maxQuestions int
	verdict      map[string]any
	outcome      string

	input   textarea.Model
	lastErr string
	done    bool
}

func runMeetingTUI(client *cl.Client, sessionID string) error {
	ta := textarea.New()
	ta.Placeholder = "Make your case..."
	ta.SetWidth(78)
	ta.SetHeight(6)
	ta.CharLimit = 0
	ta.Focus()

	m := meetingModel{
		client: client,
		sid:    sessionID,
		input:  ta,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m meetingModel) Init() tea.Cmd {
	return tea.Batch(m.enterCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m meetingModel) enterCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out, err := m.client.MeetingState(ctx, m.sid)
		if err != nil {
			return errMsg{err}
		}
		if phase, _ := out["phase"].(string); phase == "PREP" {
			out, err = m.client.MeetingEnter(ctx, m.sid)
			if err != nil {
				return errMsg{err}
			}
		}
		return stateMsg(out)
	}
}

func (m meetingModel) pollCmd() tea.Cmd {
	draft := m.input.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Keep the server's draft current so a timer expiry submits what
		// the player actually typed.
		if draft != "" {
			_, _ = m.client.MeetingDraft(ctx, m.sid, draft)
		}
		out, err := m.client.MeetingState(ctx, m.sid)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg(out)
	}
}

func (m meetingModel) submitCmd() tea.Cmd {
	text := m.input.Value()
	phase := m.phase
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var (
			out map[string]any
			err error
		)
		switch phase {
		case "OPENING_PITCH":
			out, err = m.client.MeetingPitch(ctx, m.sid, text)
		case "INTERROGATION":
			out, err = m.client.MeetingRespond(ctx, m.sid, text)
		default:
			return errMsg{fmt.Errorf("nothing to submit in %s", phase)}
		}
		if err != nil {
			return errMsg{err}
		}
		return stateMsg(out)
	}
}

func (m meetingModel) skipCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out, err := m.client.MeetingSkip(ctx, m.sid)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg(out)
	}
}

func (m meetingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			if m.done {
				return m, tea.Quit
			}
			cmd := m.submitCmd()
			m.input.Reset()
			return m, cmd
		case "ctrl+k":
			if m.phase == "INTERROGATION" {
				m.input.Reset()
				return m, m.skipCmd()
			}
		}
		if m.done {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tickMsg:
		if m.done {
			return m, tickCmd()
		}
		if m.timer > 0 {
			m.timer--
		}
		return m, tea.Batch(m.pollCmd(), tickCmd())

	case stateMsg:
		m.applyState(map[string]any(msg))
		return m, nil

	case errMsg:
		m.lastErr = msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *meetingModel) applyState(state map[string]any) {
	m.lastErr = ""
	m.phase, _ = state["phase"].(string)
	m.company, _ = state["company"].(string)
	m.outcome, _ = state["outcome"].(string)
	if t, ok := state["timer_remaining"].(float64); ok {
		m.timer = int(t)
	}
	if q, ok := state["questions_asked"].(float64); ok {
		m.asked = int(q)
	}
	if q, ok := state["max_questions"].(float64); ok {
		m.maxQuestions = int(q)
	}
	m.question, _ = state["current_question"].(string)
	m.partnerName = ""
	if p, ok := state["current_partner"].(map[string]any); ok {
		m.partnerName, _ = p["name"].(string)
	}
	m.feedback = ""
	if history, ok := state["history"].([]any); ok && len(history) > 0 {
		if last, ok := history[len(history)-1].(map[string]any); ok {
			m.feedback, _ = last["feedback"].(string)
		}
	}
	if v, ok := state["verdict"].(map[string]any); ok {
		m.verdict = v
	}
	if m.phase == "VERDICT" || m.outcome == "CANCELLED" {
		m.done = true
	}
}

func (m meetingModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Investment Committee — %s", m.company)))
	b.WriteString("\n")

	ts := timerStyle
	if m.timer <= 15 {
		ts = timerLowStyle
	}
	b.WriteString(fmt.Sprintf("%s   %s\n\n",
		helpStyle.Render(m.phase),
		ts.Render(fmt.Sprintf("%02d:%02d", m.timer/60, m.timer%60))))

	switch m.phase {
	case "OPENING_PITCH":
		b.WriteString(questionStyle.Render("The partners are waiting. Deliver your opening pitch."))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	case "INTERROGATION":
		if m.partnerName != "" {
			b.WriteString(partnerStyle.Render(m.partnerName+":") + "\n")
		}
		b.WriteString(questionStyle.Render(m.question))
		b.WriteString("\n")
		if m.feedback != "" {
			b.WriteString(feedbackStyle.Render(m.feedback) + "\n")
		}
		b.WriteString(fmt.Sprintf("%s\n\n", helpStyle.Render(
			fmt.Sprintf("question %d of %d", m.asked+1, m.maxQuestions))))
		b.WriteString(m.input.View())
	case "DELIBERATION":
		b.WriteString(questionStyle.Render("The partners confer in low voices. Nothing to do but wait."))
	case "VERDICT":
		b.WriteString(verdictStyle.Render(m.verdictText()))
	default:
		b.WriteString(helpStyle.Render("Taking your seat..."))
	}
	b.WriteString("\n")

	if m.lastErr != "" {
		b.WriteString(errStyle.Render("! "+m.lastErr) + "\n")
	}
	if m.done {
		b.WriteString(helpStyle.Render("press any key to leave the room"))
	} else {
		b.WriteString(helpStyle.Render("ctrl+s submit · ctrl+k skip question · esc leave"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m meetingModel) verdictText() string {
	if m.verdict == nil {
		return "The committee has spoken."
	}
	outcome, _ := m.verdict["outcome"].(string)
	overall, _ := m.verdict["overall"].(float64)
	summary, _ := m.verdict["summary"].(string)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  (%.0f/100)\n\n", outcome, overall)
	if summary != "" {
		b.WriteString(summary + "\n")
	}
	if votes, ok := m.verdict["votes"].([]any); ok {
		b.WriteString("\n")
		for _, raw := range votes {
			vote, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := vote["name"].(string)
			call, _ := vote["vote"].(string)
			fmt.Fprintf(&b, "%-18s %s\n", name, call)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
