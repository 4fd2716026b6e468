package ic

import (
	"errors"
	"strings"
	"testing"

	"dealflow/internal/sim"
)

// stubSource replays scripted draws, then repeats the last one. Draw order in
// a session: one draw per question pick, plus one follow-up coin after each
// weak answer.
type stubSource struct {
	vals []float64
	i    int
}

func (s *stubSource) Next() float64 {
	if len(s.vals) == 0 {
		return 0.0
	}
	if s.i >= len(s.vals) {
		return s.vals[len(s.vals)-1]
	}
	v := s.vals[s.i]
	s.i++
	return v
}

func testCompany() sim.PortfolioCompany {
	return sim.PortfolioCompany{
		ID:        "co1",
		Name:      "Testco",
		Revenue:   10_000_000,
		EBITDA:    2_000_000,
		DealPhase: sim.PhaseAnalyzed,
	}
}

// strongAnswer clears every length gate and never earns a follow-up.
const strongAnswer = "Specifically, the plan rests on 3 cost programs worth $2M of EBITDA, and the downside case still clears the covenant package with 15% headroom."

func newTestSession(opts Options) *Session {
	return NewSession("game1", testCompany(), opts, &stubSource{})
}

func TestSessionFullFlow(t *testing.T) {
	s := newTestSession(Options{})
	if s.Phase != PhasePrep {
		t.Fatalf("new session in %s, want PREP", s.Phase)
	}
	for _, p := range s.Partners {
		if s.Satisfaction[p.ID] != 50 {
			t.Fatalf("%s starts at %d, want 50", p.ID, s.Satisfaction[p.ID])
		}
	}

	if err := s.EnterMeeting(); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if s.Phase != PhaseOpeningPitch || s.TimerRemaining != 180 {
		t.Fatalf("after enter: phase=%s timer=%d", s.Phase, s.TimerRemaining)
	}
	if err := s.EnterMeeting(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("double enter returned %v", err)
	}

	pitch := "Buy Testco at 8x EBITDA, fix the operations, exit at 10x for a 25% IRR. The thesis is simple and the risk is manageable."
	if err := s.SubmitPitch(pitch); err != nil {
		t.Fatalf("pitch: %v", err)
	}
	if s.Phase != PhaseInterrogation {
		t.Fatalf("phase = %s, want INTERROGATION", s.Phase)
	}
	if s.PitchScore == 0 {
		t.Fatal("pitch was not scored")
	}
	if s.Current == nil {
		t.Fatal("no opening question")
	}
	if s.Current.PartnerID != s.Partners[0].ID {
		t.Fatalf("first question from %s, want the roster head %s", s.Current.PartnerID, s.Partners[0].ID)
	}

	// Answer through the full question budget.
	for i := 0; i < s.MaxQuestions; i++ {
		if s.Phase != PhaseInterrogation {
			t.Fatalf("question %d: phase = %s", i, s.Phase)
		}
		if err := s.SubmitResponse(strongAnswer); err != nil {
			t.Fatalf("response %d: %v", i, err)
		}
	}
	if s.Phase != PhaseDeliberation {
		t.Fatalf("after %d answers: phase = %s, want DELIBERATION", s.MaxQuestions, s.Phase)
	}
	if len(s.History) != s.MaxQuestions {
		t.Fatalf("history = %d entries, want %d", len(s.History), s.MaxQuestions)
	}

	v, err := s.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if s.Phase != PhaseVerdict || !s.Done() {
		t.Fatal("finalize did not close the session")
	}
	if v.Outcome == "" || len(v.Votes) != len(s.Partners) {
		t.Fatalf("incomplete verdict: %+v", v)
	}
	if s.Outcome() != v.Outcome {
		t.Fatalf("session outcome %s != verdict %s", s.Outcome(), v.Outcome)
	}

	again, err := s.Finalize()
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if again != v {
		t.Fatal("finalize recomputed the verdict")
	}
}

func TestSessionRotatesPartners(t *testing.T) {
	s := newTestSession(Options{})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}

	var askers []string
	for s.Phase == PhaseInterrogation {
		askers = append(askers, s.Current.PartnerID)
		if err := s.SubmitResponse(strongAnswer); err != nil {
			t.Fatal(err)
		}
	}
	// Default budget of 6 across 4 partners: round robin wraps.
	want := []string{"margaret", "david", "victoria", "richard", "margaret", "david"}
	if len(askers) != len(want) {
		t.Fatalf("askers = %v", askers)
	}
	for i := range want {
		if askers[i] != want[i] {
			t.Fatalf("asker %d = %s, want %s (%v)", i, askers[i], want[i], askers)
		}
	}
}

func TestSessionPitchTooBrief(t *testing.T) {
	s := newTestSession(Options{})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	err := s.SubmitPitch("Trust me.")
	if !errors.Is(err, ErrPitchTooBrief) {
		t.Fatalf("short pitch returned %v", err)
	}
	// Rejected in place: the clock keeps running, the phase holds.
	if s.Phase != PhaseOpeningPitch {
		t.Fatalf("phase = %s after rejection", s.Phase)
	}
}

func TestSessionResponseTooBrief(t *testing.T) {
	s := startedInterrogation(t)
	before := len(s.History)
	if err := s.SubmitResponse("No."); !errors.Is(err, ErrResponseTooBrief) {
		t.Fatalf("short response returned %v", err)
	}
	if len(s.History) != before || s.QuestionsAsked != 0 {
		t.Fatal("rejected response consumed a slot")
	}
}

func TestSessionSkipQuestion(t *testing.T) {
	s := startedInterrogation(t)
	first := s.Current.PartnerID

	if err := s.SkipQuestion(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if s.Satisfaction[first] != 35 {
		t.Fatalf("satisfaction = %d, want 50-15", s.Satisfaction[first])
	}
	if s.QuestionsAsked != 1 {
		t.Fatalf("skip should consume a slot, asked = %d", s.QuestionsAsked)
	}
	ex := s.History[0]
	if !ex.Skipped || ex.Reaction != ReactionDismissive {
		t.Fatalf("skip exchange = %+v", ex)
	}
	if s.Current.PartnerID == first {
		t.Fatal("floor did not pass to the next partner")
	}
}

func TestSessionWeakAnswerFollowUp(t *testing.T) {
	s := startedInterrogation(t)
	parentID := s.Current.ID
	parentFollowUp := s.Current.FollowUp
	if parentFollowUp == "" {
		t.Fatalf("fixture question %s has no follow-up", parentID)
	}

	// Long enough to submit, short enough to earn the follow-up. The stub
	// source draws 0.0 for the coin, which keeps the same partner on us.
	if err := s.SubmitResponse("We have a plan for all of that."); err != nil {
		t.Fatalf("weak response: %v", err)
	}
	if s.Current == nil || s.Current.ID != parentID {
		t.Fatalf("expected the same question held for a follow-up, got %+v", s.Current)
	}
	if got := s.CurrentQuestionText(); got != parentFollowUp {
		t.Fatalf("question text = %q, want the follow-up phrasing", got)
	}
	if s.TimerRemaining != 90 {
		t.Fatalf("follow-up did not reset the clock: %d", s.TimerRemaining)
	}

	// Answering the follow-up properly clears the flag and moves on.
	if err := s.SubmitResponse(strongAnswer); err != nil {
		t.Fatal(err)
	}
	if s.Current.ID == parentID {
		t.Fatal("follow-up answered but question did not advance")
	}
	if s.CurrentQuestionText() != s.Current.Text {
		t.Fatal("stale follow-up phrasing on a fresh question")
	}
}

func TestSessionDifficultyTracksSatisfaction(t *testing.T) {
	s := newTestSession(Options{})
	s.Satisfaction["margaret"] = 80
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	if s.Current.Difficulty != DifficultyEasy {
		t.Fatalf("satisfied partner asked a %s question", s.Current.Difficulty)
	}

	s2 := newTestSession(Options{})
	s2.Satisfaction["margaret"] = 20
	if err := s2.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s2.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	if s2.Current.Difficulty != DifficultyHard {
		t.Fatalf("hostile partner asked a %s question", s2.Current.Difficulty)
	}
}

func TestSessionEarlyDeliberationWhenBankRunsDry(t *testing.T) {
	opts := Options{
		MaxQuestions: 6,
		Partners:     []Partner{{ID: "solo", Name: "Solo Partner", Focus: CategoryRisk}},
		Questions: []Question{
			{ID: "q1", PartnerID: "solo", Category: CategoryRisk, Difficulty: DifficultyMedium, Text: "First question?"},
			{ID: "q2", PartnerID: "solo", Category: CategoryRisk, Difficulty: DifficultyMedium, Text: "Second question?"},
		},
	}
	s := newTestSession(opts)
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	for s.Phase == PhaseInterrogation {
		if err := s.SubmitResponse(strongAnswer); err != nil {
			t.Fatal(err)
		}
	}
	if s.Phase != PhaseDeliberation {
		t.Fatalf("phase = %s", s.Phase)
	}
	if s.QuestionsAsked != 2 {
		t.Fatalf("asked = %d, want the whole bank of 2", s.QuestionsAsked)
	}
}

func TestSessionTimerAutoSubmitsPitch(t *testing.T) {
	s := newTestSession(Options{})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	s.UpdateDraft("Half a thought")
	s.TimerRemaining = 1

	if fired := s.TickTimer(); !fired {
		t.Fatal("expiry did not fire")
	}
	// Auto-submit bypasses the minimum length.
	if s.Phase != PhaseInterrogation {
		t.Fatalf("phase = %s, want INTERROGATION", s.Phase)
	}
	if s.PitchText != "Half a thought" {
		t.Fatalf("pitch text = %q", s.PitchText)
	}
}

func TestSessionTimerRespectsPauseAndPhase(t *testing.T) {
	s := newTestSession(Options{})
	if s.TickTimer() {
		t.Fatal("timer ticked in PREP")
	}
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	s.PauseTimer()
	before := s.TimerRemaining
	if s.TickTimer() || s.TimerRemaining != before {
		t.Fatal("paused timer moved")
	}
	s.ResumeTimer()
	if s.TickTimer() {
		t.Fatal("fresh pitch clock fired immediately")
	}
	if s.TimerRemaining != before-1 {
		t.Fatalf("timer = %d, want %d", s.TimerRemaining, before-1)
	}
}

func TestSessionDeliberationExpiryFinalizes(t *testing.T) {
	s := newTestSession(Options{MaxQuestions: 1})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitResponse(strongAnswer); err != nil {
		t.Fatal(err)
	}
	if s.Phase != PhaseDeliberation {
		t.Fatalf("phase = %s", s.Phase)
	}
	s.TimerRemaining = 1
	if !s.TickTimer() {
		t.Fatal("deliberation expiry did not fire")
	}
	if s.Phase != PhaseVerdict || s.Verdict == nil {
		t.Fatal("expiry did not deliver a verdict")
	}
	// A delivered verdict stops the clock for good.
	if s.TickTimer() {
		t.Fatal("timer ticked after the verdict")
	}
}

func TestSessionCancel(t *testing.T) {
	s := startedInterrogation(t)
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !s.Done() || s.Outcome() != OutcomeCancelled {
		t.Fatalf("outcome = %s, want CANCELLED", s.Outcome())
	}
	if err := s.SubmitResponse(strongAnswer); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("response after cancel returned %v", err)
	}
	if _, err := s.Finalize(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("finalize after cancel returned %v", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("double cancel returned %v", err)
	}
}

func TestSessionCancelAfterVerdict(t *testing.T) {
	s := newTestSession(Options{MaxQuestions: 1})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitResponse(strongAnswer); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("cancel after verdict returned %v", err)
	}
}

// startedInterrogation returns a session already in INTERROGATION with the
// default roster.
func startedInterrogation(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(Options{})
	if err := s.EnterMeeting(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPitch(strings.Repeat("A solid pitch. ", 10)); err != nil {
		t.Fatal(err)
	}
	if s.Phase != PhaseInterrogation || s.Current == nil {
		t.Fatalf("setup failed: phase=%s", s.Phase)
	}
	return s
}
