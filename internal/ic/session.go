package ic

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow/internal/sim"
)

// Phase is the committee meeting lifecycle. Transitions are strictly
// forward; there is no way back to an earlier phase.
type Phase string

const (
	PhasePrep          Phase = "PREP"
	PhaseOpeningPitch  Phase = "OPENING_PITCH"
	PhaseInterrogation Phase = "INTERROGATION"
	PhaseDeliberation  Phase = "DELIBERATION"
	PhaseVerdict       Phase = "VERDICT"
)

var phaseRank = map[Phase]int{
	PhasePrep:          0,
	PhaseOpeningPitch:  1,
	PhaseInterrogation: 2,
	PhaseDeliberation:  3,
	PhaseVerdict:       4,
}

var (
	ErrWrongPhase       = errors.New("operation not valid in current meeting phase")
	ErrSessionClosed    = errors.New("meeting session is closed")
	ErrPitchTooBrief    = errors.New("pitch too brief")
	ErrResponseTooBrief = errors.New("response too brief")
)

// Exchange records one asked question and its scored answer.
type Exchange struct {
	PartnerID string   `json:"partner_id"`
	Question  Question `json:"question"`
	Response  string   `json:"response"`
	Skipped   bool     `json:"skipped"`
	Delta     int      `json:"delta"`
	Reaction  Reaction `json:"reaction"`
	Feedback  string   `json:"feedback"`
	FollowUp  string   `json:"follow_up,omitempty"`
}

// Options tunes a session. Zero values fall back to the defaults below.
type Options struct {
	MaxQuestions        int
	PitchSeconds        int
	ResponseSeconds     int
	DeliberationSeconds int
	Weights             Weights
	Thresholds          Thresholds
	Partners            []Partner
	Questions           []Question
	Narrator            Narrator
}

const (
	defaultMaxQuestions        = 6
	defaultPitchSeconds        = 180
	defaultResponseSeconds     = 90
	defaultDeliberationSeconds = 5

	skipPenalty          = -15
	followUpChance       = 0.5
	minPitchLen          = 50
	minResponseLen       = 20
	startingSatisfaction = 50

	narrateTimeout = 8 * time.Second
)

// Session is one committee meeting for one deal. Not safe for concurrent
// use; the host serializes access (the API server holds one lock per
// session).
type Session struct {
	ID        string               `json:"id"`
	GameID    string               `json:"game_id"`
	Company   sim.PortfolioCompany `json:"company"`
	Phase     Phase                `json:"phase"`
	CreatedAt time.Time            `json:"created_at"`

	Partners     []Partner      `json:"partners"`
	Satisfaction map[string]int `json:"satisfaction"`

	PitchText  string     `json:"pitch_text"`
	PitchScore int        `json:"pitch_score"`
	History    []Exchange `json:"history"`
	Current    *Question  `json:"current_question,omitempty"`

	QuestionsAsked int `json:"questions_asked"`
	MaxQuestions   int `json:"max_questions"`

	// Draft is the player's in-progress text, kept on the session so a
	// timer expiry can auto-submit whatever exists, even nothing.
	Draft string `json:"-"`

	TimerRemaining int  `json:"timer_remaining"`
	TimerPaused    bool `json:"timer_paused"`

	Verdict   *Verdict `json:"verdict,omitempty"`
	Cancelled bool     `json:"cancelled"`

	opts      Options
	questions []Question
	used      map[string]bool
	// followUpText, when set, replaces the bank question text for the
	// current ask. Follow-ups reuse the parent question's id and scoring
	// category.
	followUpText string
	partnerIdx   int
	rng          sim.Source
	narrator     Narrator
}

// NewSession prepares a meeting in PREP for the given deal.
func NewSession(gameID string, company sim.PortfolioCompany, opts Options, rng sim.Source) *Session {
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = defaultMaxQuestions
	}
	if opts.PitchSeconds <= 0 {
		opts.PitchSeconds = defaultPitchSeconds
	}
	if opts.ResponseSeconds <= 0 {
		opts.ResponseSeconds = defaultResponseSeconds
	}
	if opts.DeliberationSeconds <= 0 {
		opts.DeliberationSeconds = defaultDeliberationSeconds
	}
	if len(opts.Weights) == 0 {
		opts.Weights = DefaultWeights()
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if len(opts.Partners) == 0 {
		opts.Partners = DefaultPartners()
	}
	if len(opts.Questions) == 0 {
		opts.Questions = DefaultQuestions()
	}
	narrator := opts.Narrator
	if narrator == nil {
		narrator = NopNarrator{}
	}

	sat := make(map[string]int, len(opts.Partners))
	for _, p := range opts.Partners {
		sat[p.ID] = startingSatisfaction
	}

	return &Session{
		ID:           uuid.NewString(),
		GameID:       gameID,
		Company:      company,
		Phase:        PhasePrep,
		CreatedAt:    time.Now().UTC(),
		Partners:     opts.Partners,
		Satisfaction: sat,
		MaxQuestions: opts.MaxQuestions,
		opts:         opts,
		questions:    opts.Questions,
		used:         make(map[string]bool),
		rng:          rng,
		narrator:     narrator,
	}
}

// EnterMeeting moves PREP -> OPENING_PITCH and starts the pitch clock.
func (s *Session) EnterMeeting() error {
	if err := s.requirePhase(PhasePrep); err != nil {
		return err
	}
	s.Phase = PhaseOpeningPitch
	s.TimerRemaining = s.opts.PitchSeconds
	s.Draft = ""
	return nil
}

// UpdateDraft stores the player's in-progress text for auto-submit on
// expiry.
func (s *Session) UpdateDraft(text string) {
	s.Draft = text
}

// SubmitPitch scores the opening pitch and moves to INTERROGATION. A pitch
// under the minimum length is rejected in place: no phase change, clock
// keeps running.
func (s *Session) SubmitPitch(text string) error {
	if err := s.requirePhase(PhaseOpeningPitch); err != nil {
		return err
	}
	if len(strings.TrimSpace(text)) < minPitchLen {
		return fmt.Errorf("%w: need at least %d characters", ErrPitchTooBrief, minPitchLen)
	}
	s.acceptPitch(text)
	return nil
}

func (s *Session) acceptPitch(text string) {
	s.PitchText = text
	s.PitchScore = ScorePitch(text)
	s.Phase = PhaseInterrogation
	s.Draft = ""
	s.partnerIdx = 0
	s.nextQuestion()
}

// SubmitResponse scores an answer to the current question and advances the
// interrogation. Too-short answers are rejected in place, same as pitches.
func (s *Session) SubmitResponse(text string) error {
	if err := s.requirePhase(PhaseInterrogation); err != nil {
		return err
	}
	if s.Current == nil {
		return fmt.Errorf("%w: no question pending", ErrWrongPhase)
	}
	if len(strings.TrimSpace(text)) < minResponseLen {
		return fmt.Errorf("%w: need at least %d characters", ErrResponseTooBrief, minResponseLen)
	}
	s.acceptResponse(text)
	return nil
}

func (s *Session) acceptResponse(text string) {
	q := *s.Current
	partner := s.partnerByID(q.PartnerID)
	delta, reaction, followUp := scoreResponse(q, partner, text)

	s.Satisfaction[partner.ID] = clamp(s.Satisfaction[partner.ID]+delta, 0, 100)
	s.History = append(s.History, Exchange{
		PartnerID: partner.ID,
		Question:  q,
		Response:  text,
		Delta:     delta,
		Reaction:  reaction,
		Feedback:  reactionFeedback[reaction],
		FollowUp:  followUp,
	})
	s.QuestionsAsked++
	s.Draft = ""

	if s.QuestionsAsked >= s.MaxQuestions {
		s.beginDeliberation()
		return
	}

	// A weak answer has even odds of keeping the same partner on you with
	// a follow-up instead of passing the floor.
	if followUp != "" && s.rng.Next() < followUpChance {
		fq := q
		s.Current = &fq
		s.followUpText = followUp
		s.TimerRemaining = s.opts.ResponseSeconds
		return
	}

	s.partnerIdx = (s.partnerIdx + 1) % len(s.Partners)
	s.nextQuestion()
}

// SkipQuestion passes on the current question. It costs satisfaction with
// the asking partner and still consumes one of the question slots.
func (s *Session) SkipQuestion() error {
	if err := s.requirePhase(PhaseInterrogation); err != nil {
		return err
	}
	if s.Current == nil {
		return fmt.Errorf("%w: no question pending", ErrWrongPhase)
	}
	q := *s.Current
	s.Satisfaction[q.PartnerID] = clamp(s.Satisfaction[q.PartnerID]+skipPenalty, 0, 100)
	s.History = append(s.History, Exchange{
		PartnerID: q.PartnerID,
		Question:  q,
		Skipped:   true,
		Delta:     skipPenalty,
		Reaction:  ReactionDismissive,
		Feedback:  reactionFeedback[ReactionDismissive],
	})
	s.QuestionsAsked++
	s.Draft = ""

	if s.QuestionsAsked >= s.MaxQuestions {
		s.beginDeliberation()
		return nil
	}
	s.partnerIdx = (s.partnerIdx + 1) % len(s.Partners)
	s.nextQuestion()
	return nil
}

// nextQuestion picks the current partner's next question, sized to how
// satisfied they are: content partners lob easy ones, hostile partners go
// hard. Falls through the roster if the current partner's bank is exhausted;
// if nobody has questions left the meeting moves to deliberation early.
func (s *Session) nextQuestion() {
	s.followUpText = ""
	for tried := 0; tried < len(s.Partners); tried++ {
		idx := (s.partnerIdx + tried) % len(s.Partners)
		partner := s.Partners[idx]
		q := s.pickFor(partner)
		if q == nil {
			continue
		}
		s.partnerIdx = idx
		s.used[q.ID] = true
		s.Current = q
		s.TimerRemaining = s.opts.ResponseSeconds
		return
	}
	s.Current = nil
	s.beginDeliberation()
}

func (s *Session) pickFor(partner Partner) *Question {
	sat := s.Satisfaction[partner.ID]
	var want Difficulty
	switch {
	case sat > 70:
		want = DifficultyEasy
	case sat >= 40:
		want = DifficultyMedium
	default:
		want = DifficultyHard
	}

	var preferred, any []Question
	for _, q := range s.questions {
		if q.PartnerID != partner.ID || s.used[q.ID] {
			continue
		}
		any = append(any, q)
		if q.Difficulty == want {
			preferred = append(preferred, q)
		}
	}
	pool := preferred
	if len(pool) == 0 {
		pool = any
	}
	if len(pool) == 0 {
		return nil
	}
	q := pool[sim.PickIndex(s.rng, len(pool))]
	return &q
}

func (s *Session) beginDeliberation() {
	s.Current = nil
	s.Phase = PhaseDeliberation
	s.TimerRemaining = s.opts.DeliberationSeconds
}

// Finalize runs the evaluation and moves DELIBERATION -> VERDICT. The
// verdict is computed exactly once; calling Finalize again returns the same
// one.
func (s *Session) Finalize() (*Verdict, error) {
	if s.Cancelled {
		return nil, ErrSessionClosed
	}
	if s.Phase == PhaseVerdict {
		return s.Verdict, nil
	}
	if s.Phase != PhaseDeliberation {
		return nil, fmt.Errorf("%w: finalize requires %s, session is in %s", ErrWrongPhase, PhaseDeliberation, s.Phase)
	}
	v := Evaluate(s.PitchScore, s.Partners, s.Satisfaction, s.History, s.opts.Weights, s.opts.Thresholds)
	v.Summary = s.narrateSummary(v)
	s.Verdict = &v
	s.Phase = PhaseVerdict
	s.TimerRemaining = 0
	return s.Verdict, nil
}

// Cancel abandons the meeting with an explicit CANCELLED outcome. No verdict
// is computed and nothing is persisted by the engine.
func (s *Session) Cancel() error {
	if s.Cancelled {
		return ErrSessionClosed
	}
	if s.Phase == PhaseVerdict {
		return fmt.Errorf("%w: verdict already delivered", ErrWrongPhase)
	}
	s.Cancelled = true
	s.Current = nil
	s.TimerRemaining = 0
	return nil
}

// Outcome reports the terminal result: the verdict outcome, CANCELLED, or
// "" while the meeting is still live.
func (s *Session) Outcome() Outcome {
	if s.Cancelled {
		return OutcomeCancelled
	}
	if s.Verdict != nil {
		return s.Verdict.Outcome
	}
	return ""
}

// Done reports whether the session has reached a terminal state.
func (s *Session) Done() bool {
	return s.Cancelled || s.Phase == PhaseVerdict
}

// PauseTimer stops the countdown, typically while a narrator call is in
// flight so the player isn't charged for network latency.
func (s *Session) PauseTimer()  { s.TimerPaused = true }
func (s *Session) ResumeTimer() { s.TimerPaused = false }

// TickTimer advances the cooperative 1 Hz countdown by one second. The host
// drives it; there is no background goroutine. On expiry the pending input
// is auto-submitted as-is, bypassing minimum lengths, and in DELIBERATION
// expiry triggers the verdict. Returns true when this tick fired an expiry.
func (s *Session) TickTimer() bool {
	if s.Cancelled || s.TimerPaused || s.Phase == PhasePrep || s.Phase == PhaseVerdict {
		return false
	}
	if s.TimerRemaining > 0 {
		s.TimerRemaining--
	}
	if s.TimerRemaining > 0 {
		return false
	}
	switch s.Phase {
	case PhaseOpeningPitch:
		s.acceptPitch(s.Draft)
	case PhaseInterrogation:
		if s.Current != nil {
			s.acceptResponse(s.Draft)
		}
	case PhaseDeliberation:
		s.Finalize()
	}
	return true
}

// CurrentQuestionText is what the asking partner actually says: the bank
// text, or the follow-up phrasing when one is pending.
func (s *Session) CurrentQuestionText() string {
	if s.Current == nil {
		return ""
	}
	if s.followUpText != "" {
		return s.followUpText
	}
	return s.Current.Text
}

// CurrentPartner returns the partner holding the floor.
func (s *Session) CurrentPartner() *Partner {
	if s.Current == nil {
		return nil
	}
	p := s.partnerByID(s.Current.PartnerID)
	return &p
}

func (s *Session) partnerByID(id string) Partner {
	for _, p := range s.Partners {
		if p.ID == id {
			return p
		}
	}
	return Partner{ID: id, Name: id}
}

func (s *Session) requirePhase(want Phase) error {
	if s.Cancelled {
		return ErrSessionClosed
	}
	if s.Phase != want {
		return fmt.Errorf("%w: need %s, session is in %s", ErrWrongPhase, want, s.Phase)
	}
	return nil
}
