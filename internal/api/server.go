package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"dealflow/internal/config"
	"dealflow/internal/ic"
	"dealflow/internal/notify"
	"dealflow/internal/recorder"
	"dealflow/internal/sim"
	"dealflow/internal/store"
)

type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	store    *store.Store
	rec      recorder.Recorder
	notifier notify.Notifier
	icOpts   ic.Options
	sessions *sessionRegistry
	mux      *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, st *store.Store, rec recorder.Recorder, notifier notify.Notifier, icOpts ic.Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = recorder.NoopRecorder{}
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		store:    st,
		rec:      rec,
		notifier: notifier,
		icOpts:   icOpts,
		sessions: newSessionRegistry(),
	}
	s.mux = chi.NewRouter()
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// RunTimers drives the meeting countdowns. Run it in its own goroutine for
// the life of the process.
func (s *Server) RunTimers(ctx context.Context) {
	s.sessions.runTimers(ctx, s.onTimerExpiry)
}

// onTimerExpiry persists whatever a timer expiry produced. The interesting
// case is deliberation running out, which auto-finalizes the verdict.
func (s *Server) onTimerExpiry(e *sessionEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Phase == ic.PhaseVerdict && e.sess.Verdict != nil {
		s.persistVerdict(context.Background(), e)
	}
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleCreateGame)
		r.Get("/games/{id}", s.handleGetGame)
		r.Post("/games/{id}/advance", s.handleAdvance)
		r.Get("/games/{id}/warnings", s.handleWarnings)
		r.Get("/games/{id}/history", s.handleHistory)
		r.Post("/games/{id}/ic", s.handleStartMeeting)

		r.Get("/ic/{sid}", s.handleMeetingState)
		r.Post("/ic/{sid}/enter", s.handleMeetingEnter)
		r.Post("/ic/{sid}/pitch", s.handleMeetingPitch)
		r.Post("/ic/{sid}/response", s.handleMeetingResponse)
		r.Post("/ic/{sid}/draft", s.handleMeetingDraft)
		r.Post("/ic/{sid}/skip", s.handleMeetingSkip)
		r.Post("/ic/{sid}/finalize", s.handleMeetingFinalize)
		r.Delete("/ic/{sid}", s.handleMeetingCancel)
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seed       *int64 `json:"seed"`
		Volatility string `json:"volatility"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	seed := time.Now().UnixNano()
	if in.Seed != nil {
		seed = *in.Seed
	}
	volatility := sim.MarketVolatility(s.cfg.StartVolatility)
	if in.Volatility != "" {
		v, err := parseVolatility(in.Volatility)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		volatility = v
	}

	game, err := s.store.CreateGame(r.Context(), seed, volatility, s.cfg.SeedPipeline)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameView(game))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.store.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(game))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	result, state, err := s.store.AdvanceWeek(r.Context(), gameID, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.rec.RecordTick(&recorder.TickSnapshot{
		GameID:        gameID,
		Week:          result.Week,
		QuarterClosed: result.QuarterClosed,
		Volatility:    state.Volatility,
		Cash:          state.Player.Cash,
		Reputation:    state.Player.Reputation,
		Stress:        state.Player.Stress,
		PortfolioSize: len(state.Player.Portfolio),
		EventCount:    len(result.NewEvents),
		WarningCount:  len(result.Warnings),
	}); err != nil {
		s.log.Warn("record tick failed", "err", err)
	}

	if result.MarketEvent != nil {
		msg := fmt.Sprintf("Week %d: %s. Market regime is now %s.", result.Week, result.MarketEvent.Title, result.MarketEvent.NewVolatility)
		_ = s.notifier.Notify(msg)
	}
	for _, warn := range result.Warnings {
		if warn.Level == sim.LevelCritical {
			_ = s.notifier.Notify(fmt.Sprintf("Week %d critical: %s", result.Week, warn.Message))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"game": map[string]any{
			"week":       state.Week,
			"volatility": state.Volatility,
			"cash":       state.Player.Cash,
		},
	})
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	game, err := s.store.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	warnings := sim.GenerateWarnings(game.State.Player, game.State.Week)
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.store.ListTickHistory(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticks": records})
}

func (s *Server) handleStartMeeting(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	var in struct {
		CompanyID string `json:"company_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := s.store.GetGame(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var company *sim.PortfolioCompany
	for i := range game.State.Player.Portfolio {
		if game.State.Player.Portfolio[i].ID == in.CompanyID {
			company = &game.State.Player.Portfolio[i]
			break
		}
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "company not found in portfolio")
		return
	}

	sess := ic.NewSession(gameID, *company, s.icOpts, sim.NewTimeSeeded())
	s.sessions.add(&sessionEntry{sess: sess, gameID: gameID, companyID: company.ID})
	s.log.Info("meeting opened", "session_id", sess.ID, "game_id", gameID, "company", company.Name)
	writeJSON(w, http.StatusCreated, sessionView(sess))
}

func (s *Server) handleMeetingState(w http.ResponseWriter, r *http.Request) {
	e, ok := s.sessions.get(chi.URLParam(r, "sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	writeJSON(w, http.StatusOK, sessionView(e.sess))
}

func (s *Server) handleMeetingEnter(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(e *sessionEntry) error {
		return e.sess.EnterMeeting()
	})
}

func (s *Server) handleMeetingPitch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withSession(w, r, func(e *sessionEntry) error {
		return e.sess.SubmitPitch(in.Text)
	})
}

func (s *Server) handleMeetingResponse(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withSession(w, r, func(e *sessionEntry) error {
		return e.sess.SubmitResponse(in.Text)
	})
}

func (s *Server) handleMeetingDraft(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withSession(w, r, func(e *sessionEntry) error {
		e.sess.UpdateDraft(in.Text)
		return nil
	})
}

func (s *Server) handleMeetingSkip(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(e *sessionEntry) error {
		return e.sess.SkipQuestion()
	})
}

func (s *Server) handleMeetingFinalize(w http.ResponseWriter, r *http.Request) {
	e, ok := s.sessions.get(chi.URLParam(r, "sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.sess.Finalize(); err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistVerdict(r.Context(), e)
	writeJSON(w, http.StatusOK, sessionView(e.sess))
}

func (s *Server) handleMeetingCancel(w http.ResponseWriter, r *http.Request) {
	e, ok := s.sessions.get(chi.URLParam(r, "sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	err := e.sess.Cancel()
	e.mu.Unlock()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.sessions.remove(chi.URLParam(r, "sid"))
	writeJSON(w, http.StatusOK, map[string]any{"outcome": ic.OutcomeCancelled})
}

// persistVerdict writes a finalized verdict to the store and recorder and,
// on approval, moves the company forward in the funnel. Caller holds the
// entry lock.
func (s *Server) persistVerdict(ctx context.Context, e *sessionEntry) {
	v := e.sess.Verdict
	if v == nil {
		return
	}
	if err := s.store.SaveVerdict(ctx, e.gameID, e.sess.ID, e.companyID, *v); err != nil {
		s.log.Error("save verdict failed", "session_id", e.sess.ID, "err", err)
	}
	if err := s.rec.RecordVerdict(&recorder.VerdictRecord{
		GameID:    e.gameID,
		SessionID: e.sess.ID,
		CompanyID: e.companyID,
		Company:   e.sess.Company.Name,
		Outcome:   v.Outcome,
		Overall:   v.Overall,
	}); err != nil {
		s.log.Warn("record verdict failed", "err", err)
	}
	_ = s.notifier.Notify(fmt.Sprintf("IC verdict on %s: %s (%.0f/100)", e.sess.Company.Name, v.Outcome, v.Overall))

	if v.Outcome == ic.OutcomeApproved || v.Outcome == ic.OutcomeConditional {
		s.advanceApprovedDeal(ctx, e.gameID, e.companyID)
	}
}

// advanceApprovedDeal moves an approved target from sourcing into a live
// bid. Already-closed deals are left alone.
func (s *Server) advanceApprovedDeal(ctx context.Context, gameID, companyID string) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		s.log.Error("load game for deal advance failed", "game_id", gameID, "err", err)
		return
	}
	for i := range game.State.Player.Portfolio {
		c := &game.State.Player.Portfolio[i]
		if c.ID != companyID {
			continue
		}
		if c.DealPhase != sim.PhasePipeline && c.DealPhase != sim.PhaseAnalyzed {
			return
		}
		if err := sim.AdvancePhase(c, sim.PhaseBidding); err != nil {
			s.log.Warn("deal advance rejected", "company", c.Name, "err", err)
			return
		}
		if err := s.store.SaveGameState(ctx, gameID, game.State); err != nil {
			s.log.Error("save game after deal advance failed", "game_id", gameID, "err", err)
		}
		return
	}
}

func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*sessionEntry) error) {
	e, ok := s.sessions.get(chi.URLParam(r, "sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(e.sess))
}

func gameView(g store.Game) map[string]any {
	return map[string]any{
		"id":         g.ID,
		"week":       g.State.Week,
		"volatility": g.State.Volatility,
		"player":     g.State.Player,
		"rivals":     g.State.Rivals,
		"npcs":       g.State.NPCs,
		"created_at": g.CreatedAt,
		"updated_at": g.UpdatedAt,
	}
}

func sessionView(sess *ic.Session) map[string]any {
	view := map[string]any{
		"id":              sess.ID,
		"game_id":         sess.GameID,
		"company":         sess.Company.Name,
		"phase":           sess.Phase,
		"outcome":         sess.Outcome(),
		"satisfaction":    sess.Satisfaction,
		"pitch_score":     sess.PitchScore,
		"questions_asked": sess.QuestionsAsked,
		"max_questions":   sess.MaxQuestions,
		"timer_remaining": sess.TimerRemaining,
		"history":         sess.History,
	}
	if p := sess.CurrentPartner(); p != nil {
		view["current_partner"] = map[string]any{
			"id":    p.ID,
			"name":  p.Name,
			"title": p.Title,
		}
		view["current_question"] = sess.CurrentQuestionText()
	}
	if sess.Verdict != nil {
		view["verdict"] = sess.Verdict
	}
	return view
}

func parseVolatility(v string) (sim.MarketVolatility, error) {
	switch sim.MarketVolatility(strings.ToUpper(strings.TrimSpace(v))) {
	case sim.VolatilityNormal:
		return sim.VolatilityNormal, nil
	case sim.VolatilityBullRun:
		return sim.VolatilityBullRun, nil
	case sim.VolatilityCreditCrunch:
		return sim.VolatilityCreditCrunch, nil
	case sim.VolatilityPanic:
		return sim.VolatilityPanic, nil
	default:
		return "", fmt.Errorf("unknown volatility %q", v)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateIdempotency), errors.Is(err, store.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ic.ErrPitchTooBrief), errors.Is(err, ic.ErrResponseTooBrief):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ic.ErrWrongPhase), errors.Is(err, ic.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sim.ErrBadPhaseTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
