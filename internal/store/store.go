package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealflow/internal/ic"
	"dealflow/internal/sim"
)

var (
	ErrGameNotFound         = errors.New("game not found")
	ErrDuplicateIdempotency = errors.New("duplicate request")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

// GameState is the full save-game document, stored as one jsonb column.
// Week and Volatility are duplicated into their own columns for querying.
type GameState struct {
	Player     sim.PlayerState      `json:"player"`
	Rivals     []sim.RivalFund      `json:"rivals"`
	NPCs       []sim.NPC            `json:"npcs"`
	Week       int                  `json:"week"`
	Volatility sim.MarketVolatility `json:"volatility"`
	Seed       int64                `json:"seed"`
}

// Game is one saved playthrough.
type Game struct {
	ID        string
	State     GameState
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

// EnsureSchema creates the pe schema and tables if missing. Idempotent, run
// at startup by both the API and the worker.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS pe`,
		`CREATE TABLE IF NOT EXISTS pe.games (
			id uuid PRIMARY KEY,
			state jsonb NOT NULL,
			week int NOT NULL DEFAULT 1,
			volatility text NOT NULL DEFAULT 'NORMAL',
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS pe.tick_history (
			id bigserial PRIMARY KEY,
			game_id uuid NOT NULL REFERENCES pe.games(id) ON DELETE CASCADE,
			week int NOT NULL,
			result jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (game_id, week)
		)`,
		`CREATE TABLE IF NOT EXISTS pe.ic_verdicts (
			id bigserial PRIMARY KEY,
			game_id uuid NOT NULL REFERENCES pe.games(id) ON DELETE CASCADE,
			session_id uuid NOT NULL UNIQUE,
			company_id text NOT NULL,
			outcome text NOT NULL,
			verdict jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS pe.idempotency_keys (
			game_id uuid NOT NULL,
			key text NOT NULL,
			action text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (game_id, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CreateGame starts a new playthrough with the given seed and the standard
// starting roster.
func (s *Store) CreateGame(ctx context.Context, seed int64, volatility sim.MarketVolatility, seedPipeline bool) (Game, error) {
	state := NewGameState(seed, volatility, seedPipeline)
	game := Game{
		ID:    uuid.NewString(),
		State: state,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return game, err
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO pe.games (id, state, week, volatility)
		VALUES ($1, $2::jsonb, $3, $4)
		RETURNING created_at, updated_at
	`, game.ID, raw, state.Week, string(state.Volatility)).Scan(&game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return game, fmt.Errorf("insert game: %w", err)
	}
	s.log.Info("game created", "game_id", game.ID, "seed", seed, "volatility", volatility)
	return game, nil
}

func (s *Store) GetGame(ctx context.Context, gameID string) (Game, error) {
	var (
		game Game
		raw  []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, state, created_at, updated_at
		FROM pe.games
		WHERE id = $1
	`, gameID).Scan(&game.ID, &raw, &game.CreatedAt, &game.UpdatedAt)
	if err == pgx.ErrNoRows {
		return game, ErrGameNotFound
	}
	if err != nil {
		return game, err
	}
	if err := json.Unmarshal(raw, &game.State); err != nil {
		return game, fmt.Errorf("decode game state: %w", err)
	}
	return game, nil
}

// AdvanceWeek runs one world tick inside a serializable transaction and
// persists the new state plus the tick record. The tick RNG is derived from
// the game seed and the week number, so a replayed transaction after a
// serialization conflict produces the identical tick.
func (s *Store) AdvanceWeek(ctx context.Context, gameID, idemKey string) (sim.WorldTickResult, GameState, error) {
	var (
		out   sim.WorldTickResult
		state GameState
	)

	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return out, state, err
		}
		err = func() error {
			defer tx.Rollback(ctx)

			if err := claimIdempotency(ctx, tx, gameID, idemKey, "advance_week"); err != nil {
				return err
			}

			var raw []byte
			if err := tx.QueryRow(ctx, `
				SELECT state
				FROM pe.games
				WHERE id = $1
				FOR UPDATE
			`, gameID).Scan(&raw); err != nil {
				if err == pgx.ErrNoRows {
					return ErrGameNotFound
				}
				return err
			}
			if err := json.Unmarshal(raw, &state); err != nil {
				return fmt.Errorf("decode game state: %w", err)
			}

			week := state.Week + 1
			rng := sim.NewSeeded(state.Seed + int64(week))
			out = sim.Tick(state.Player, state.Rivals, state.NPCs, week, state.Volatility, rng)

			sim.ApplyTick(&state.Player, out)
			if out.MarketEvent != nil {
				state.Volatility = out.MarketEvent.NewVolatility
			}
			state.Week = week

			next, err := json.Marshal(state)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE pe.games
				SET state = $1::jsonb, week = $2, volatility = $3, updated_at = now()
				WHERE id = $4
			`, next, state.Week, string(state.Volatility), gameID); err != nil {
				return err
			}

			result, err := json.Marshal(out)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO pe.tick_history (game_id, week, result)
				VALUES ($1, $2, $3::jsonb)
			`, gameID, week, result); err != nil {
				return err
			}

			return tx.Commit(ctx)
		}()
		if err == nil {
			return out, state, nil
		}
		if !isSerializationError(err) {
			return out, state, err
		}
		if attempt == maxAttempts-1 {
			return out, state, ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return out, state, err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return out, state, ErrTxConflict
}

// SaveGameState overwrites a game's state document outside the tick path,
// used when committee outcomes or player choices mutate the save.
func (s *Store) SaveGameState(ctx context.Context, gameID string, state GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE pe.games
		SET state = $1::jsonb, week = $2, volatility = $3, updated_at = now()
		WHERE id = $4
	`, raw, state.Week, string(state.Volatility), gameID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// SaveVerdict persists a finalized committee verdict. Cancelled sessions are
// never recorded.
func (s *Store) SaveVerdict(ctx context.Context, gameID, sessionID, companyID string, v ic.Verdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pe.ic_verdicts (game_id, session_id, company_id, outcome, verdict)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (session_id) DO NOTHING
	`, gameID, sessionID, companyID, string(v.Outcome), raw)
	if err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	return nil
}

// TickRecord is one persisted week of history.
type TickRecord struct {
	Week      int
	Result    sim.WorldTickResult
	CreatedAt time.Time
}

func (s *Store) ListTickHistory(ctx context.Context, gameID string, limit int) ([]TickRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT week, result, created_at
		FROM pe.tick_history
		WHERE game_id = $1
		ORDER BY week DESC
		LIMIT $2
	`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickRecord
	for rows.Next() {
		var (
			rec TickRecord
			raw []byte
		)
		if err := rows.Scan(&rec.Week, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Result); err != nil {
			return nil, fmt.Errorf("decode tick record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListGameIDs returns every saved game, newest first. The worker uses it to
// sweep scheduled ticks.
func (s *Store) ListGameIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM pe.games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func claimIdempotency(ctx context.Context, tx pgx.Tx, gameID, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO pe.idempotency_keys (game_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (game_id, key) DO NOTHING
	`, gameID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
