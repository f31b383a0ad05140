package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/sqlite"
	"log/slog"
)

// GameRepository stores games in SQLite. It implements [interrogation.Repository].
type GameRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewGameRepository(db *sqlite.Database, logger *slog.Logger) *GameRepository {
	return &GameRepository{
		db:     db,
		logger: logger.With("source", "GameRepository"),
	}
}

type gameRow struct {
	ID           string         `db:"id"`
	Scenario     string         `db:"scenario"`
	LiarNotified bool           `db:"liar_notified"`
	Accused      sql.NullString `db:"accused"`
	Solved       sql.NullBool   `db:"solved"`
	Summary      sql.NullString `db:"summary"`
}

type sessionRow struct {
	SuspectID  string `db:"suspect_id"`
	AlibiGiven bool   `db:"alibi_given"`
}

type messageRow struct {
	SuspectID string `db:"suspect_id"`
	models.Message
}

type disclosedRow struct {
	SuspectID string `db:"suspect_id"`
	Index     int    `db:"observation_index"`
}

// Create inserts a new game together with any progress it already has.
func (r *GameRepository) Create(ctx context.Context, state interrogation.State) error {
	scenario, err := json.Marshal(state.Scenario)
	if err != nil {
		return errors.Wrap(err, "marshal scenario")
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		stmt := `INSERT INTO games (id, scenario, liar_notified) VALUES (?, ?, ?)`
		if _, err = tx.ExecContext(ctx, stmt, state.ID, string(scenario), state.LiarNotified); err != nil {
			return errors.Wrap(err, "insert game", slog.String("game_id", state.ID))
		}
		for id, session := range state.Sessions {
			exchange := interrogation.Exchange{
				SuspectID: id,
				Messages:  session.History,
				Disclosed: session.DisclosedIndices(),
			}
			if err = insertExchange(ctx, tx, state.ID, exchange, session.AlibiGiven); err != nil {
				return errors.Wrap(err, "insert session", slog.String("suspect", id))
			}
		}
		for _, a := range state.Evidence.Alibis {
			if err = insertAlibi(ctx, tx, state.ID, a); err != nil {
				return err
			}
		}
		for _, s := range state.Evidence.Sightings {
			if err = insertSighting(ctx, tx, state.ID, s); err != nil {
				return err
			}
		}
		if state.Outcome != nil {
			return updateOutcome(ctx, tx, state.ID, *state.Outcome)
		}
		return nil
	})
}

// Get loads a game. It returns an error wrapping [interrogation.ErrGameNotFound] if there is no game with id.
func (r *GameRepository) Get(ctx context.Context, id string) (interrogation.State, error) {
	var (
		game       gameRow
		sessions   []sessionRow
		messages   []messageRow
		disclosed  []disclosedRow
		alibis     []models.AlibiClaim
		sightings  []models.SightingClaim
		err        error
		readOnlyDB = r.db.ReadOnly
	)

	stmt := `SELECT id, scenario, liar_notified, accused, solved, summary FROM games WHERE id = ?`
	if err = readOnlyDB.GetContext(ctx, &game, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interrogation.State{}, errors.Wrap(interrogation.ErrGameNotFound, "read game",
				slog.String("game_id", id))
		}
		return interrogation.State{}, errors.Wrap(err, "read game", slog.String("game_id", id))
	}

	state := interrogation.State{
		ID:           game.ID,
		Sessions:     make(map[string]*interrogation.SuspectSession),
		LiarNotified: game.LiarNotified,
	}
	if err = json.Unmarshal([]byte(game.Scenario), &state.Scenario); err != nil {
		return interrogation.State{}, errors.Wrap(err, "unmarshal scenario", slog.String("game_id", id))
	}

	stmt = `SELECT suspect_id, alibi_given FROM suspect_sessions WHERE game_id = ?`
	if err = readOnlyDB.SelectContext(ctx, &sessions, stmt, id); err != nil {
		return interrogation.State{}, errors.Wrap(err, "select sessions")
	}
	for _, s := range sessions {
		state.Sessions[s.SuspectID] = &interrogation.SuspectSession{
			SuspectID:  s.SuspectID,
			Disclosed:  make(map[int]bool),
			AlibiGiven: s.AlibiGiven,
		}
	}

	stmt = `SELECT suspect_id, role, content FROM messages WHERE game_id = ? ORDER BY id`
	if err = readOnlyDB.SelectContext(ctx, &messages, stmt, id); err != nil {
		return interrogation.State{}, errors.Wrap(err, "select messages")
	}
	for _, m := range messages {
		if s, ok := state.Sessions[m.SuspectID]; ok {
			s.History = append(s.History, m.Message)
		}
	}

	stmt = `SELECT suspect_id, observation_index FROM disclosed_observations WHERE game_id = ?`
	if err = readOnlyDB.SelectContext(ctx, &disclosed, stmt, id); err != nil {
		return interrogation.State{}, errors.Wrap(err, "select disclosed observations")
	}
	for _, d := range disclosed {
		if s, ok := state.Sessions[d.SuspectID]; ok {
			s.Disclosed[d.Index] = true
		}
	}

	stmt = `SELECT person, room FROM alibi_claims WHERE game_id = ? ORDER BY person`
	if err = readOnlyDB.SelectContext(ctx, &alibis, stmt, id); err != nil {
		return interrogation.State{}, errors.Wrap(err, "select alibi claims")
	}
	stmt = `SELECT observer, observed_person, room FROM sighting_claims WHERE game_id = ? ORDER BY id`
	if err = readOnlyDB.SelectContext(ctx, &sightings, stmt, id); err != nil {
		return interrogation.State{}, errors.Wrap(err, "select sighting claims")
	}
	state.Evidence.Alibis = alibis
	state.Evidence.Sightings = sightings

	if game.Accused.Valid {
		state.Outcome = &interrogation.Outcome{
			Accused: game.Accused.String,
			Culprit: state.Scenario.Culprit,
			Solved:  game.Solved.Bool,
			Summary: game.Summary.String,
		}
	}
	return state, nil
}

// RecordExchange saves one answered question atomically.
func (r *GameRepository) RecordExchange(ctx context.Context, gameID string, exchange interrogation.Exchange) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertExchange(ctx, tx, gameID, exchange, exchange.Alibi != nil); err != nil {
			return err
		}
		if exchange.Alibi != nil {
			if err := insertAlibi(ctx, tx, gameID, *exchange.Alibi); err != nil {
				return err
			}
		}
		for _, s := range exchange.Sightings {
			if err := insertSighting(ctx, tx, gameID, s); err != nil {
				return err
			}
		}
		if exchange.LiarNotified {
			stmt := `UPDATE games SET liar_notified = 1 WHERE id = ?`
			if _, err := tx.ExecContext(ctx, stmt, gameID); err != nil {
				return errors.Wrap(err, "update liar notified")
			}
		}
		return nil
	})
}

// EndGame saves the accusation.
func (r *GameRepository) EndGame(ctx context.Context, gameID string, outcome interrogation.Outcome) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		return updateOutcome(ctx, tx, gameID, outcome)
	})
}

func (r *GameRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rollbackErr))
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// insertExchange upserts the suspect session and appends the exchange's messages and disclosures to it.
func insertExchange(
	ctx context.Context,
	tx *sqlx.Tx,
	gameID string,
	exchange interrogation.Exchange,
	alibiGiven bool,
) error {
	stmt := `INSERT INTO suspect_sessions (game_id, suspect_id, alibi_given)
VALUES (?, ?, ?)
ON CONFLICT (game_id, suspect_id) DO UPDATE SET alibi_given = alibi_given OR excluded.alibi_given`
	if _, err := tx.ExecContext(ctx, stmt, gameID, exchange.SuspectID, alibiGiven); err != nil {
		return errors.Wrap(err, "upsert suspect session", slog.String("suspect", exchange.SuspectID))
	}
	stmt = `INSERT INTO messages (game_id, suspect_id, role, content) VALUES (?, ?, ?, ?)`
	for _, m := range exchange.Messages {
		if _, err := tx.ExecContext(ctx, stmt, gameID, exchange.SuspectID, m.Role, m.Content); err != nil {
			return errors.Wrap(err, "insert message")
		}
	}
	stmt = `INSERT OR IGNORE INTO disclosed_observations (game_id, suspect_id, observation_index) VALUES (?, ?, ?)`
	for _, i := range exchange.Disclosed {
		if _, err := tx.ExecContext(ctx, stmt, gameID, exchange.SuspectID, i); err != nil {
			return errors.Wrap(err, "insert disclosed observation", slog.Int("index", i))
		}
	}
	return nil
}

func insertAlibi(ctx context.Context, tx *sqlx.Tx, gameID string, alibi models.AlibiClaim) error {
	stmt := `INSERT INTO alibi_claims (game_id, person, room) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, stmt, gameID, alibi.Person, alibi.Room); err != nil {
		return errors.Wrap(err, "insert alibi claim", slog.String("person", alibi.Person))
	}
	return nil
}

func insertSighting(ctx context.Context, tx *sqlx.Tx, gameID string, sighting models.SightingClaim) error {
	stmt := `INSERT OR IGNORE INTO sighting_claims (game_id, observer, observed_person, room) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, stmt, gameID, sighting.Observer, sighting.ObservedPerson, sighting.Room); err != nil {
		return errors.Wrap(err, "insert sighting claim", slog.String("observer", sighting.Observer))
	}
	return nil
}

func updateOutcome(ctx context.Context, tx *sqlx.Tx, gameID string, outcome interrogation.Outcome) error {
	stmt := `UPDATE games SET accused = ?, solved = ?, summary = ? WHERE id = ? AND accused IS NULL`
	result, err := tx.ExecContext(ctx, stmt, outcome.Accused, outcome.Solved, outcome.Summary, gameID)
	if err != nil {
		return errors.Wrap(err, "update outcome")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected != 1 {
		return errors.Wrap(interrogation.ErrGameEnded, "update outcome", slog.String("game_id", gameID))
	}
	return nil
}
