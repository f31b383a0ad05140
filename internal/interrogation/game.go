package interrogation

import (
	"context"
	"github.com/myrjola/whodunit/internal/consistency"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/evidence"
	"github.com/myrjola/whodunit/internal/extract"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"slices"
	"sync"
)

var (
	ErrUnknownSuspect = errors.NewSentinel("unknown suspect")
	ErrGameEnded      = errors.NewSentinel("game has ended")
)

// Reply is what the player learns from one question.
type Reply struct {
	Answer string `json:"answer"`
	// Alibi is set on the exchange where the suspect first gives their alibi.
	Alibi           *models.Alibi        `json:"alibi"`
	NewObservations []models.Observation `json:"newObservations"`
	// MiscCommentary is the answer when it disclosed nothing new.
	MiscCommentary string `json:"miscCommentary,omitempty"`
	LiarDetected   bool   `json:"liarDetected"`
	// Notify is true only on the exchange that first caught somebody in a lie.
	Notify bool `json:"notify"`
}

// Outcome is the result of the player's accusation.
type Outcome struct {
	Accused string `json:"accused"`
	Culprit string `json:"culprit"`
	Solved  bool   `json:"solved"`
	Summary string `json:"summary,omitempty"`
}

// Exchange is everything one answered question adds to a game. It is handed to the Recorder before it is applied in
// memory so that a failed save leaves the game untouched.
type Exchange struct {
	SuspectID string
	// Messages appended to the suspect's history, including the persona prompt on the first question.
	Messages     []models.Message
	Alibi        *models.AlibiClaim
	Sightings    []models.SightingClaim
	Disclosed    []int
	LiarNotified bool
}

// Recorder persists game progress.
type Recorder interface {
	RecordExchange(ctx context.Context, gameID string, exchange Exchange) error
	EndGame(ctx context.Context, gameID string, outcome Outcome) error
}

type nopRecorder struct{}

func (nopRecorder) RecordExchange(context.Context, string, Exchange) error { return nil }
func (nopRecorder) EndGame(context.Context, string, Outcome) error         { return nil }

// Deps are the collaborators shared by all games.
type Deps struct {
	Dialogue  Dialogue
	Extractor *extract.Extractor
	// Recorder is optional. Games are kept in memory only without it.
	Recorder Recorder
	Logger   *slog.Logger
}

// State is the serialisable form of a GameSession.
type State struct {
	ID           string
	Scenario     *models.Scenario
	Sessions     map[string]*SuspectSession
	Evidence     evidence.Snapshot
	LiarNotified bool
	Outcome      *Outcome
}

// GameSession is one game: a scenario, the conversations with its suspects, and the detective's evidence.
//
// Questions to the same suspect are serialised. Questions to different suspects may run in parallel; their results
// are committed one at a time in the order the answers arrive.
type GameSession struct {
	id        string
	scenario  *models.Scenario
	dialogue  Dialogue
	extractor *extract.Extractor
	recorder  Recorder
	logger    *slog.Logger

	// suspectLocks has one entry per suspect and is never modified after construction.
	suspectLocks map[string]*sync.Mutex

	// mu guards the fields below and orders commits.
	mu       sync.Mutex
	sessions map[string]*SuspectSession
	evidence *evidence.Store
	notifier *consistency.Notifier
	// notes are the detective's own cross-check entries: a suspect giving an alibi is noted as seen there by
	// themselves.
	notes   []models.SightingClaim
	outcome *Outcome
}

// NewGameSession starts a fresh game for the scenario.
func NewGameSession(id string, sc *models.Scenario, deps Deps) *GameSession {
	g := newGameSession(id, sc, deps)
	g.evidence = evidence.NewStore()
	g.notifier = consistency.NewNotifier(false)
	return g
}

// RestoreGameSession resumes a saved game.
func RestoreGameSession(state State, deps Deps) (*GameSession, error) {
	if err := state.Scenario.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate restored scenario", slog.String("game_id", state.ID))
	}
	g := newGameSession(state.ID, state.Scenario, deps)
	store, err := evidence.NewFromSnapshot(state.Evidence)
	if err != nil {
		return nil, errors.Wrap(err, "restore evidence", slog.String("game_id", state.ID))
	}
	g.evidence = store
	g.notifier = consistency.NewNotifier(state.LiarNotified)
	for id, s := range state.Sessions {
		if _, ok := state.Scenario.Suspect(id); !ok {
			return nil, errors.Wrap(ErrUnknownSuspect, "restore session", slog.String("suspect", id))
		}
		g.sessions[id] = s.clone()
	}
	for _, a := range state.Evidence.Alibis {
		g.notes = append(g.notes, selfSighting(a))
	}
	g.outcome = state.Outcome
	return g, nil
}

func newGameSession(id string, sc *models.Scenario, deps Deps) *GameSession {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	g := &GameSession{
		id:           id,
		scenario:     sc,
		dialogue:     deps.Dialogue,
		extractor:    deps.Extractor,
		recorder:     recorder,
		logger:       deps.Logger.With("source", "GameSession"),
		suspectLocks: make(map[string]*sync.Mutex, len(sc.Suspects)),
		sessions:     make(map[string]*SuspectSession),
	}
	for id := range sc.Suspects {
		g.suspectLocks[id] = &sync.Mutex{}
	}
	return g
}

func (g *GameSession) ID() string {
	return g.id
}

func (g *GameSession) Scenario() *models.Scenario {
	return g.scenario
}

// Ask puts a question to a suspect and records whatever the answer discloses.
//
// Errors from the dialogue service are wrapped in ErrDialogueUnavailable. On any error the game is left exactly as it
// was so that the player can retry.
func (g *GameSession) Ask(ctx context.Context, suspectID, question string) (Reply, error) {
	gt, ok := g.scenario.Suspect(suspectID)
	if !ok {
		return Reply{}, errors.Wrap(ErrUnknownSuspect, "ask", slog.String("suspect", suspectID))
	}
	ctx = logging.WithAttrs(ctx, slog.String("game_id", g.id), slog.String("suspect", suspectID))

	lock := g.suspectLocks[suspectID]
	lock.Lock()
	defer lock.Unlock()

	g.mu.Lock()
	if g.outcome != nil {
		g.mu.Unlock()
		return Reply{}, errors.Wrap(ErrGameEnded, "ask")
	}
	session, met := g.sessions[suspectID]
	if met {
		session = session.clone()
	} else {
		session = newSuspectSession(suspectID)
	}
	g.mu.Unlock()

	var added []models.Message
	if !met {
		added = append(added, models.Message{Role: models.RoleSystem, Content: personaPrompt(g.scenario, gt)})
	}
	added = append(added, models.Message{Role: models.RoleUser, Content: question})

	history := append(slices.Clone(session.History), added...)
	answer, err := g.dialogue.Respond(ctx, history)
	if err != nil {
		return Reply{}, errors.Join(ErrDialogueUnavailable, errors.Wrap(err, "respond"))
	}
	added = append(added, models.Message{Role: models.RoleAssistant, Content: answer})

	candidates, err := g.candidates(ctx, gt, answer)
	if err != nil {
		return Reply{}, err
	}
	alibiMatched, matched := g.match(ctx, gt, candidates)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outcome != nil {
		return Reply{}, errors.Wrap(ErrGameEnded, "commit answer")
	}

	exchange := Exchange{SuspectID: suspectID, Messages: added}
	reply := Reply{Answer: answer}
	var facts []models.DisclosedFact
	if alibiMatched && !session.AlibiGiven {
		claim := models.AlibiClaim{Person: suspectID, Room: gt.Alibi.Room.ID}
		if recorded, ok := g.evidence.Alibi(suspectID); ok && recorded != claim.Room {
			err = errors.Wrap(evidence.ErrConflictingAlibi, "commit alibi",
				slog.String("recorded_room", recorded), slog.String("room", claim.Room))
			g.logger.LogAttrs(ctx, slog.LevelError, "alibi invariant violated", errors.SlogError(err))
			return Reply{}, err
		}
		exchange.Alibi = &claim
		alibi := gt.Alibi
		reply.Alibi = &alibi
		facts = append(facts, models.DisclosedFact{Kind: models.FactKindAlibi, Alibi: &claim})
	}
	for _, i := range matched {
		if session.Disclosed[i] {
			continue
		}
		o := gt.Observations[i]
		claim := models.SightingClaim{Observer: suspectID, ObservedPerson: o.Person, Room: o.Room.ID}
		exchange.Disclosed = append(exchange.Disclosed, i)
		exchange.Sightings = append(exchange.Sightings, claim)
		reply.NewObservations = append(reply.NewObservations, o)
		facts = append(facts, models.DisclosedFact{Kind: models.FactKindSighting, Sighting: &claim})
	}

	reply.LiarDetected = consistency.Evaluate(g.evidence.Snapshot().With(facts...))
	exchange.LiarNotified = reply.LiarDetected && !g.notifier.Notified()

	if err = g.recorder.RecordExchange(ctx, g.id, exchange); err != nil {
		return Reply{}, errors.Wrap(err, "record exchange")
	}

	g.apply(ctx, session, exchange)
	g.sessions[suspectID] = session
	reply.Notify = g.notifier.Observe(reply.LiarDetected)

	if reply.Alibi == nil && len(reply.NewObservations) == 0 {
		reply.MiscCommentary = answer
	}
	if reply.Notify {
		g.logger.LogAttrs(ctx, slog.LevelInfo, "suspect caught in a lie",
			slog.Any("liars", consistency.Liars(g.evidence.Snapshot())))
	}
	return reply, nil
}

// apply commits an exchange to memory. The caller holds g.mu and has checked the alibi invariant.
func (g *GameSession) apply(ctx context.Context, session *SuspectSession, exchange Exchange) {
	session.History = append(session.History, exchange.Messages...)
	if exchange.Alibi != nil {
		if err := g.evidence.RecordAlibi(exchange.Alibi.Person, exchange.Alibi.Room); err != nil {
			g.logger.LogAttrs(ctx, slog.LevelError, "alibi invariant violated", errors.SlogError(err))
		}
		session.AlibiGiven = true
		g.notes = append(g.notes, selfSighting(*exchange.Alibi))
	}
	for i, sighting := range exchange.Sightings {
		session.Disclosed[exchange.Disclosed[i]] = true
		g.evidence.RecordSighting(sighting.Observer, sighting.ObservedPerson, sighting.Room)
	}
}

func selfSighting(a models.AlibiClaim) models.SightingClaim {
	return models.SightingClaim{Observer: a.Person, ObservedPerson: a.Person, Room: a.Room}
}
