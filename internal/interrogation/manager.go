package interrogation

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/scenario"
	"log/slog"
	"sync"
)

var ErrGameNotFound = errors.NewSentinel("game not found")

// Repository saves and loads games. Get returns an error wrapping ErrGameNotFound for unknown IDs.
type Repository interface {
	Recorder
	Create(ctx context.Context, state State) error
	Get(ctx context.Context, id string) (State, error)
}

// Manager keeps the games in progress, keyed by game ID.
type Manager struct {
	generator *scenario.Generator
	deps      Deps
	repo      Repository
	logger    *slog.Logger

	mu    sync.Mutex
	games map[string]*GameSession
}

// NewManager creates a Manager. repo may be nil, in which case games live only as long as the process.
func NewManager(generator *scenario.Generator, deps Deps, repo Repository) *Manager {
	if repo != nil {
		deps.Recorder = repo
	}
	return &Manager{
		generator: generator,
		deps:      deps,
		repo:      repo,
		logger:    deps.Logger.With("source", "Manager"),
		games:     make(map[string]*GameSession),
	}
}

// NewGame generates a scenario with suspectCount suspects and starts a game for it.
func (m *Manager) NewGame(ctx context.Context, suspectCount int) (*GameSession, error) {
	sc, err := m.generator.Generate(suspectCount)
	if err != nil {
		return nil, errors.Wrap(err, "generate scenario")
	}
	g := NewGameSession(uuid.NewString(), sc, m.deps)
	if m.repo != nil {
		if err = m.repo.Create(ctx, g.State()); err != nil {
			return nil, errors.Wrap(err, "create game", slog.String("game_id", g.ID()))
		}
	}

	m.mu.Lock()
	m.games[g.ID()] = g
	m.mu.Unlock()

	m.logger.LogAttrs(ctx, slog.LevelInfo, "started game",
		slog.String("game_id", g.ID()), slog.Int("suspects", suspectCount))
	return g, nil
}

// Game returns the game with id, resuming it from the repository if it is not in memory.
func (m *Manager) Game(ctx context.Context, id string) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	if m.repo == nil {
		return nil, errors.Wrap(ErrGameNotFound, "lookup game", slog.String("game_id", id))
	}
	state, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "load game", slog.String("game_id", id))
	}
	g, err := RestoreGameSession(state, m.deps)
	if err != nil {
		return nil, errors.Wrap(err, "restore game")
	}
	m.games[id] = g
	m.logger.LogAttrs(ctx, slog.LevelInfo, "resumed game", slog.String("game_id", id))
	return g, nil
}
