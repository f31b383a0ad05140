package interrogation

import (
	"cmp"
	"context"
	"github.com/myrjola/whodunit/internal/consistency"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/evidence"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"slices"
)

// Intro asks the narrator for the opening text of the case.
func (g *GameSession) Intro(ctx context.Context) (string, error) {
	text, err := g.dialogue.Narrate(ctx, NarrativeRequest{Kind: NarrativeIntro, Scenario: g.scenario})
	if err != nil {
		return "", errors.Join(ErrDialogueUnavailable, errors.Wrap(err, "narrate intro"))
	}
	return text, nil
}

// Accuse ends the game by naming the culprit. A failing narrator only costs the summary.
func (g *GameSession) Accuse(ctx context.Context, suspectID string) (Outcome, error) {
	if _, ok := g.scenario.Suspect(suspectID); !ok {
		return Outcome{}, errors.Wrap(ErrUnknownSuspect, "accuse", slog.String("suspect", suspectID))
	}
	ctx = logging.WithAttrs(ctx, slog.String("game_id", g.id), slog.String("accused", suspectID))

	if g.Ended() {
		return Outcome{}, errors.Wrap(ErrGameEnded, "accuse")
	}

	outcome := Outcome{
		Accused: suspectID,
		Culprit: g.scenario.Culprit,
		Solved:  suspectID == g.scenario.Culprit,
	}
	summary, err := g.dialogue.Narrate(ctx, NarrativeRequest{
		Kind:     NarrativeSummary,
		Scenario: g.scenario,
		Accused:  suspectID,
		Solved:   outcome.Solved,
	})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "could not narrate summary", errors.SlogError(err))
	}
	outcome.Summary = summary

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outcome != nil {
		return Outcome{}, errors.Wrap(ErrGameEnded, "commit accusation")
	}
	if err = g.recorder.EndGame(ctx, g.id, outcome); err != nil {
		return Outcome{}, errors.Wrap(err, "record outcome")
	}
	g.outcome = &outcome
	g.logger.LogAttrs(ctx, slog.LevelInfo, "game ended", slog.Bool("solved", outcome.Solved))
	return outcome, nil
}

// Ended reports whether the player has made their accusation.
func (g *GameSession) Ended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome != nil
}

// SuspectView is what the player knows about a suspect.
type SuspectView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Profession string       `json:"profession"`
	State      SessionState `json:"state"`
	// Alibi is set once the suspect has given it.
	Alibi *models.Alibi `json:"alibi,omitempty"`
	// Observations are the sightings the suspect has disclosed.
	Observations []models.Observation `json:"observations"`
}

// View is the player's side of the game. The culprit is only revealed in Outcome.
type View struct {
	ID           string                 `json:"id"`
	Victim       models.VictimFact      `json:"victim"`
	Rooms        []models.Room          `json:"rooms"`
	Suspects     []SuspectView          `json:"suspects"`
	Evidence     evidence.Snapshot      `json:"evidence"`
	Notes        []models.SightingClaim `json:"notes"`
	LiarDetected bool                   `json:"liarDetected"`
	Outcome      *Outcome               `json:"outcome,omitempty"`
}

// View returns the player's view of the game.
func (g *GameSession) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	snapshot := g.evidence.Snapshot()
	rooms := slices.Clone(g.scenario.Rooms)
	slices.SortFunc(rooms, func(a, b models.Room) int {
		return cmp.Compare(a.Name, b.Name)
	})
	v := View{
		ID:           g.id,
		Victim:       g.scenario.Victim,
		Rooms:        rooms,
		Evidence:     snapshot,
		Notes:        slices.Clone(g.notes),
		LiarDetected: consistency.Evaluate(snapshot),
		Outcome:      g.outcome,
	}
	for _, id := range g.scenario.Order {
		gt := g.scenario.Suspects[id]
		sv := SuspectView{ID: id, Name: gt.Name, Profession: gt.Profession, State: SessionStateUnmet}
		if s, ok := g.sessions[id]; ok {
			sv.State = SessionStateActive
			if s.AlibiGiven {
				alibi := gt.Alibi
				sv.Alibi = &alibi
			}
			for _, i := range s.DisclosedIndices() {
				sv.Observations = append(sv.Observations, gt.Observations[i])
			}
		}
		v.Suspects = append(v.Suspects, sv)
	}
	return v
}

// State returns a copy of the game for persistence and tests.
func (g *GameSession) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	sessions := make(map[string]*SuspectSession, len(g.sessions))
	for id, s := range g.sessions {
		sessions[id] = s.clone()
	}
	return State{
		ID:           g.id,
		Scenario:     g.scenario,
		Sessions:     sessions,
		Evidence:     g.evidence.Snapshot(),
		LiarNotified: g.notifier.Notified(),
		Outcome:      g.outcome,
	}
}
