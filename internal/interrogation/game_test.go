package interrogation_test

import (
	"context"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestGameSession_Ask_catchesCulprit(t *testing.T) {
	t.Parallel()
	for seed := range uint64(20) {
		sc := newScenario(t, seed)
		dialogue := newFakeDialogue()
		g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))
		ctx := context.Background()

		culprit := sc.Culprit
		witness := observerOf(sc, culprit)
		culpritWhere, culpritSeen := scriptSuspect(dialogue, sc, culprit)
		witnessWhere, witnessSeen := scriptSuspect(dialogue, sc, witness)

		reply, err := g.Ask(ctx, culprit, culpritWhere)
		require.NoError(t, err)
		require.NotNil(t, reply.Alibi)
		require.Equal(t, sc.Suspects[culprit].Alibi, *reply.Alibi)
		require.Empty(t, reply.MiscCommentary)
		require.False(t, reply.LiarDetected)
		require.False(t, reply.Notify)

		reply, err = g.Ask(ctx, culprit, culpritSeen)
		require.NoError(t, err)
		require.Nil(t, reply.Alibi, "alibi is only reported once")
		require.Len(t, reply.NewObservations, 1)
		require.False(t, reply.LiarDetected)

		reply, err = g.Ask(ctx, witness, witnessWhere)
		require.NoError(t, err)
		require.False(t, reply.LiarDetected)

		// The witness places the culprit in the crime room, which contradicts the culprit's alibi.
		reply, err = g.Ask(ctx, witness, witnessSeen)
		require.NoError(t, err)
		require.Equal(t, []models.Observation{sc.Suspects[witness].Observations[0]}, reply.NewObservations)
		require.Equal(t, sc.Victim.Room, reply.NewObservations[0].Room)
		require.True(t, reply.LiarDetected, "seed %d", seed)
		require.True(t, reply.Notify, "first detection notifies")

		reply, err = g.Ask(ctx, witness, witnessSeen)
		require.NoError(t, err)
		require.Empty(t, reply.NewObservations, "observation is only disclosed once")
		require.True(t, reply.LiarDetected)
		require.False(t, reply.Notify, "notification is sent once")

		reply, err = g.Ask(ctx, culprit, "Anything else?")
		require.NoError(t, err)
		require.Equal(t, "I like bread", reply.MiscCommentary)
		require.True(t, reply.LiarDetected)
		require.False(t, reply.Notify)

		view := g.View()
		require.True(t, view.LiarDetected)
		require.Equal(t, []models.AlibiClaim{{Person: culprit, Room: sc.Suspects[culprit].Alibi.Room.ID}},
			filterAlibis(view.Evidence.Alibis, culprit))
		require.Contains(t, view.Notes, models.SightingClaim{
			Observer: culprit, ObservedPerson: culprit, Room: sc.Suspects[culprit].Alibi.Room.ID,
		})
	}
}

func filterAlibis(alibis []models.AlibiClaim, person string) []models.AlibiClaim {
	var out []models.AlibiClaim
	for _, a := range alibis {
		if a.Person == person {
			out = append(out, a)
		}
	}
	return out
}

func TestGameSession_Ask_innocentSuspectsAreConsistent(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 3)
	dialogue := newFakeDialogue()
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))
	ctx := context.Background()

	for _, id := range sc.Order {
		if id == sc.Culprit || observerOf(sc, sc.Culprit) == id {
			continue
		}
		where, seen := scriptSuspect(dialogue, sc, id)
		_, err := g.Ask(ctx, id, where)
		require.NoError(t, err)
		reply, err := g.Ask(ctx, id, seen)
		require.NoError(t, err)
		require.False(t, reply.LiarDetected)
	}
}

func TestGameSession_Ask_classifierPath(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 5)
	dialogue := newFakeDialogue()
	dialogue.answer("Where were you?", "Oh, here and there, mostly near my usual spot.")
	dialogue.classify = func(req interrogation.ClassifyRequest) (interrogation.Classification, error) {
		if req.Reply == "Oh, here and there, mostly near my usual spot." {
			return interrogation.Classification{Alibi: true, Observations: []int{0, 0, 7, -1}}, nil
		}
		return interrogation.Classification{}, nil
	}
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))
	suspect := sc.Order[0]

	reply, err := g.Ask(context.Background(), suspect, "Where were you?")
	require.NoError(t, err)
	require.NotNil(t, reply.Alibi)
	require.Len(t, reply.NewObservations, 1, "duplicate and unknown indices are ignored")

	state := g.State()
	require.True(t, state.Sessions[suspect].AlibiGiven)
	require.Equal(t, []int{0}, state.Sessions[suspect].DisclosedIndices())
}

func TestGameSession_Ask_patternClaimNotMatchingGroundTruth(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 6)
	dialogue := newFakeDialogue()
	suspect := sc.Order[0]
	dialogue.answer("Where were you?", "I was in the Dungeon from dusk till dawn.")
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))

	reply, err := g.Ask(context.Background(), suspect, "Where were you?")
	require.NoError(t, err)
	require.Nil(t, reply.Alibi)
	require.Equal(t, "I was in the Dungeon from dusk till dawn.", reply.MiscCommentary)
	require.Empty(t, g.State().Evidence.Alibis)
}

func TestGameSession_Ask_dialogueFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 8)
	dialogue := newFakeDialogue()
	suspect := sc.Order[1]
	where, _ := scriptSuspect(dialogue, sc, suspect)
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))
	ctx := context.Background()

	dialogue.failNext = true
	_, err := g.Ask(ctx, suspect, where)
	require.ErrorIs(t, err, interrogation.ErrDialogueUnavailable)
	require.ErrorIs(t, err, errServiceDown)
	require.Empty(t, g.State().Sessions, "session is not created on failure")

	dialogue.classify = func(interrogation.ClassifyRequest) (interrogation.Classification, error) {
		return interrogation.Classification{}, errServiceDown
	}
	_, err = g.Ask(ctx, suspect, where)
	require.ErrorIs(t, err, interrogation.ErrDialogueUnavailable)
	require.Empty(t, g.State().Sessions)
	require.Empty(t, g.State().Evidence.Alibis)

	dialogue.classify = nil
	reply, err := g.Ask(ctx, suspect, where)
	require.NoError(t, err, "retry succeeds")
	require.NotNil(t, reply.Alibi)

	history := g.State().Sessions[suspect].History
	require.Len(t, history, 3)
	require.Equal(t, models.RoleSystem, history[0].Role)
	require.Contains(t, history[0].Content, sc.Suspects[suspect].Alibi.Room.Name)
	require.Equal(t, models.Message{Role: models.RoleUser, Content: where}, history[1])
	require.Equal(t, models.RoleAssistant, history[2].Role)
}

func TestGameSession_Ask_recorderFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 9)
	dialogue := newFakeDialogue()
	repo := newMemoryRepository()
	suspect := sc.Order[0]
	where, _ := scriptSuspect(dialogue, sc, suspect)
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, repo))

	repo.failNext = true
	_, err := g.Ask(context.Background(), suspect, where)
	require.ErrorIs(t, err, errServiceDown)
	require.Empty(t, g.State().Sessions)
	require.Empty(t, g.State().Evidence.Alibis)

	_, err = g.Ask(context.Background(), suspect, where)
	require.NoError(t, err)
	require.Len(t, repo.exchanges, 1)
	exchange := repo.exchanges[0]
	require.Equal(t, suspect, exchange.SuspectID)
	require.Len(t, exchange.Messages, 3)
	require.Equal(t, &models.AlibiClaim{Person: suspect, Room: sc.Suspects[suspect].Alibi.Room.ID}, exchange.Alibi)
	require.False(t, exchange.LiarNotified)
}

func TestGameSession_Ask_unknownSuspect(t *testing.T) {
	t.Parallel()
	g := interrogation.NewGameSession("game", newScenario(t, 1), newDeps(newFakeDialogue(), nil))
	_, err := g.Ask(context.Background(), "nobody", "Hello?")
	require.ErrorIs(t, err, interrogation.ErrUnknownSuspect)
}

func TestGameSession_Ask_concurrentQuestions(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 11)
	dialogue := newFakeDialogue()
	questions := make(map[string][2]string)
	for _, id := range sc.Order {
		where, seen := scriptSuspect(dialogue, sc, id)
		questions[id] = [2]string{where, seen}
	}
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))

	var wg sync.WaitGroup
	for _, id := range sc.Order {
		for range 3 {
			for _, q := range questions[id] {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := g.Ask(context.Background(), id, q)
					assert.NoError(t, err)
				}()
			}
		}
	}
	wg.Wait()

	state := g.State()
	require.Len(t, state.Evidence.Alibis, len(sc.Order))
	require.Len(t, state.Evidence.Sightings, len(sc.Order))
	require.True(t, state.LiarNotified)
	for _, id := range sc.Order {
		// Persona prompt plus six question and answer pairs.
		require.Len(t, state.Sessions[id].History, 13)
	}
}

func TestGameSession_Accuse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		accuse     func(sc *models.Scenario) string
		narrateErr error
		wantSolved bool
		wantText   string
	}{
		{
			name:       "culprit",
			accuse:     func(sc *models.Scenario) string { return sc.Culprit },
			wantSolved: true,
			wantText:   "summary narrative",
		},
		{
			name:       "innocent",
			accuse:     func(sc *models.Scenario) string { return observerOf(sc, sc.Culprit) },
			wantSolved: false,
			wantText:   "summary narrative",
		},
		{
			name:       "narrator down",
			accuse:     func(sc *models.Scenario) string { return sc.Culprit },
			narrateErr: errServiceDown,
			wantSolved: true,
			wantText:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sc := newScenario(t, 12)
			dialogue := newFakeDialogue()
			if tt.narrateErr != nil {
				dialogue.narrate = func(interrogation.NarrativeRequest) (string, error) { return "", tt.narrateErr }
			}
			repo := newMemoryRepository()
			g := interrogation.NewGameSession("game", sc, newDeps(dialogue, repo))
			ctx := context.Background()

			outcome, err := g.Accuse(ctx, tt.accuse(sc))
			require.NoError(t, err)
			require.Equal(t, tt.wantSolved, outcome.Solved)
			require.Equal(t, sc.Culprit, outcome.Culprit)
			require.Equal(t, tt.wantText, outcome.Summary)
			require.True(t, g.Ended())
			require.Equal(t, &outcome, g.View().Outcome)

			_, err = g.Ask(ctx, sc.Culprit, "One more thing")
			require.ErrorIs(t, err, interrogation.ErrGameEnded)
			_, err = g.Accuse(ctx, sc.Culprit)
			require.ErrorIs(t, err, interrogation.ErrGameEnded)
		})
	}
}

func TestGameSession_Intro(t *testing.T) {
	t.Parallel()
	dialogue := newFakeDialogue()
	g := interrogation.NewGameSession("game", newScenario(t, 2), newDeps(dialogue, nil))
	intro, err := g.Intro(context.Background())
	require.NoError(t, err)
	require.Equal(t, "intro narrative", intro)

	dialogue.narrate = func(interrogation.NarrativeRequest) (string, error) { return "", errServiceDown }
	_, err = g.Intro(context.Background())
	require.ErrorIs(t, err, interrogation.ErrDialogueUnavailable)
}

func TestGameSession_View(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 4)
	dialogue := newFakeDialogue()
	suspect := sc.Order[2]
	where, seen := scriptSuspect(dialogue, sc, suspect)
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))

	view := g.View()
	require.Len(t, view.Suspects, len(sc.Order))
	for _, s := range view.Suspects {
		require.Equal(t, interrogation.SessionStateUnmet, s.State)
	}

	_, err := g.Ask(context.Background(), suspect, where)
	require.NoError(t, err)
	_, err = g.Ask(context.Background(), suspect, seen)
	require.NoError(t, err)

	view = g.View()
	sv := view.Suspects[2]
	require.Equal(t, suspect, sv.ID)
	require.Equal(t, interrogation.SessionStateActive, sv.State)
	require.Equal(t, sc.Suspects[suspect].Alibi, *sv.Alibi)
	require.Equal(t, sc.Suspects[suspect].Observations, sv.Observations)
	require.Nil(t, view.Outcome)
}

func TestRestoreGameSession(t *testing.T) {
	t.Parallel()
	sc := newScenario(t, 13)
	dialogue := newFakeDialogue()
	culprit := sc.Culprit
	witness := observerOf(sc, culprit)
	culpritWhere, _ := scriptSuspect(dialogue, sc, culprit)
	_, witnessSeen := scriptSuspect(dialogue, sc, witness)
	g := interrogation.NewGameSession("game", sc, newDeps(dialogue, nil))
	ctx := context.Background()

	_, err := g.Ask(ctx, culprit, culpritWhere)
	require.NoError(t, err)
	reply, err := g.Ask(ctx, witness, witnessSeen)
	require.NoError(t, err)
	require.True(t, reply.Notify)

	restored, err := interrogation.RestoreGameSession(g.State(), newDeps(dialogue, nil))
	require.NoError(t, err)
	require.Equal(t, g.View(), restored.View())

	reply, err = restored.Ask(ctx, witness, witnessSeen)
	require.NoError(t, err)
	require.True(t, reply.LiarDetected)
	require.False(t, reply.Notify, "resumed game does not notify twice")
	require.Empty(t, reply.NewObservations)
}
