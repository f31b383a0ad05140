package interrogation_test

import (
	"context"
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/extract"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/random"
	"github.com/myrjola/whodunit/internal/scenario"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

var errServiceDown = errors.NewSentinel("service down")

// fakeDialogue answers questions from a script keyed by the question text.
type fakeDialogue struct {
	mu        sync.Mutex
	answers   map[string]string
	classify  func(req interrogation.ClassifyRequest) (interrogation.Classification, error)
	narrate   func(req interrogation.NarrativeRequest) (string, error)
	failNext  bool
	responded int
}

func newFakeDialogue() *fakeDialogue {
	return &fakeDialogue{answers: make(map[string]string)}
}

func (f *fakeDialogue) Respond(_ context.Context, messages []models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", errServiceDown
	}
	f.responded++
	question := messages[len(messages)-1].Content
	if answer, ok := f.answers[question]; ok {
		return answer, nil
	}
	return "I like bread", nil
}

func (f *fakeDialogue) Classify(
	_ context.Context, req interrogation.ClassifyRequest,
) (interrogation.Classification, error) {
	if f.classify != nil {
		return f.classify(req)
	}
	return interrogation.Classification{}, nil
}

func (f *fakeDialogue) Narrate(_ context.Context, req interrogation.NarrativeRequest) (string, error) {
	if f.narrate != nil {
		return f.narrate(req)
	}
	return fmt.Sprintf("%s narrative", req.Kind), nil
}

func (f *fakeDialogue) answer(question, answer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[question] = answer
}

// scriptSuspect makes the suspect answer "<name>, where were you?" with the alibi template and
// "<name>, what did you see?" with the sighting template, both following the ground truth.
func scriptSuspect(f *fakeDialogue, sc *models.Scenario, id string) (string, string) {
	gt := sc.Suspects[id]
	where := fmt.Sprintf("%s, where were you?", gt.Name)
	seen := fmt.Sprintf("%s, what did you see?", gt.Name)
	f.answer(where, fmt.Sprintf("I was in the %s from %s to %s.", gt.Alibi.Room.Name, gt.Alibi.Window.Start,
		gt.Alibi.Window.End))
	o := gt.Observations[0]
	f.answer(seen, fmt.Sprintf("Saw %s in the %s around %s.", sc.Suspects[o.Person].Name, o.Room.Name,
		o.Window.Start))
	return where, seen
}

// observerOf returns the suspect who saw person.
func observerOf(sc *models.Scenario, person string) string {
	for id, gt := range sc.Suspects {
		for _, o := range gt.Observations {
			if o.Person == person {
				return id
			}
		}
	}
	return ""
}

func newScenario(t *testing.T, seed uint64) *models.Scenario {
	t.Helper()
	g := scenario.NewGenerator(scenario.DefaultTopology(), random.NewSeededRand(seed, seed), testhelpers.DiscardLogger())
	sc, err := g.Generate(scenario.DefaultSuspectCount)
	require.NoError(t, err)
	return sc
}

func newDeps(dialogue interrogation.Dialogue, recorder interrogation.Recorder) interrogation.Deps {
	logger := testhelpers.DiscardLogger()
	return interrogation.Deps{
		Dialogue:  dialogue,
		Extractor: extract.New(logger),
		Recorder:  recorder,
		Logger:    logger,
	}
}

// memoryRepository is an in-memory interrogation.Repository.
type memoryRepository struct {
	mu        sync.Mutex
	states    map[string]interrogation.State
	exchanges []interrogation.Exchange
	failNext  bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{states: make(map[string]interrogation.State)}
}

func (r *memoryRepository) Create(_ context.Context, state interrogation.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ID] = state
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (interrogation.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[id]
	if !ok {
		return interrogation.State{}, interrogation.ErrGameNotFound
	}
	return state, nil
}

func (r *memoryRepository) RecordExchange(_ context.Context, _ string, exchange interrogation.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errServiceDown
	}
	r.exchanges = append(r.exchanges, exchange)
	return nil
}

func (r *memoryRepository) EndGame(_ context.Context, id string, outcome interrogation.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.states[id]
	state.Outcome = &outcome
	r.states[id] = state
	return nil
}
