package scenario

import (
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"math/rand/v2"
	"sync"
)

var (
	ErrRoomPoolTooSmall = errors.NewSentinel("not enough rooms for the requested suspects")
	ErrTooFewSuspects   = errors.NewSentinel("at least two suspects are needed")
	ErrTooFewNames      = errors.NewSentinel("not enough suspect names for the requested suspects")
)

const DefaultSuspectCount = 4

const (
	alibiMinOffset    = 15
	alibiMaxOffset    = 55
	sightingMinOffset = 5
	sightingMaxOffset = 15
)

var (
	deathMethods = []string{
		"poisoned wine", "blow to the head", "stabbing", "strangulation", "push down the stairs", "crossbow bolt",
	}
	motives = []string{
		"inheritance", "jealousy", "blackmail", "unpaid debt", "revenge", "a stolen recipe",
	}
	victimProfessions = []string{
		"mayor", "moneylender", "alchemist", "knight", "tax collector", "innkeeper",
	}
	suspectProfessions = []string{
		"blacksmith", "merchant", "baker", "guard", "scribe", "apothecary", "minstrel", "stablehand",
	}
	suspectNames = []string{
		"Mira", "Aldric", "Bryn", "Corwin", "Dagna", "Edric", "Fenna", "Gideon",
	}
)

// Generator creates random, internally consistent scenarios.
type Generator struct {
	topology Topology
	names    []string
	logger   *slog.Logger

	// mu guards rnd, which is not safe for concurrent use.
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a Generator drawing from rnd. Pass a seeded generator for reproducible scenarios.
func NewGenerator(topology Topology, rnd *rand.Rand, logger *slog.Logger) *Generator {
	return &Generator{
		topology: topology,
		names:    suspectNames,
		logger:   logger.With("source", "ScenarioGenerator"),
		rnd:      rnd,
	}
}

// Generate builds a scenario with suspectCount suspects.
//
// The culprit is the first suspect in construction order. Their alibi names a room other than the crime room, while
// the suspect who saw them reports them in the crime room. Every other suspect is seen in the room they claim.
func (g *Generator) Generate(suspectCount int) (*models.Scenario, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	attrs := slog.Int("suspects", suspectCount)
	if suspectCount < 2 { //nolint:mnd // a derangement needs two
		return nil, errors.Wrap(ErrTooFewSuspects, "validate suspect count", attrs)
	}
	rooms := g.topology.Rooms()
	if len(rooms) < suspectCount+1 {
		return nil, errors.Wrap(ErrRoomPoolTooSmall, "validate room pool", attrs, slog.Int("rooms", len(rooms)))
	}
	if len(g.names) < suspectCount {
		return nil, errors.Wrap(ErrTooFewNames, "validate name pool", attrs, slog.Int("names", len(g.names)))
	}

	drawn := g.drawRooms(rooms, suspectCount+1)
	crimeRoom, alibiRooms := drawn[0], drawn[1:]
	tod := models.NewClock(g.rnd.IntN(24), g.rnd.IntN(60)) //nolint:mnd // hours and minutes

	victim := models.VictimFact{
		DeathMethod: g.pick(deathMethods),
		Motive:      g.pick(motives),
		Profession:  g.pick(victimProfessions),
		Room:        crimeRoom,
		TimeOfDeath: tod,
	}

	names := g.shuffled(g.names)[:suspectCount]
	suspects := make([]models.SuspectGroundTruth, suspectCount)
	for i, name := range names {
		suspects[i] = models.SuspectGroundTruth{
			ID:         models.Normalize(name),
			Name:       name,
			Profession: g.pick(suspectProfessions),
			Alibi: models.Alibi{
				Room: alibiRooms[i],
				Window: models.TimeWindow{
					Start: tod.Add(-g.between(alibiMinOffset, alibiMaxOffset)),
					End:   tod.Add(g.between(alibiMinOffset, alibiMaxOffset)),
				},
			},
		}
	}

	// Suspect observer sees suspect seen[observer]. A derangement guarantees nobody reports on themselves.
	seen := g.derangement(suspectCount)
	for observer, target := range seen {
		room := suspects[target].Alibi.Room
		if target == 0 {
			room = crimeRoom
		}
		suspects[observer].Observations = append(suspects[observer].Observations, models.Observation{
			Room:     room,
			Person:   suspects[target].ID,
			Observer: suspects[observer].ID,
			Window: models.TimeWindow{
				Start: tod.Add(-g.between(sightingMinOffset, sightingMaxOffset)),
				End:   tod.Add(g.between(sightingMinOffset, sightingMaxOffset)),
			},
		})
	}

	sc := &models.Scenario{
		Victim:   victim,
		Suspects: make(map[string]models.SuspectGroundTruth, suspectCount),
		Culprit:  suspects[0].ID,
		Rooms:    drawn,
	}
	for _, s := range suspects {
		sc.Suspects[s.ID] = s
	}
	// Display order is shuffled so that the culprit is not always listed first.
	for _, i := range g.rnd.Perm(suspectCount) {
		sc.Order = append(sc.Order, suspects[i].ID)
	}

	if err := sc.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate generated scenario", attrs)
	}

	g.logger.Debug("generated scenario",
		slog.String("crime_room", crimeRoom.ID), slog.String("time_of_death", tod.String()), attrs)

	return sc, nil
}

func (g *Generator) drawRooms(rooms []models.Room, n int) []models.Room {
	drawn := make([]models.Room, 0, n)
	for _, i := range g.rnd.Perm(len(rooms))[:n] {
		drawn = append(drawn, rooms[i])
	}
	return drawn
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.IntN(len(values))]
}

// between returns a uniformly random integer in [low, high].
func (g *Generator) between(low, high int) int {
	return low + g.rnd.IntN(high-low+1)
}

func (g *Generator) shuffled(values []string) []string {
	out := make([]string, len(values))
	for i, j := range g.rnd.Perm(len(values)) {
		out[i] = values[j]
	}
	return out
}

// derangement returns a random permutation of [0, n) without fixed points using Sattolo's algorithm.
func (g *Generator) derangement(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := g.rnd.IntN(i)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
