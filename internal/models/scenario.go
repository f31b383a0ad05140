package models

import (
	"github.com/myrjola/whodunit/internal/errors"
	"log/slog"
	"strings"
)

var ErrInconsistentScenario = errors.NewSentinel("scenario does not have exactly one contradicted suspect")

// Room is a location in the mansion. ID is the normalised name used for all comparisons.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VictimFact describes the crime. It is fixed once the scenario is generated.
type VictimFact struct {
	DeathMethod string `json:"deathMethod"`
	Motive      string `json:"motive"`
	Profession  string `json:"profession"`
	Room        Room   `json:"room"`
	TimeOfDeath Clock  `json:"timeOfDeath"`
}

// Alibi is where a suspect says they were around the time of death.
type Alibi struct {
	Room   Room       `json:"room"`
	Window TimeWindow `json:"window"`
}

// Observation is a ground-truth sighting that the observing suspect reveals when asked the right question.
type Observation struct {
	Room     Room       `json:"room"`
	Person   string     `json:"person"`
	Window   TimeWindow `json:"window"`
	Observer string     `json:"observer"`
}

// SuspectGroundTruth is the hidden knowledge of a single suspect.
type SuspectGroundTruth struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Profession   string        `json:"profession"`
	Alibi        Alibi         `json:"alibi"`
	Observations []Observation `json:"observations"`
}

// Scenario is a generated case. It is never mutated after generation.
type Scenario struct {
	Victim   VictimFact                    `json:"victim"`
	Suspects map[string]SuspectGroundTruth `json:"suspects"`
	// Order is the display order of the suspect IDs.
	Order   []string `json:"order"`
	Culprit string   `json:"culprit"`
	Rooms   []Room   `json:"rooms"`
}

// Suspect returns the ground truth of suspect id.
func (s *Scenario) Suspect(id string) (SuspectGroundTruth, bool) {
	gt, ok := s.Suspects[id]
	return gt, ok
}

// SightedRooms maps each observed person to the rooms they were seen in according to the ground truth.
func (s *Scenario) SightedRooms() map[string][]string {
	sighted := make(map[string][]string)
	for _, id := range s.Order {
		for _, o := range s.Suspects[id].Observations {
			sighted[o.Person] = append(sighted[o.Person], o.Room.ID)
		}
	}
	return sighted
}

// Contradicted returns the suspects whose ground-truth sightings disagree with their claimed alibi room.
func (s *Scenario) Contradicted() []string {
	sighted := s.SightedRooms()
	var contradicted []string
	for _, id := range s.Order {
		alibiRoom := s.Suspects[id].Alibi.Room.ID
		for _, room := range sighted[id] {
			if room != alibiRoom {
				contradicted = append(contradicted, id)
				break
			}
		}
	}
	return contradicted
}

// Validate checks the construction invariants: the culprit claims to have been elsewhere than the crime room, and
// the culprit is the one and only suspect whose sightings contradict their alibi.
func (s *Scenario) Validate() error {
	culprit, ok := s.Suspects[s.Culprit]
	if !ok {
		return errors.Wrap(ErrInconsistentScenario, "culprit is not a suspect", slog.String("culprit", s.Culprit))
	}
	if len(s.Order) != len(s.Suspects) {
		return errors.Wrap(ErrInconsistentScenario, "suspect order does not match suspects")
	}
	if culprit.Alibi.Room.ID == s.Victim.Room.ID {
		return errors.Wrap(ErrInconsistentScenario, "culprit alibi is the crime room")
	}
	contradicted := s.Contradicted()
	if len(contradicted) != 1 || contradicted[0] != s.Culprit {
		return errors.Wrap(ErrInconsistentScenario, "unexpected contradicted suspects",
			slog.String("contradicted", strings.Join(contradicted, ",")))
	}
	return nil
}
