// Package evidence keeps the detective's notes: every alibi and sighting disclosed during a game.
//
// Nothing is ever removed. Once something has been said it stays on the record, even if it is later contradicted.
package evidence

import (
	"cmp"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"slices"
	"sync"
)

// ErrConflictingAlibi means a second, different alibi room was recorded for the same person. The first alibi is
// locked in, so this indicates an ordering bug in the caller.
var ErrConflictingAlibi = errors.NewSentinel("conflicting alibi for person")

// Store accumulates alibi and sighting claims. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	alibis    map[string]string
	sightings []models.SightingClaim
	seen      map[models.SightingClaim]struct{}
}

func NewStore() *Store {
	return &Store{
		alibis: make(map[string]string),
		seen:   make(map[models.SightingClaim]struct{}),
	}
}

// NewFromSnapshot restores a store, e.g., when a saved game is resumed.
func NewFromSnapshot(snapshot Snapshot) (*Store, error) {
	s := NewStore()
	for _, a := range snapshot.Alibis {
		if err := s.RecordAlibi(a.Person, a.Room); err != nil {
			return nil, errors.Wrap(err, "restore alibi")
		}
	}
	for _, sighting := range snapshot.Sightings {
		s.RecordSighting(sighting.Observer, sighting.ObservedPerson, sighting.Room)
	}
	return s, nil
}

// RecordAlibi stores the alibi room of person. Recording the same claim again has no effect. A different room for
// a person that already has an alibi returns ErrConflictingAlibi and leaves the store unchanged.
func (s *Store) RecordAlibi(person, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.alibis[person]; ok {
		if existing == room {
			return nil
		}
		return errors.Wrap(ErrConflictingAlibi, "record alibi",
			slog.String("person", person), slog.String("recorded_room", existing), slog.String("room", room))
	}
	s.alibis[person] = room
	return nil
}

// RecordSighting appends the sighting unless the identical triple is already recorded. Returns true if the sighting
// was new.
func (s *Store) RecordSighting(observer, observedPerson, room string) bool {
	claim := models.SightingClaim{Observer: observer, ObservedPerson: observedPerson, Room: room}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[claim]; ok {
		return false
	}
	s.seen[claim] = struct{}{}
	s.sightings = append(s.sightings, claim)
	return true
}

// Alibi returns the recorded alibi room of person.
func (s *Store) Alibi(person string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.alibis[person]
	return room, ok
}

// Snapshot returns a copy of the current evidence that is safe to read without locking.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alibis := make([]models.AlibiClaim, 0, len(s.alibis))
	for person, room := range s.alibis {
		alibis = append(alibis, models.AlibiClaim{Person: person, Room: room})
	}
	slices.SortFunc(alibis, func(a, b models.AlibiClaim) int {
		return cmp.Compare(a.Person, b.Person)
	})
	return Snapshot{
		Alibis:    alibis,
		Sightings: slices.Clone(s.sightings),
	}
}

// Snapshot is an immutable view of the evidence. Alibis are sorted by person and sightings are in recording order.
type Snapshot struct {
	Alibis    []models.AlibiClaim    `json:"alibis"`
	Sightings []models.SightingClaim `json:"sightings"`
}

// With returns a copy of the snapshot with the given facts added. Used to evaluate a prospective state before it is
// committed.
func (s Snapshot) With(facts ...models.DisclosedFact) Snapshot {
	out := Snapshot{Alibis: slices.Clone(s.Alibis), Sightings: slices.Clone(s.Sightings)}
	for _, f := range facts {
		switch f.Kind {
		case models.FactKindAlibi:
			if !slices.ContainsFunc(out.Alibis, func(a models.AlibiClaim) bool { return a.Person == f.Alibi.Person }) {
				out.Alibis = append(out.Alibis, *f.Alibi)
			}
		case models.FactKindSighting:
			if !slices.Contains(out.Sightings, *f.Sighting) {
				out.Sightings = append(out.Sightings, *f.Sighting)
			}
		}
	}
	return out
}
