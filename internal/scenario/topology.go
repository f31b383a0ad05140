package scenario

import (
	"github.com/myrjola/whodunit/internal/models"
	"slices"
)

// Topology is the static map of the estate. Adjacency is informational and shown to the player; the consistency
// rules only compare room identity.
type Topology struct {
	rooms     []models.Room
	adjacency map[string][]string
}

// NewTopology builds a topology from room names and undirected edges between room IDs.
func NewTopology(names []string, edges [][2]string) Topology {
	t := Topology{
		rooms:     make([]models.Room, 0, len(names)),
		adjacency: make(map[string][]string, len(names)),
	}
	for _, name := range names {
		t.rooms = append(t.rooms, models.Room{ID: models.Normalize(name), Name: name})
	}
	for _, e := range edges {
		t.adjacency[e[0]] = append(t.adjacency[e[0]], e[1])
		t.adjacency[e[1]] = append(t.adjacency[e[1]], e[0])
	}
	for id := range t.adjacency {
		slices.Sort(t.adjacency[id])
	}
	return t
}

// Rooms returns a copy of all rooms in declaration order.
func (t Topology) Rooms() []models.Room {
	return slices.Clone(t.rooms)
}

// Room looks up a room by ID.
func (t Topology) Room(id string) (models.Room, bool) {
	i := slices.IndexFunc(t.rooms, func(r models.Room) bool { return r.ID == id })
	if i < 0 {
		return models.Room{}, false
	}
	return t.rooms[i], true
}

// Adjacent returns the IDs of rooms directly connected to id.
func (t Topology) Adjacent(id string) []string {
	return slices.Clone(t.adjacency[id])
}

// DefaultTopology is the village the mysteries take place in.
func DefaultTopology() Topology {
	return NewTopology(
		[]string{
			"Forge", "Courtyard", "Shop", "Tavern", "Chapel",
			"Stables", "Library", "Kitchen", "Cellar", "Great Hall",
		},
		[][2]string{
			{"forge", "courtyard"},
			{"shop", "courtyard"},
			{"tavern", "courtyard"},
			{"chapel", "courtyard"},
			{"stables", "forge"},
			{"great_hall", "courtyard"},
			{"great_hall", "library"},
			{"great_hall", "kitchen"},
			{"kitchen", "cellar"},
			{"tavern", "cellar"},
		},
	)
}
