// Package consistency decides whether a suspect has been caught in a lie.
//
// A person is a liar when their recorded alibi names one room and somebody reports seeing them in another room.
// Time windows are deliberately not compared; only room identity matters.
package consistency

import (
	"github.com/myrjola/whodunit/internal/evidence"
	"slices"
	"sync"
)

// Liars returns the sorted IDs of every person whose alibi is contradicted by a sighting in the snapshot.
func Liars(snapshot evidence.Snapshot) []string {
	var liars []string
	for _, alibi := range snapshot.Alibis {
		for _, sighting := range snapshot.Sightings {
			if sighting.ObservedPerson == alibi.Person && sighting.Room != alibi.Room {
				liars = append(liars, alibi.Person)
				break
			}
		}
	}
	slices.Sort(liars)
	return slices.Compact(liars)
}

// Evaluate reports whether anybody is caught in a lie. Missing evidence yields false.
func Evaluate(snapshot evidence.Snapshot) bool {
	return len(Liars(snapshot)) > 0
}

// Notifier turns the repeated Evaluate results of a game into a single notification.
type Notifier struct {
	mu       sync.Mutex
	notified bool
}

// NewNotifier creates a Notifier. Pass notified=true when resuming a game that already notified the player.
func NewNotifier(notified bool) *Notifier {
	return &Notifier{notified: notified}
}

// Observe returns true only for the first detected lie.
func (n *Notifier) Observe(liarDetected bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !liarDetected || n.notified {
		return false
	}
	n.notified = true
	return true
}

// Notified reports whether the notification has been sent.
func (n *Notifier) Notified() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notified
}
