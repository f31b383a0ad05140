package interrogation

import (
	"github.com/myrjola/whodunit/internal/models"
	"maps"
	"slices"
)

// SessionState is where a suspect is in the interrogation.
type SessionState string

const (
	SessionStateUnmet  SessionState = "unmet"
	SessionStateActive SessionState = "active"
)

// SuspectSession is the conversation with one suspect. It is created on the first question.
type SuspectSession struct {
	SuspectID string           `json:"suspectId"`
	History   []models.Message `json:"history"`
	// Disclosed holds the indices of ground-truth observations the suspect has already revealed.
	Disclosed  map[int]bool `json:"disclosed"`
	AlibiGiven bool         `json:"alibiGiven"`
}

func newSuspectSession(suspectID string) *SuspectSession {
	return &SuspectSession{
		SuspectID: suspectID,
		Disclosed: make(map[int]bool),
	}
}

// DisclosedIndices returns the disclosed observation indices in ascending order.
func (s *SuspectSession) DisclosedIndices() []int {
	return slices.Sorted(maps.Keys(s.Disclosed))
}

func (s *SuspectSession) clone() *SuspectSession {
	return &SuspectSession{
		SuspectID:  s.SuspectID,
		History:    slices.Clone(s.History),
		Disclosed:  maps.Clone(s.Disclosed),
		AlibiGiven: s.AlibiGiven,
	}
}
