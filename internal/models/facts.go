package models

import (
	"regexp"
	"strings"
)

// FactKind discriminates DisclosedFact.
type FactKind string

const (
	FactKindAlibi    FactKind = "alibi"
	FactKindSighting FactKind = "sighting"
)

// AlibiClaim is a person placing themselves in a room.
type AlibiClaim struct {
	Person string `json:"person" db:"person"`
	Room   string `json:"room"   db:"room"`
}

// SightingClaim is an observer reporting that they saw another person in a room.
type SightingClaim struct {
	Observer       string `json:"observer"       db:"observer"`
	ObservedPerson string `json:"observedPerson" db:"observed_person"`
	Room           string `json:"room"           db:"room"`
}

// DisclosedFact is a fact stated by a suspect. Exactly one of Alibi and Sighting is set, as indicated by Kind.
type DisclosedFact struct {
	Kind     FactKind       `json:"kind"`
	Alibi    *AlibiClaim    `json:"alibi,omitempty"`
	Sighting *SightingClaim `json:"sighting,omitempty"`
}

// NewAlibiFact creates an alibi fact with normalised identifiers.
func NewAlibiFact(person, room string) DisclosedFact {
	return DisclosedFact{
		Kind:  FactKindAlibi,
		Alibi: &AlibiClaim{Person: Normalize(person), Room: Normalize(room)},
	}
}

// NewSightingFact creates a sighting fact with normalised identifiers.
func NewSightingFact(observer, observed, room string) DisclosedFact {
	return DisclosedFact{
		Kind: FactKindSighting,
		Sighting: &SightingClaim{
			Observer:       Normalize(observer),
			ObservedPerson: Normalize(observed),
			Room:           Normalize(room),
		},
	}
}

var (
	whitespace     = regexp.MustCompile(`\s+`)
	leadingArticle = regexp.MustCompile(`^the\s+`)
)

// Normalize turns a room or person name into its identifier: lower case, without a leading "the", with
// whitespace runs replaced by underscores.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Trim(name, ".,;:!?\"'")
	name = leadingArticle.ReplaceAllString(name, "")
	return whitespace.ReplaceAllString(name, "_")
}
