package interrogation

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
)

// ErrDialogueUnavailable is returned when the dialogue service fails or answers with something unparseable. The
// question can be retried; no game state has changed.
var ErrDialogueUnavailable = errors.NewSentinel("dialogue service unavailable")

// NarrativeKind selects which one-shot narrative to generate.
type NarrativeKind string

const (
	NarrativeIntro   NarrativeKind = "intro"
	NarrativeSummary NarrativeKind = "summary"
)

// ClassifyRequest asks the dialogue service which ground-truth facts a reply discloses.
type ClassifyRequest struct {
	Suspect models.SuspectGroundTruth
	Reply   string
}

// Classification lists the ground-truth facts a reply matched. Observations are indices into
// SuspectGroundTruth.Observations.
type Classification struct {
	Alibi        bool  `json:"alibi"`
	Observations []int `json:"observations"`
}

// NarrativeRequest carries what the narrator needs. Accused and Solved are only set for NarrativeSummary.
type NarrativeRequest struct {
	Kind     NarrativeKind
	Scenario *models.Scenario
	Accused  string
	Solved   bool
}

// Dialogue is the conversational service that voices the suspects.
type Dialogue interface {
	// Respond returns the suspect's next reply given the full conversation.
	Respond(ctx context.Context, messages []models.Message) (string, error)
	// Classify maps a reply to the suspect's ground truth.
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
	// Narrate produces scenario and end-of-game text.
	Narrate(ctx context.Context, req NarrativeRequest) (string, error)
}
