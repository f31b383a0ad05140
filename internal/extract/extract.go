// Package extract recognises alibi and sighting statements in suspect replies.
//
// Suspects are instructed to phrase facts with two fixed templates:
//
//	I was in <room> from <start> to <end>
//	Saw <person> in <room> around <time>
//
// Anything else is colour commentary and yields no fact.
package extract

import (
	"context"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"regexp"
)

var (
	alibiPattern    = regexp.MustCompile(`(?i)\bI\s+was\s+in\s+(.+?)\s+from\b`)
	sightingPattern = regexp.MustCompile(`(?i)\bsaw\s+(.+?)\s+in\s+(.+?)\s+around\b`)
)

// Extractor turns an utterance into at most one DisclosedFact.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("source", "Extractor")}
}

// Extract matches the utterance spoken by speaker against the alibi and sighting templates.
//
// The alibi template wins when both match. ok is false when neither matches.
func (e *Extractor) Extract(ctx context.Context, speaker, utterance string) (models.DisclosedFact, bool) {
	alibi := alibiPattern.FindStringSubmatch(utterance)
	sighting := sightingPattern.FindStringSubmatch(utterance)

	switch {
	case alibi != nil && sighting != nil:
		e.logger.LogAttrs(ctx, slog.LevelDebug, "utterance matches both templates, preferring alibi",
			slog.String("speaker", speaker), slog.String("utterance", utterance))
		return models.NewAlibiFact(speaker, alibi[1]), true
	case alibi != nil:
		return models.NewAlibiFact(speaker, alibi[1]), true
	case sighting != nil:
		return models.NewSightingFact(speaker, sighting[1], sighting[2]), true
	default:
		return models.DisclosedFact{}, false
	}
}
