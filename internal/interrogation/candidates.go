package interrogation

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"log/slog"
	"slices"
)

// CandidateSource tells which strategy produced a FactCandidate.
type CandidateSource string

const (
	CandidateSourcePattern    CandidateSource = "pattern"
	CandidateSourceClassifier CandidateSource = "classifier"
)

// FactCandidate is a fact that one of the extraction strategies believes the reply states.
type FactCandidate struct {
	Source CandidateSource
	Fact   models.DisclosedFact
}

// candidates runs both extraction strategies on the reply. The pattern extractor catches replies that follow the
// phrase templates; the classifier catches free-form replies.
func (g *GameSession) candidates(
	ctx context.Context,
	gt models.SuspectGroundTruth,
	answer string,
) ([]FactCandidate, error) {
	var candidates []FactCandidate
	if fact, ok := g.extractor.Extract(ctx, gt.ID, answer); ok {
		candidates = append(candidates, FactCandidate{Source: CandidateSourcePattern, Fact: fact})
	}

	classification, err := g.dialogue.Classify(ctx, ClassifyRequest{Suspect: gt, Reply: answer})
	if err != nil {
		return nil, errors.Join(ErrDialogueUnavailable, errors.Wrap(err, "classify"))
	}
	if classification.Alibi {
		candidates = append(candidates, FactCandidate{
			Source: CandidateSourceClassifier,
			Fact:   models.NewAlibiFact(gt.ID, gt.Alibi.Room.ID),
		})
	}
	for _, i := range classification.Observations {
		if i < 0 || i >= len(gt.Observations) {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "classifier returned unknown observation", slog.Int("index", i))
			continue
		}
		o := gt.Observations[i]
		candidates = append(candidates, FactCandidate{
			Source: CandidateSourceClassifier,
			Fact:   models.NewSightingFact(gt.ID, o.Person, o.Room.ID),
		})
	}
	return candidates, nil
}

// match merges the candidates against the suspect's ground truth. It reports whether the true alibi was given and
// which observations were disclosed, in ascending index order. Candidates that match nothing are logged and ignored.
func (g *GameSession) match(
	ctx context.Context,
	gt models.SuspectGroundTruth,
	candidates []FactCandidate,
) (bool, []int) {
	var (
		alibi   bool
		matched []int
	)
	for _, c := range candidates {
		switch c.Fact.Kind {
		case models.FactKindAlibi:
			if c.Fact.Alibi.Room == gt.Alibi.Room.ID {
				alibi = true
				continue
			}
		case models.FactKindSighting:
			i := slices.IndexFunc(gt.Observations, func(o models.Observation) bool {
				return o.Person == c.Fact.Sighting.ObservedPerson && o.Room.ID == c.Fact.Sighting.Room
			})
			if i >= 0 {
				matched = append(matched, i)
				continue
			}
		}
		g.logger.LogAttrs(ctx, slog.LevelDebug, "fact candidate does not match ground truth",
			slog.String("candidate_source", string(c.Source)), slog.Any("fact", c.Fact))
	}
	slices.Sort(matched)
	return alibi, slices.Compact(matched)
}
