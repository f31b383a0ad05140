package extract_test

import (
	"bytes"
	"context"
	"github.com/myrjola/whodunit/internal/extract"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		speaker   string
		utterance string
		want      models.DisclosedFact
		wantOK    bool
	}{
		{
			name:      "alibi",
			speaker:   "Bryn",
			utterance: "I was in the Forge from 9:00 to 9:40",
			want:      models.DisclosedFact{Kind: models.FactKindAlibi, Alibi: &models.AlibiClaim{Person: "bryn", Room: "forge"}},
			wantOK:    true,
		},
		{
			name:      "sighting",
			speaker:   "Bryn",
			utterance: "Saw Mira in the Courtyard around 9:15",
			want: models.DisclosedFact{Kind: models.FactKindSighting, Sighting: &models.SightingClaim{
				Observer: "bryn", ObservedPerson: "mira", Room: "courtyard",
			}},
			wantOK: true,
		},
		{
			name:      "no fact",
			speaker:   "Bryn",
			utterance: "I like bread",
			wantOK:    false,
		},
		{
			name:      "case insensitive and embedded in prose",
			speaker:   "Mira",
			utterance: "Why would you ask? i WAS IN the   great hall FROM dusk until the bells rang.",
			want:      models.DisclosedFact{Kind: models.FactKindAlibi, Alibi: &models.AlibiClaim{Person: "mira", Room: "great_hall"}},
			wantOK:    true,
		},
		{
			name:      "sighting with multi-word room",
			speaker:   "Corwin",
			utterance: "Well... I saw Aldric in the Great Hall around midnight.",
			want: models.DisclosedFact{Kind: models.FactKindSighting, Sighting: &models.SightingClaim{
				Observer: "corwin", ObservedPerson: "aldric", Room: "great_hall",
			}},
			wantOK: true,
		},
		{
			name:      "both templates prefer alibi",
			speaker:   "Dagna",
			utterance: "I was in the Shop from 8 to 9. Saw Bryn in the Tavern around 8:30.",
			want:      models.DisclosedFact{Kind: models.FactKindAlibi, Alibi: &models.AlibiClaim{Person: "dagna", Room: "shop"}},
			wantOK:    true,
		},
		{
			name:      "incomplete template",
			speaker:   "Dagna",
			utterance: "I was in the Shop, that is all I will say.",
			wantOK:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := extract.New(testhelpers.DiscardLogger())
			got, ok := e.Extract(context.Background(), tt.speaker, tt.utterance)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_Extract_logsAmbiguity(t *testing.T) {
	var buf bytes.Buffer
	e := extract.New(testhelpers.NewLogger(&buf))
	_, ok := e.Extract(context.Background(), "dagna", "I was in the Shop from 8. Saw Bryn in the Tavern around 8.")
	require.True(t, ok)
	require.Contains(t, buf.String(), "preferring alibi")
}
