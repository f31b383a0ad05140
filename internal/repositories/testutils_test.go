package repositories_test

import (
	"context"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/random"
	"github.com/myrjola/whodunit/internal/scenario"
	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"testing"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func newTestScenario(t *testing.T) *models.Scenario {
	t.Helper()
	generator := scenario.NewGenerator(scenario.DefaultTopology(), random.NewSeededRand(7, 11),
		testhelpers.DiscardLogger())
	sc, err := generator.Generate(scenario.DefaultSuspectCount)
	require.NoError(t, err)
	return sc
}
