package gen_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/myrjola/whodunit/cmd/cli/gen"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	gen.Generate.SetOut(&out)
	gen.Generate.SetErr(&out)
	gen.Generate.SetArgs(args)
	err := gen.Generate.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	out, err := generate(t, "--seed", "42", "--suspects", "3")
	require.NoError(t, err)

	var sc models.Scenario
	require.NoError(t, json.Unmarshal([]byte(out), &sc))
	assert.Len(t, sc.Suspects, 3)
	require.NoError(t, sc.Validate())

	again, err := generate(t, "--seed", "42", "--suspects", "3")
	require.NoError(t, err)
	assert.Equal(t, out, again, "the same seed must give the same scenario")
}

func TestGenerate_tooFewSuspects(t *testing.T) {
	_, err := generate(t, "--seed", "1", "--suspects", "1")
	require.Error(t, err)
}
