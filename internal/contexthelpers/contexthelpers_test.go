package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/stretchr/testify/assert"
)

func TestContextHelpers(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/games/current", nil)
	assert.Empty(t, contexthelpers.CurrentGameID(r.Context()))

	r = contexthelpers.SetCurrentGameID(r, "game")
	assert.Equal(t, "game", contexthelpers.CurrentGameID(r.Context()))
}
