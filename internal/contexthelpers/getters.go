package contexthelpers

import (
	"context"
)

// CurrentGameID returns the ID of the game bound to the player's session or an empty string if there is none.
func CurrentGameID(ctx context.Context) string {
	gameID, ok := ctx.Value(currentGameIDContextKey).(string)
	if !ok {
		return ""
	}

	return gameID
}
