package contexthelpers

import (
	"context"
	"net/http"
)

func SetCurrentGameID(r *http.Request, gameID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, currentGameIDContextKey, gameID)
	return r.WithContext(ctx)
}
