package main

import (
	"github.com/justinas/alice"
	"net/http"
	"time"
)

func (app *application) routes(timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, app.loadCurrentGame)

	mux.Handle("POST /api/games", session.ThenFunc(app.createGame))
	mux.Handle("GET /api/games/current", session.ThenFunc(app.currentGame))
	mux.Handle("POST /api/games/current/suspects/{suspectID}/questions", session.ThenFunc(app.askQuestion))
	mux.Handle("POST /api/games/current/accusation", session.ThenFunc(app.accuse))

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	return common.Then(timeoutHandler(mux, timeout))
}
