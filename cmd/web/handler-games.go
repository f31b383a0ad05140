package main

import (
	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"log/slog"
	"net/http"
	"strings"
)

type createGameRequest struct {
	Suspects int `json:"suspects"`
}

type createGameResponse struct {
	Intro string             `json:"intro"`
	Game  interrogation.View `json:"game"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type accusationRequest struct {
	Suspect string `json:"suspect"`
}

// createGame starts a new game and makes it the current game of the player's session.
func (app *application) createGame(w http.ResponseWriter, r *http.Request) {
	var (
		req = createGameRequest{Suspects: app.suspects}
		ctx = r.Context()
		err error
	)
	if err = readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}

	var g *interrogation.GameSession
	if g, err = app.games.NewGame(ctx, req.Suspects); err != nil {
		app.gameError(w, r, errors.Wrap(err, "new game", slog.Int("suspects", req.Suspects)))
		return
	}

	// The game is playable without the introduction.
	intro, err := g.Intro(ctx)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "could not narrate introduction", errors.SlogError(err))
	}

	if err = app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(ctx, string(currentGameIDSessionKey), g.ID())

	app.writeJSON(w, r, http.StatusCreated, createGameResponse{Intro: intro, Game: g.View()})
}

func (app *application) currentGame(w http.ResponseWriter, r *http.Request) {
	g, err := app.currentGameSession(r)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, g.View())
}

func (app *application) askQuestion(w http.ResponseWriter, r *http.Request) {
	var (
		req       questionRequest
		suspectID = r.PathValue("suspectID")
		err       error
	)
	if err = readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		app.clientError(w, r, http.StatusBadRequest, errors.New("empty question"))
		return
	}
	g, err := app.currentGameSession(r)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	reply, err := g.Ask(r.Context(), suspectID, req.Question)
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "ask", slog.String("suspect", suspectID)))
		return
	}
	app.writeJSON(w, r, http.StatusOK, reply)
}

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	var (
		req accusationRequest
		err error
	)
	if err = readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	g, err := app.currentGameSession(r)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	outcome, err := g.Accuse(r.Context(), req.Suspect)
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "accuse", slog.String("suspect", req.Suspect)))
		return
	}
	app.writeJSON(w, r, http.StatusOK, outcome)
}

func (app *application) currentGameSession(r *http.Request) (*interrogation.GameSession, error) {
	gameID := contexthelpers.CurrentGameID(r.Context())
	if gameID == "" {
		return nil, errors.Wrap(interrogation.ErrGameNotFound, "no current game")
	}
	g, err := app.games.Game(r.Context(), gameID)
	if err != nil {
		return nil, errors.Wrap(err, "current game")
	}
	return g, nil
}
