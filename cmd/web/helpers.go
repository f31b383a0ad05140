package main

import (
	"encoding/json"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/scenario"
	"log/slog"
	"net/http"
)

// maxBodyBytes limits the size of JSON request bodies.
const maxBodyBytes = 1 << 16

const retryMessage = "could not get a response, try again"

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	message := http.StatusText(status)
	if status == http.StatusServiceUnavailable {
		message = retryMessage
	}
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

// gameError maps the errors of a game operation to a response.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interrogation.ErrDialogueUnavailable):
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "dialogue unavailable", errors.SlogError(err))
		app.clientError(w, r, http.StatusServiceUnavailable, err)
	case errors.Is(err, interrogation.ErrUnknownSuspect), errors.Is(err, interrogation.ErrGameNotFound):
		app.clientError(w, r, http.StatusNotFound, err)
	case errors.Is(err, interrogation.ErrGameEnded):
		app.clientError(w, r, http.StatusConflict, err)
	case errors.Is(err, scenario.ErrTooFewSuspects), errors.Is(err, scenario.ErrTooFewNames),
		errors.Is(err, scenario.ErrRoomPoolTooSmall):
		app.clientError(w, r, http.StatusBadRequest, err)
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		err = errors.Wrap(err, "marshal response")
		app.logger.LogAttrs(r.Context(), slog.LevelError, "could not write response", errors.SlogError(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "could not write response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v. An empty body leaves v untouched.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
