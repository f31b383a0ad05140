package main

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

type client struct {
	baseURL string
	http    *http.Client
}

// call sends a JSON request and fails on any status other than want.
func (c *client) call(ctx context.Context, method, path string, body any, want int) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "marshal body")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request", slog.String("path", path))
	}
	if err = resp.Body.Close(); err != nil {
		return errors.Wrap(err, "close response body")
	}
	if resp.StatusCode != want {
		return errors.New("unexpected status", slog.String("path", path), slog.Int("status", resp.StatusCode),
			slog.Int("want", want))
	}
	return nil
}

// TestGame starts a game and reads it back through the session cookie. The game is not played so that the smoke
// test does not spend chat completions beyond the introduction.
func TestGame(c *client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second) //nolint:mnd // the introduction is a chat completion
	defer cancel()

	if err := c.call(ctx, http.MethodGet, "/api/healthy", nil, http.StatusOK); err != nil {
		return errors.Wrap(err, "health check")
	}
	if err := c.call(ctx, http.MethodPost, "/api/games", map[string]int{"suspects": 2}, http.StatusCreated); err != nil {
		return errors.Wrap(err, "create game")
	}
	if err := c.call(ctx, http.MethodGet, "/api/games/current", nil, http.StatusOK); err != nil {
		return errors.Wrap(err, "get current game")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating cookie jar", errors.SlogError(err))
		os.Exit(1)
	}
	c := &client{baseURL: url, http: &http.Client{Jar: jar}}
	if err = TestGame(c); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
