package main

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/sqlite"
	"log/slog"
	"os"
	"time"
)

// migratetest synchronizes the schema of a copy of the production database and loads the latest game to check that
// the migrated data is still readable.
func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if sqliteURL, ok = os.LookupEnv("WHODUNIT_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "WHODUNIT_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	var count int
	if err = db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM games`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching game count", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "game count", slog.Int("count", count))

	if count > 0 {
		var latest string
		if err = db.ReadOnly.GetContext(ctx, &latest,
			`SELECT id FROM games ORDER BY created DESC LIMIT 1`); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error fetching latest game", errors.SlogError(err))
			os.Exit(1)
		}
		state, getErr := repositories.NewGameRepository(db, logger).Get(ctx, latest)
		if getErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error loading latest game", errors.SlogError(getErr))
			os.Exit(1)
		}
		if err = state.Scenario.Validate(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "latest game is inconsistent", errors.SlogError(err))
			os.Exit(1)
		}
	}

	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}
