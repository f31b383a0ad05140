package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/extract"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/pprofserver"
	"github.com/myrjola/whodunit/internal/random"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/scenario"
	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"os"
	"time"
)

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"WHODUNIT_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL     string `env:"WHODUNIT_SQLITE_URL" envDefault:"./whodunit.sqlite3"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel   string `env:"WHODUNIT_OPENAI_MODEL" envDefault:"gpt-3.5-turbo-1106"`
	OpenAIBaseURL string `env:"WHODUNIT_OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	// PprofAddr enables the pprof server when set. Use a loopback address such as localhost:6060.
	PprofAddr string `env:"WHODUNIT_PPROF_ADDR" envDefault:""`
	// Suspects is the number of suspects in a new game unless the player asks for another count.
	Suspects int `env:"WHODUNIT_SUSPECTS" envDefault:"4"`
}

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	games          *interrogation.Manager
	suspects       int
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	go db.StartDatabaseOptimizer(ctx, time.Hour)

	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // once a day
	defer store.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day
	sessionManager.Cookie.Secure = true

	rnd, err := random.NewRand()
	if err != nil {
		return errors.Wrap(err, "seed random")
	}

	openAIConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	openAIConfig.BaseURL = cfg.OpenAIBaseURL
	deps := interrogation.Deps{
		Dialogue:  ai.NewClientWithConfig(openAIConfig, cfg.OpenAIModel, logger),
		Extractor: extract.New(logger),
		Logger:    logger,
	}
	generator := scenario.NewGenerator(scenario.DefaultTopology(), rnd, logger)
	repo := repositories.NewGameRepository(db, logger)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		games:          interrogation.NewManager(generator, deps, repo),
		suspects:       cfg.Suspects,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A missing .env file is fine, the environment may come from elsewhere.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
