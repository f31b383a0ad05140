package play

import (
	"bufio"
	"context"
	"fmt"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/extract"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/random"
	"github.com/myrjola/whodunit/internal/scenario"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Group = &cobra.Group{
	ID:    "game",
	Title: "Game operations",
}

type config struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"WHODUNIT_OPENAI_MODEL" envDefault:"gpt-3.5-turbo-1106"`
	Suspects     int    `env:"WHODUNIT_SUSPECTS" envDefault:"4"`
}

const help = `Commands:
  ask <suspect> <question>  question a suspect
  accuse <suspect>          name the culprit and end the game
  view                      show what you know
  help                      show this help
  quit                      give up`

var Play = &cobra.Command{
	Use:     "play",
	GroupID: "game",
	Short:   "Play a game in the terminal",
	Long:    `Starts a new game and interrogates the suspects with the OpenAI chat completion API.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			cfg config
			ctx = cmd.Context()
		)
		if ctx == nil {
			ctx = context.Background()
		}
		if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
			return errors.Wrap(err, "populate config")
		}
		logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelWarn,
			ReplaceAttr: nil,
		})))
		rnd, err := random.NewRand()
		if err != nil {
			return errors.Wrap(err, "seed random")
		}
		deps := interrogation.Deps{
			Dialogue:  ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger),
			Extractor: extract.New(logger),
			Logger:    logger,
		}
		manager := interrogation.NewManager(scenario.NewGenerator(scenario.DefaultTopology(), rnd, logger), deps, nil)
		g, err := manager.NewGame(ctx, cfg.Suspects)
		if err != nil {
			return errors.Wrap(err, "new game")
		}
		return Loop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), g)
	},
}

// Loop reads commands from in until the game ends, the input runs out, or the player quits.
func Loop(ctx context.Context, in io.Reader, out io.Writer, g *interrogation.GameSession) error {
	p := printer{out: out}
	if intro, err := g.Intro(ctx); err == nil {
		p.println(intro)
	} else {
		p.println("The narrator is lost for words. A body has been found, and the suspects are waiting.")
	}
	p.view(g.View())
	p.println(help)

	scanner := bufio.NewScanner(in)
	for !g.Ended() {
		p.print("> ")
		if !scanner.Scan() {
			break
		}
		command, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch strings.ToLower(command) {
		case "":
		case "ask":
			suspect, question, _ := strings.Cut(strings.TrimSpace(rest), " ")
			if strings.TrimSpace(question) == "" {
				p.println("usage: ask <suspect> <question>")
				continue
			}
			reply, err := g.Ask(ctx, suspect, question)
			if err != nil {
				p.failure(err)
				continue
			}
			p.reply(g.Scenario().Suspects[suspect].Name, reply)
		case "accuse":
			outcome, err := g.Accuse(ctx, strings.TrimSpace(rest))
			if err != nil {
				p.failure(err)
				continue
			}
			p.outcome(g.Scenario().Suspects[outcome.Culprit].Name, outcome)
		case "view":
			p.view(g.View())
		case "help":
			p.println(help)
		case "quit", "exit":
			return p.err
		default:
			p.printf("unknown command %q\n", command)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return p.err
}

// printer remembers the first write error so that the loop can report it once.
type printer struct {
	out io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.out, format, args...); err != nil {
		p.err = errors.Wrap(err, "write output")
	}
}

func (p *printer) print(s string) {
	p.printf("%s", s)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}

func (p *printer) failure(err error) {
	switch {
	case errors.Is(err, interrogation.ErrDialogueUnavailable):
		p.println("could not get a response, try again")
	case errors.Is(err, interrogation.ErrUnknownSuspect):
		p.println("there is no such suspect, see view")
	case errors.Is(err, interrogation.ErrGameEnded):
		p.println("the case is closed")
	default:
		p.printf("error: %v\n", err)
	}
}

func (p *printer) reply(name string, reply interrogation.Reply) {
	p.printf("%s: %s\n", name, reply.Answer)
	if reply.Alibi != nil {
		p.printf("  alibi: %s from %s\n", reply.Alibi.Room.Name, reply.Alibi.Window)
	}
	for _, o := range reply.NewObservations {
		p.printf("  sighting: %s in the %s around %s\n", o.Person, o.Room.Name, o.Window.Start)
	}
	if reply.Notify {
		p.println("You caught someone in a lie!")
	}
}

func (p *printer) outcome(culprit string, outcome interrogation.Outcome) {
	if outcome.Solved {
		p.println("Case solved!")
	} else {
		p.printf("Wrong! The culprit was %s.\n", culprit)
	}
	if outcome.Summary != "" {
		p.println(outcome.Summary)
	}
}

func (p *printer) view(v interrogation.View) {
	p.printf("The %s was found dead in the %s around %s.\n", v.Victim.Profession, v.Victim.Room.Name,
		v.Victim.TimeOfDeath)
	for _, s := range v.Suspects {
		p.printf("  %-10s %s the %s (%s)", s.ID, s.Name, s.Profession, s.State)
		if s.Alibi != nil {
			p.printf(", says they were in the %s", s.Alibi.Room.Name)
		}
		p.println("")
		for _, o := range s.Observations {
			p.printf("    saw %s in the %s around %s\n", o.Person, o.Room.Name, o.Window.Start)
		}
	}
	if v.LiarDetected {
		p.println("Someone is lying.")
	}
}
