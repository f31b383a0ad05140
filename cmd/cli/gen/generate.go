package gen

import (
	"encoding/json"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/random"
	"github.com/myrjola/whodunit/internal/scenario"
	"github.com/spf13/cobra"
	"log/slog"
	"math/rand/v2"
)

var Group = &cobra.Group{
	ID:    "scenario",
	Title: "Scenario operations",
}

func init() {
	Generate.Flags().Uint64("seed", 0, "seed for a reproducible scenario, random when not set")
	Generate.Flags().Int("suspects", scenario.DefaultSuspectCount, "number of suspects")
}

var Generate = &cobra.Command{
	Use:     "generate",
	GroupID: "scenario",
	Short:   "Generate scenario",
	Long:    `Generates a murder mystery scenario and prints it as JSON. The output reveals the culprit.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelWarn,
			ReplaceAttr: nil,
		}))
		suspects, err := cmd.Flags().GetInt("suspects")
		if err != nil {
			return errors.Wrap(err, "invalid suspects flag")
		}

		var rnd *rand.Rand
		if cmd.Flags().Changed("seed") {
			var seed uint64
			if seed, err = cmd.Flags().GetUint64("seed"); err != nil {
				return errors.Wrap(err, "invalid seed flag")
			}
			rnd = random.NewSeededRand(seed, seed)
		} else if rnd, err = random.NewRand(); err != nil {
			return errors.Wrap(err, "seed random")
		}

		sc, err := scenario.NewGenerator(scenario.DefaultTopology(), rnd, logger).Generate(suspects)
		if err != nil {
			return errors.Wrap(err, "generate scenario", slog.Int("suspects", suspects))
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(sc); err != nil {
			return errors.Wrap(err, "encode scenario")
		}
		return nil
	},
}
