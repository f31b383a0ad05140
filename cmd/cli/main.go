package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/cmd/cli/gen"
	"github.com/myrjola/whodunit/cmd/cli/play"
	"github.com/spf13/cobra"
	"os"
)

func init() {
	// A missing .env file is fine, the environment may come from elsewhere.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(gen.Group)
	rootCmd.AddCommand(gen.Generate)
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Play)
}

var rootCmd = &cobra.Command{
	Use:  "whodunit-cli",
	Long: `Command line utilities for Whodunit, a murder mystery where the suspects talk back.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
