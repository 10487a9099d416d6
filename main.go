// snake-rl plays Snake by hand or trains a deep-Q-learning agent to play it.
//
// Usage:
//
//	snake-rl play             - Play with the arrow keys
//	snake-rl train            - Train the agent (window, or --headless)
//	snake-rl scores           - Show recorded training runs
//
// Global flags:
//
//	--config <path>     - YAML config (default: search order in package config)
//	--seed <value>      - RNG seed for reproducible runs (0 = time based)
//	--log-level <lvl>   - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"time"

	"snake-rl/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

var (
	flagConfig   string
	flagSeed     int64
	flagLogLevel string

	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake-rl",
	Short: "Snake with a deep-Q-learning agent",
	Long: `snake-rl is a small reinforcement-learning demo: a grid Snake game and
a deep-Q-learning agent that learns to play it.

Examples:
  snake-rl play
  snake-rl train
  snake-rl train --headless --episodes 500 --seed 7
  snake-rl scores`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(scoresCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake-rl",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(level)

	if cfg, err = config.Load(flagConfig); err != nil {
		return err
	}
	if flagSeed == 0 {
		flagSeed = time.Now().UnixNano()
	}
	logger.Debug("configured", "board", boardLabel(cfg.Board), "seed", flagSeed)
	return nil
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(uint64(flagSeed)))
}

func boardLabel(b config.Board) string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}
