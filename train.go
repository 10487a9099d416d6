package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"snake-rl/agent"
	"snake-rl/game"
	"snake-rl/stats"
	"snake-rl/storage"
	"snake-rl/ui"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagEpisodes int
	flagHeadless bool
	flagFresh    bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the deep-Q-learning agent",
	Long: `Let the agent play and learn. Weights are saved every time the session
record improves and are loaded again on the next run.

Every finished game is stored in the history database (see 'snake-rl scores').

Window controls:
  Space     - Toggle fast mode (no frame limit)
  Esc       - Stop training`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Stop after this many games (0 = until interrupted)")
	trainCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Train without opening a window")
	trainCmd.Flags().BoolVar(&flagFresh, "fresh", false, "Ignore saved weights and start from scratch")
}

// storeSink persists finished games under one run id.
type storeSink struct {
	store *storage.Store
	runID string
}

func (s storeSink) Episode(ctx context.Context, r agent.EpisodeResult) error {
	return s.store.RecordEpisode(ctx, storage.Episode{
		RunID:     s.runID,
		Game:      r.Game,
		Score:     r.Score,
		Record:    r.Record,
		MeanScore: r.MeanScore,
		Steps:     r.Steps,
		Cause:     r.Cause.String(),
		Loss:      r.Loss,
	})
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rng := newRNG()
	a := agent.New(cfg.Agent, rng)
	if !flagFresh {
		switch err := a.Network().Load(cfg.Paths.Model); {
		case err == nil:
			logger.Info("resumed from saved weights", "path", cfg.Paths.Model)
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("no saved weights", "path", cfg.Paths.Model)
		default:
			return fmt.Errorf("load weights: %w", err)
		}
	}

	var sink agent.Sink
	store, err := storage.Open(cfg.Paths.DB)
	if err != nil {
		logger.Warn("could not open history database", "error", err)
	} else {
		defer store.Close()
		runID := uuid.New().String()
		run := storage.Run{ID: runID, Seed: flagSeed, Board: boardLabel(cfg.Board)}
		if err := store.StartRun(ctx, run); err != nil {
			logger.Warn("could not record run", "error", err)
		} else {
			sink = storeSink{store: store, runID: runID}
			logger.Info("training run started", "run", runID, "seed", flagSeed)
		}
	}

	g := game.New(cfg.Board, cfg.Rewards, rng)
	tracker := stats.NewTracker()
	trainer := agent.NewTrainer(g, a, tracker, cfg.Paths.Model, sink, logger)

	if flagHeadless {
		err = trainer.Run(ctx, flagEpisodes)
	} else {
		err = trainWindow(ctx, trainer, tracker)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("training stopped",
		"games", tracker.GamesPlayed(),
		"record", trainer.Record(),
		"mean", fmt.Sprintf("%.2f", tracker.Mean()),
		"median", tracker.Median(),
	)
	return err
}

// trainWindow runs the trainer on the window loop: one frame per tick at
// the configured AI speed, or as many as fit in a frame in fast mode.
func trainWindow(ctx context.Context, trainer *agent.Trainer, tracker *stats.Tracker) error {
	renderer := ui.NewRenderer(cfg.Board, true)
	w, h := renderer.WindowSize()
	rl.InitWindow(w, h, "Snake AI - Deep Q-Learning")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	updateInterval := time.Second / time.Duration(cfg.Board.AISpeed)
	lastUpdate := time.Now()
	fast := false
	finished := 0

	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			fast = !fast
		}

		frameBudget := time.Now().Add(time.Second / 60)
		for fast && time.Now().Before(frameBudget) || !fast && time.Since(lastUpdate) >= updateInterval {
			res, err := trainer.Step(ctx)
			if err != nil {
				return err
			}
			lastUpdate = time.Now()
			if res != nil {
				finished++
				if flagEpisodes > 0 && finished >= flagEpisodes {
					return nil
				}
			}
		}

		scores, means := tracker.Scores()
		renderer.Draw(trainer.Game().Snapshot(), &ui.PlotData{
			Scores: scores,
			Means:  means,
			Record: trainer.Record(),
		})
	}
	return nil
}
