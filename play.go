package main

import (
	"time"

	"snake-rl/game"
	"snake-rl/ui"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Snake with the arrow keys",
	Long: `Open a window and play.

Controls:
  Arrows    - Steer (reversing is ignored)
  R         - Restart after game over
  Esc       - Quit`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	g := game.New(cfg.Board, cfg.Rewards, newRNG())
	renderer := ui.NewRenderer(cfg.Board, false)

	w, h := renderer.WindowSize()
	rl.InitWindow(w, h, "Snake")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	updateInterval := time.Second / time.Duration(cfg.Board.HumanSpeed)
	lastUpdate := time.Now()
	var (
		pending    game.Direction
		hasPending bool
		over       bool
	)

	for !rl.WindowShouldClose() {
		if over {
			if rl.IsKeyPressed(rl.KeyR) {
				g.Reset()
				over, hasPending = false, false
				lastUpdate = time.Now()
			}
			renderer.Draw(g.Snapshot(), nil, "Game Over", "R to restart, Esc to quit")
			continue
		}

		if d, ok := ui.ReadDirection(); ok {
			pending, hasPending = d, true
		}

		if time.Since(lastUpdate) >= updateInterval {
			if hasPending {
				g.SetDirection(pending)
				hasPending = false
			}
			res := g.Step()
			lastUpdate = time.Now()
			if res.GameOver {
				over = true
				logger.Info("game over", "score", res.Score, "cause", res.Cause)
			}
		}

		renderer.Draw(g.Snapshot(), nil)
	}
	return nil
}
