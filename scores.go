package main

import (
	"fmt"

	"snake-rl/storage"

	"github.com/spf13/cobra"
)

var (
	flagRun   string
	flagLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show recorded training runs",
	Long: `Without --run, list every training run with its game count and best score.
With --run, list the games of that run in order.

Examples:
  snake-rl scores
  snake-rl scores --run 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --limit 50`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagRun, "run", "", "Run id to show games for")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum games to show (0 = all)")
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(cfg.Paths.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if flagRun == "" {
		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No training runs recorded yet.")
			return nil
		}
		fmt.Println("Training Runs")
		fmt.Println()
		fmt.Printf("  %-36s  %-16s  %-7s  %-6s  %s\n", "Run", "Started", "Board", "Games", "Record")
		fmt.Printf("  %-36s  %-16s  %-7s  %-6s  %s\n", "---", "-------", "-----", "-----", "------")
		for _, r := range runs {
			fmt.Printf("  %-36s  %-16s  %-7s  %-6d  %d\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Board, r.Episodes, r.Record)
		}
		return nil
	}

	episodes, err := store.Episodes(ctx, flagRun, flagLimit)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		return fmt.Errorf("no games recorded for run %q", flagRun)
	}
	fmt.Printf("Games of run %s\n\n", flagRun)
	fmt.Printf("  %-5s  %-5s  %-6s  %-6s  %-6s  %-10s  %s\n", "Game", "Score", "Record", "Mean", "Steps", "Cause", "Loss")
	fmt.Printf("  %-5s  %-5s  %-6s  %-6s  %-6s  %-10s  %s\n", "----", "-----", "------", "----", "-----", "-----", "----")
	for _, e := range episodes {
		fmt.Printf("  %-5d  %-5d  %-6d  %-6.2f  %-6d  %-10s  %.4f\n",
			e.Game, e.Score, e.Record, e.MeanScore, e.Steps, e.Cause, e.Loss)
	}
	return nil
}
