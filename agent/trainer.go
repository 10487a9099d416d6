package agent

import (
	"context"
	"fmt"

	"snake-rl/game"
	"snake-rl/stats"

	"github.com/charmbracelet/log"
)

// EpisodeResult describes a finished game.
type EpisodeResult struct {
	Game      int
	Score     int
	Record    int
	NewRecord bool
	MeanScore float64
	Steps     int
	Cause     game.CollisionType
	Loss      float64
}

// Sink receives every finished game, e.g. to persist it.
type Sink interface {
	Episode(ctx context.Context, r EpisodeResult) error
}

// Trainer runs the training loop. One call to Step plays one frame.
type Trainer struct {
	game      *game.Game
	agent     *Agent
	stats     *stats.Tracker
	sink      Sink
	logger    *log.Logger
	modelPath string

	record int
	steps  int
}

// NewTrainer wires a game and an agent together. sink may be nil.
func NewTrainer(g *game.Game, a *Agent, tracker *stats.Tracker, modelPath string, sink Sink, logger *log.Logger) *Trainer {
	return &Trainer{
		game:      g,
		agent:     a,
		stats:     tracker,
		sink:      sink,
		logger:    logger,
		modelPath: modelPath,
	}
}

// Game returns the game being played.
func (t *Trainer) Game() *game.Game {
	return t.game
}

// Record is the best score of this training session.
func (t *Trainer) Record() int {
	return t.record
}

// Step plays one frame: encode, act, observe, train on the step and
// remember it. It returns a result only when the frame ended a game.
func (t *Trainer) Step(ctx context.Context) (*EpisodeResult, error) {
	old := StateOf(t.game)
	action, err := t.agent.Action(old)
	if err != nil {
		return nil, err
	}

	res := t.game.PlayStep(action)
	t.steps++
	next := StateOf(t.game)

	tr := NewTransition(old, action, res.Reward, next, res.GameOver)
	if _, err := t.agent.TrainShortMemory(tr); err != nil {
		return nil, fmt.Errorf("agent: short memory: %w", err)
	}
	t.agent.Remember(tr)

	if !res.GameOver {
		return nil, nil
	}
	return t.finishEpisode(ctx, res)
}

func (t *Trainer) finishEpisode(ctx context.Context, res game.StepResult) (*EpisodeResult, error) {
	t.game.Reset()
	t.agent.Games++

	loss, err := t.agent.TrainLongMemory()
	if err != nil {
		return nil, fmt.Errorf("agent: long memory: %w", err)
	}

	result := &EpisodeResult{
		Game:  t.agent.Games,
		Score: res.Score,
		Steps: t.steps,
		Cause: res.Cause,
		Loss:  loss,
	}
	t.steps = 0

	if res.Score > t.record {
		t.record = res.Score
		result.NewRecord = true
		if t.modelPath != "" {
			if err := t.agent.Network().Save(t.modelPath); err != nil {
				t.logger.Warn("could not save model", "path", t.modelPath, "error", err)
			} else {
				t.logger.Debug("model saved", "path", t.modelPath, "record", t.record)
			}
		}
	}
	result.Record = t.record
	result.MeanScore = t.stats.Add(res.Score)

	t.logger.Info("game over",
		"game", result.Game,
		"score", result.Score,
		"record", result.Record,
		"mean", fmt.Sprintf("%.2f", result.MeanScore),
		"cause", result.Cause,
		"epsilon", t.agent.Epsilon,
	)

	if t.sink != nil {
		if err := t.sink.Episode(ctx, *result); err != nil {
			t.logger.Warn("could not record episode", "game", result.Game, "error", err)
		}
	}
	return result, nil
}

// Run plays until episodes games have finished (0 means forever) or ctx is
// cancelled.
func (t *Trainer) Run(ctx context.Context, episodes int) error {
	finished := 0
	for episodes <= 0 || finished < episodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := t.Step(ctx)
		if err != nil {
			return err
		}
		if res != nil {
			finished++
		}
	}
	return nil
}
