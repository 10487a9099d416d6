package agent

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"snake-rl/config"
	"snake-rl/game"
	"snake-rl/stats"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func smallAgentConfig() config.Agent {
	cfg := config.Default().Agent
	cfg.HiddenSize = 16
	cfg.BatchSize = 8
	cfg.MaxMemory = 50
	return cfg
}

func TestActionExploitsOnceEpsilonIsSpent(t *testing.T) {
	a := New(smallAgentConfig(), rand.New(rand.NewSource(1)))
	a.Games = 80

	s := State{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0}
	q, err := a.Network().Predict(s.Slice())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		action, err := a.Action(s)
		require.NoError(t, err)
		require.Equal(t, argmax(q), int(action))
	}
	require.LessOrEqual(t, a.Epsilon, 0)
}

func TestActionExploresEarly(t *testing.T) {
	a := New(smallAgentConfig(), rand.New(rand.NewSource(2)))
	require.Equal(t, 0, a.Games)

	seen := make(map[game.Action]bool)
	for i := 0; i < 200; i++ {
		action, err := a.Action(State{})
		require.NoError(t, err)
		require.GreaterOrEqual(t, int(action), 0)
		require.Less(t, int(action), game.NumActions)
		seen[action] = true
	}
	require.Equal(t, 80, a.Epsilon)
	require.Len(t, seen, game.NumActions)
}

func TestRememberAndLongMemory(t *testing.T) {
	a := New(smallAgentConfig(), rand.New(rand.NewSource(3)))

	loss, err := a.TrainLongMemory()
	require.NoError(t, err)
	require.Zero(t, loss)

	for i := 0; i < 60; i++ {
		a.Remember(NewTransition(State{1}, game.TurnRight, 1, State{0, 1}, i%10 == 0))
	}
	require.Equal(t, 50, a.MemoryLen())

	_, err = a.TrainLongMemory()
	require.NoError(t, err)
}

func argmax(q []float64) int {
	best := 0
	for i := range q {
		if q[i] > q[best] {
			best = i
		}
	}
	return best
}

type recordingSink struct {
	results []EpisodeResult
	err     error
}

func (s *recordingSink) Episode(_ context.Context, r EpisodeResult) error {
	s.results = append(s.results, r)
	return s.err
}

func newTestTrainer(t *testing.T, sink Sink, modelPath string) *Trainer {
	t.Helper()
	cfg := config.Default()
	cfg.Board.Width, cfg.Board.Height = 8, 6
	cfg.Board.StallFactor = 5
	cfg.Agent = smallAgentConfig()
	rng := rand.New(rand.NewSource(4))

	g := game.New(cfg.Board, cfg.Rewards, rng)
	a := New(cfg.Agent, rng)
	return NewTrainer(g, a, stats.NewTracker(), modelPath, sink, log.New(io.Discard))
}

func TestTrainerRunsEpisodes(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	modelPath := filepath.Join(t.TempDir(), "model", "model.gob")
	tr := newTestTrainer(t, sink, modelPath)

	require.NoError(t, tr.Run(context.Background(), 5))
	require.Len(t, sink.results, 5)

	for i, r := range sink.results {
		require.Equal(t, i+1, r.Game)
		require.Positive(t, r.Steps)
		require.NotEqual(t, game.NoCollision, r.Cause)
		require.GreaterOrEqual(t, r.Record, r.Score)
	}
	require.Equal(t, 5, tr.agent.Games)
	require.Equal(t, 5, tr.stats.GamesPlayed())

	// the game is reset after each episode
	require.Len(t, tr.Game().Snake, 3)
	require.Zero(t, tr.Game().Score)
}

func TestTrainerSavesModelOnNewRecord(t *testing.T) {
	sink := &recordingSink{}
	modelPath := filepath.Join(t.TempDir(), "model", "model.gob")
	tr := newTestTrainer(t, sink, modelPath)
	ctx := context.Background()

	_, err := os.Stat(modelPath)
	require.ErrorIs(t, err, os.ErrNotExist)

	res, err := tr.finishEpisode(ctx, game.StepResult{Score: 1, GameOver: true, Cause: game.WallCollision})
	require.NoError(t, err)
	require.True(t, res.NewRecord)
	require.Equal(t, 1, res.Record)
	require.Equal(t, 1, tr.Record())

	info, err := os.Stat(modelPath)
	require.NoError(t, err)
	savedAt := info.ModTime()

	loaded := New(smallAgentConfig(), rand.New(rand.NewSource(5)))
	require.NoError(t, loaded.Network().Load(modelPath))
	s := State{0, 1, 0, 1, 0, 0, 0, 0, 0, 1, 1}
	want, err := tr.agent.Network().Predict(s.Slice())
	require.NoError(t, err)
	got, err := loaded.Network().Predict(s.Slice())
	require.NoError(t, err)
	require.InDeltaSlice(t, want, got, 1e-12)

	// equalling the record is not a new record
	res, err = tr.finishEpisode(ctx, game.StepResult{Score: 1, GameOver: true, Cause: game.SelfCollision})
	require.NoError(t, err)
	require.False(t, res.NewRecord)
	require.Equal(t, 1, res.Record)
	info, err = os.Stat(modelPath)
	require.NoError(t, err)
	require.Equal(t, savedAt, info.ModTime())

	require.Len(t, sink.results, 2)
	require.Equal(t, 2, tr.agent.Games)
}

func TestTrainerStopsOnCancel(t *testing.T) {
	tr := newTestTrainer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, tr.Run(ctx, 0), context.Canceled)
}
