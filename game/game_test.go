package game

import (
	"testing"

	"snake-rl/config"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newTestGame(t *testing.T, seed uint64) *Game {
	t.Helper()
	cfg := config.Default()
	return New(cfg.Board, cfg.Rewards, rand.New(rand.NewSource(seed)))
}

func TestResetLayout(t *testing.T) {
	g := newTestGame(t, 1)

	require.Equal(t, Right, g.Direction)
	require.Equal(t, []Point{{16, 12}, {15, 12}, {14, 12}}, g.Snake)
	require.Equal(t, g.Snake[0], g.Head())
	require.Zero(t, g.Score)
	require.Zero(t, g.FrameIteration)
	require.NotContains(t, g.Snake, g.Food)
}

func TestDeterminism(t *testing.T) {
	g1 := newTestGame(t, 42)
	g2 := newTestGame(t, 42)

	actions := []Action{Straight, TurnRight, Straight, TurnLeft, TurnLeft, Straight}
	for i := 0; i < 30; i++ {
		a := actions[i%len(actions)]
		r1 := g1.PlayStep(a)
		r2 := g2.PlayStep(a)
		require.Equal(t, r1, r2)
		if r1.GameOver {
			break
		}
	}
	require.Equal(t, g1.Snapshot(), g2.Snapshot())
}

func TestPlayStepTurns(t *testing.T) {
	g := newTestGame(t, 3)
	g.Food = Point{X: 0, Y: 0}

	res := g.PlayStep(TurnRight)
	require.False(t, res.GameOver)
	require.Equal(t, Down, g.Direction)
	require.Equal(t, Point{16, 13}, g.Head())

	res = g.PlayStep(TurnLeft)
	require.False(t, res.GameOver)
	require.Equal(t, Right, g.Direction)
	require.Equal(t, Point{17, 13}, g.Head())

	g.PlayStep(Straight)
	require.Equal(t, Point{18, 13}, g.Head())
	require.Len(t, g.Snake, 3)
	require.Equal(t, 3, g.FrameIteration)
}

func TestEatingGrowsAndRewards(t *testing.T) {
	g := newTestGame(t, 4)
	g.Food = Point{X: 17, Y: 12}

	res := g.PlayStep(Straight)
	require.Equal(t, StepResult{Reward: 10, Score: 1}, res)
	require.Len(t, g.Snake, 4)
	require.Equal(t, Point{17, 12}, g.Head())
	require.NotContains(t, g.Snake, g.Food)
}

func TestWallCollision(t *testing.T) {
	g := newTestGame(t, 5)
	g.Food = Point{X: 0, Y: 0}

	var res StepResult
	for i := 0; i < g.Width; i++ {
		res = g.PlayStep(Straight)
		if res.GameOver {
			break
		}
	}
	require.True(t, res.GameOver)
	require.Equal(t, WallCollision, res.Cause)
	require.Equal(t, -10.0, res.Reward)
	require.Equal(t, Point{g.Width, 12}, g.Head())
}

func TestSelfCollision(t *testing.T) {
	g := newTestGame(t, 6)
	g.Snake = []Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {6, 4}}
	g.Direction = Up
	g.Food = Point{X: 0, Y: 0}

	// heading up, a right turn moves into (6,5)
	res := g.PlayStep(TurnRight)
	require.True(t, res.GameOver)
	require.Equal(t, SelfCollision, res.Cause)
}

func TestMovingIntoLeavingTailCollides(t *testing.T) {
	g := newTestGame(t, 7)
	g.Snake = []Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}}
	g.Direction = Up
	g.Food = Point{X: 0, Y: 0}

	res := g.PlayStep(TurnRight)
	require.True(t, res.GameOver)
	require.Equal(t, SelfCollision, res.Cause)
}

func TestStallTimeout(t *testing.T) {
	g := newTestGame(t, 8)
	g.Snake = []Point{{5, 5}, {4, 5}, {4, 6}, {5, 6}}
	g.Direction = Up
	g.Food = Point{X: 0, Y: 0}
	// the limit counts the body with the new head: 5 cells
	g.FrameIteration = g.stallFactor * (len(g.Snake) + 1)

	res := g.PlayStep(Straight)
	require.True(t, res.GameOver)
	require.Equal(t, StallTimeout, res.Cause)
	require.Equal(t, -10.0, res.Reward)
}

func TestStallLimitIncludesNewHead(t *testing.T) {
	g := newTestGame(t, 8)
	g.Snake = []Point{{5, 5}, {4, 5}, {4, 6}, {5, 6}}
	g.Direction = Up
	g.Food = Point{X: 0, Y: 0}
	g.FrameIteration = g.stallFactor * len(g.Snake)

	res := g.PlayStep(Straight)
	require.False(t, res.GameOver)
	require.Equal(t, g.stallFactor*4+1, g.FrameIteration)
	require.Len(t, g.Snake, 4)
}

func TestStallBeforeEating(t *testing.T) {
	g := newTestGame(t, 8)
	g.Snake = []Point{{5, 5}, {4, 5}, {4, 6}, {5, 6}}
	g.Direction = Up
	g.Food = Point{X: 5, Y: 4}
	g.FrameIteration = g.stallFactor * 6

	res := g.PlayStep(Straight)
	require.True(t, res.GameOver)
	require.Equal(t, StallTimeout, res.Cause)
	require.Equal(t, -10.0, res.Reward)
	require.Zero(t, res.Score)
	require.Zero(t, g.Score)
	require.Equal(t, Point{X: 5, Y: 4}, g.Food)
}

func TestIsCollisionChecksGivenPoint(t *testing.T) {
	g := newTestGame(t, 9)

	require.True(t, g.IsCollision(Point{X: -1, Y: 0}))
	require.True(t, g.IsCollision(Point{X: 0, Y: g.Height}))
	require.True(t, g.IsCollision(g.Snake[1]))
	require.False(t, g.IsCollision(g.Head()))
	require.False(t, g.IsCollision(Point{X: 0, Y: 0}))
}

func TestSetDirectionRejectsReversal(t *testing.T) {
	g := newTestGame(t, 10)

	g.SetDirection(Left)
	require.Equal(t, Right, g.Direction)

	g.SetDirection(Up)
	require.Equal(t, Up, g.Direction)

	g.SetDirection(Down)
	require.Equal(t, Up, g.Direction)
}

func TestHumanStepHasNoStall(t *testing.T) {
	g := newTestGame(t, 11)
	g.Food = Point{X: 0, Y: 0}

	res := g.Step()
	require.False(t, res.GameOver)
	require.Zero(t, g.FrameIteration)
	require.Equal(t, Point{17, 12}, g.Head())
}

func TestFoodNeverOnBody(t *testing.T) {
	cfg := config.Default()
	cfg.Board.Width, cfg.Board.Height = 4, 2
	g := New(cfg.Board, cfg.Rewards, rand.New(rand.NewSource(12)))

	for i := 0; i < 200; i++ {
		g.Reset()
		require.NotContains(t, g.Snake, g.Food)
	}
}

func TestBoardFullEndsGame(t *testing.T) {
	cfg := config.Default()
	cfg.Board.Width, cfg.Board.Height = 4, 2
	g := New(cfg.Board, cfg.Rewards, rand.New(rand.NewSource(13)))
	g.Snake = []Point{{3, 1}, {2, 1}, {1, 1}, {0, 1}, {0, 0}, {1, 0}, {2, 0}}
	g.Direction = Up
	g.Food = Point{X: 3, Y: 0}

	res := g.PlayStep(Straight)
	require.True(t, res.GameOver)
	require.Equal(t, BoardFull, res.Cause)
	require.Equal(t, 1, res.Score)
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	g := newTestGame(t, 14)
	snap := g.Snapshot()
	snap.Snake[0] = Point{X: -5, Y: -5}
	require.NotEqual(t, snap.Snake[0], g.Head())
}
