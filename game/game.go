package game

import (
	"snake-rl/config"

	"golang.org/x/exp/rand"
)

// Point is a cell on the grid; (0,0) is the top-left corner.
type Point struct {
	X, Y int
}

// Add returns p moved by delta.
func (p Point) Add(delta Point) Point {
	return Point{X: p.X + delta.X, Y: p.Y + delta.Y}
}

// CollisionType represents the reason a game ended.
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
	StallTimeout
	BoardFull
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	case StallTimeout:
		return "stall"
	case BoardFull:
		return "board_full"
	default:
		return "none"
	}
}

// StepResult is what a tick hands back to the caller.
type StepResult struct {
	Reward   float64
	GameOver bool
	Score    int
	Cause    CollisionType
}

// Game is a single snake on a fixed grid. The head is always Snake[0].
type Game struct {
	Width          int
	Height         int
	Snake          []Point
	Direction      Direction
	Food           Point
	Score          int
	FrameIteration int

	stallFactor int
	rewards     config.Rewards
	rng         *rand.Rand
}

// New creates a game already reset to its starting position.
func New(board config.Board, rewards config.Rewards, rng *rand.Rand) *Game {
	g := &Game{
		Width:       board.Width,
		Height:      board.Height,
		stallFactor: board.StallFactor,
		rewards:     rewards,
		rng:         rng,
	}
	g.Reset()
	return g
}

// Reset puts the snake back in the middle of the board, heading right.
func (g *Game) Reset() {
	g.Direction = Right
	head := Point{X: g.Width / 2, Y: g.Height / 2}
	g.Snake = []Point{
		head,
		{X: head.X - 1, Y: head.Y},
		{X: head.X - 2, Y: head.Y},
	}
	g.Score = 0
	g.FrameIteration = 0
	g.placeFood()
}

// Head returns the first body segment.
func (g *Game) Head() Point {
	return g.Snake[0]
}

func (g *Game) placeFood() bool {
	if len(g.Snake) >= g.Width*g.Height {
		return false
	}
	for {
		food := Point{
			X: g.rng.Intn(g.Width),
			Y: g.rng.Intn(g.Height),
		}
		if !g.onBody(food, 0) {
			g.Food = food
			return true
		}
	}
}

func (g *Game) onBody(p Point, from int) bool {
	for _, part := range g.Snake[from:] {
		if part == p {
			return true
		}
	}
	return false
}

func (g *Game) outside(p Point) bool {
	return p.X < 0 || p.X >= g.Width || p.Y < 0 || p.Y >= g.Height
}

// IsCollision reports whether p is outside the grid or on the body
// behind the head.
func (g *Game) IsCollision(p Point) bool {
	return g.collisionAt(p) != NoCollision
}

func (g *Game) collisionAt(p Point) CollisionType {
	if g.outside(p) {
		return WallCollision
	}
	if g.onBody(p, 1) {
		return SelfCollision
	}
	return NoCollision
}

// SetDirection steers the snake for human play. A direct reversal is ignored.
func (g *Game) SetDirection(d Direction) {
	if d == g.Direction.Opposite() {
		return
	}
	g.Direction = d
}

// Step advances a human-controlled game by one tick in the current direction.
func (g *Game) Step() StepResult {
	return g.advance(false)
}

// PlayStep advances an agent-controlled game by one tick. The action is
// relative to the current heading.
func (g *Game) PlayStep(a Action) StepResult {
	g.FrameIteration++
	g.Direction = a.Apply(g.Direction)
	return g.advance(true)
}

// advance moves the head one cell. The stall limit is measured against the
// body with the new head already in place, before food or tail are handled.
func (g *Game) advance(stall bool) StepResult {
	newHead := g.Head().Add(g.Direction.ToPoint())
	g.Snake = append([]Point{newHead}, g.Snake...)

	cause := g.collisionAt(newHead)
	if cause == NoCollision && stall && g.FrameIteration > g.stallFactor*len(g.Snake) {
		cause = StallTimeout
	}
	if cause != NoCollision {
		return StepResult{Reward: g.rewards.Death, GameOver: true, Score: g.Score, Cause: cause}
	}

	if newHead == g.Food {
		g.Score++
		if !g.placeFood() {
			return StepResult{Reward: g.rewards.Food, GameOver: true, Score: g.Score, Cause: BoardFull}
		}
		return StepResult{Reward: g.rewards.Food, Score: g.Score}
	}

	g.Snake = g.Snake[:len(g.Snake)-1]
	return StepResult{Score: g.Score}
}

// Snapshot is a copy of the drawable state.
type Snapshot struct {
	Width     int
	Height    int
	Snake     []Point
	Food      Point
	Direction Direction
	Score     int
}

// Snapshot copies the state so the renderer never aliases the body slice.
func (g *Game) Snapshot() Snapshot {
	body := make([]Point, len(g.Snake))
	copy(body, g.Snake)
	return Snapshot{
		Width:     g.Width,
		Height:    g.Height,
		Snake:     body,
		Food:      g.Food,
		Direction: g.Direction,
		Score:     g.Score,
	}
}
