package agent

import "snake-rl/game"

// StateSize is the number of features StateOf produces.
const StateSize = 11

// State is the binary encoding of a game position:
//
//	[0..2]  danger straight, right, left (relative to the heading)
//	[3..6]  heading left, right, up, down
//	[7..10] food left, right, above, below the head
type State [StateSize]float64

// Slice returns the features as a fresh slice for the network.
func (s State) Slice() []float64 {
	out := make([]float64, StateSize)
	copy(out, s[:])
	return out
}

// StateOf encodes where a collision would happen one cell away, the
// current heading and where the food lies with respect to the head.
func StateOf(g *game.Game) State {
	head := g.Head()
	dir := g.Direction

	ahead := head.Add(dir.ToPoint())
	right := head.Add(dir.TurnRight().ToPoint())
	left := head.Add(dir.TurnLeft().ToPoint())

	return State{
		b2f(g.IsCollision(ahead)),
		b2f(g.IsCollision(right)),
		b2f(g.IsCollision(left)),

		b2f(dir == game.Left),
		b2f(dir == game.Right),
		b2f(dir == game.Up),
		b2f(dir == game.Down),

		b2f(g.Food.X < head.X),
		b2f(g.Food.X > head.X),
		b2f(g.Food.Y < head.Y),
		b2f(g.Food.Y > head.Y),
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
