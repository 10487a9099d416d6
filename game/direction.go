package game

// Direction is a cardinal heading. The values run clockwise.
type Direction int

const (
	Right Direction = iota
	Down
	Left
	Up
)

var clockWise = [...]Direction{Right, Down, Left, Up}

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// ToPoint returns the one-cell offset of a move in direction d.
func (d Direction) ToPoint() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{}
	}
}

// TurnRight rotates clockwise.
func (d Direction) TurnRight() Direction {
	return clockWise[(int(d)+1)%len(clockWise)]
}

// TurnLeft rotates counter-clockwise.
func (d Direction) TurnLeft() Direction {
	return clockWise[(int(d)+len(clockWise)-1)%len(clockWise)]
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return clockWise[(int(d)+2)%len(clockWise)]
}

// Action is a move relative to the current heading.
type Action int

const (
	Straight Action = iota
	TurnRight
	TurnLeft
)

// NumActions is the width of the one-hot action vector.
const NumActions = 3

// Apply returns the heading after taking the action.
func (a Action) Apply(d Direction) Direction {
	switch a {
	case TurnRight:
		return d.TurnRight()
	case TurnLeft:
		return d.TurnLeft()
	default:
		return d
	}
}

// OneHot encodes the action as [straight, right, left].
func (a Action) OneHot() [NumActions]float64 {
	var v [NumActions]float64
	if a >= Straight && a <= TurnLeft {
		v[a] = 1
	}
	return v
}

// ActionFromOneHot decodes a one-hot vector. Anything that is not
// [1,0,0] or [0,1,0] is a left turn.
func ActionFromOneHot(v []float64) Action {
	switch {
	case len(v) == NumActions && v[0] == 1 && v[1] == 0 && v[2] == 0:
		return Straight
	case len(v) == NumActions && v[0] == 0 && v[1] == 1 && v[2] == 0:
		return TurnRight
	default:
		return TurnLeft
	}
}
