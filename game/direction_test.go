package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTurnsFollowClockwiseOrder(t *testing.T) {
	require.Equal(t, Down, Right.TurnRight())
	require.Equal(t, Left, Down.TurnRight())
	require.Equal(t, Up, Left.TurnRight())
	require.Equal(t, Right, Up.TurnRight())

	require.Equal(t, Up, Right.TurnLeft())
	require.Equal(t, Left, Up.TurnLeft())
	require.Equal(t, Down, Left.TurnLeft())
	require.Equal(t, Right, Down.TurnLeft())
}

func TestOpposite(t *testing.T) {
	for _, d := range clockWise {
		require.Equal(t, d, d.Opposite().Opposite())
		require.Equal(t, Point{}, d.ToPoint().Add(d.Opposite().ToPoint()))
	}
}

func TestActionOneHot(t *testing.T) {
	require.Equal(t, [NumActions]float64{1, 0, 0}, Straight.OneHot())
	require.Equal(t, [NumActions]float64{0, 1, 0}, TurnRight.OneHot())
	require.Equal(t, [NumActions]float64{0, 0, 1}, TurnLeft.OneHot())

	require.Equal(t, Straight, ActionFromOneHot([]float64{1, 0, 0}))
	require.Equal(t, TurnRight, ActionFromOneHot([]float64{0, 1, 0}))
	require.Equal(t, TurnLeft, ActionFromOneHot([]float64{0, 0, 1}))
	require.Equal(t, TurnLeft, ActionFromOneHot([]float64{1, 1, 0}))
}
