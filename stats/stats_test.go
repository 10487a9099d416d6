package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerMeanAndRecord(t *testing.T) {
	tr := NewTracker()
	require.Zero(t, tr.Mean())
	require.Zero(t, tr.Median())

	require.Equal(t, 2.0, tr.Add(2))
	require.Equal(t, 1.0, tr.Add(0))
	require.Equal(t, 3.0, tr.Add(7))

	scores, means := tr.Scores()
	require.Equal(t, []int{2, 0, 7}, scores)
	require.Equal(t, []float64{2, 1, 3}, means)
	require.Equal(t, 7, tr.Record())
	require.Equal(t, 3, tr.GamesPlayed())
	require.Equal(t, 2.0, tr.Median())

	tr.Add(4)
	require.Equal(t, 3.0, tr.Median())
}

func TestScoresAreCopies(t *testing.T) {
	tr := NewTracker()
	tr.Add(1)
	scores, _ := tr.Scores()
	scores[0] = 99
	again, _ := tr.Scores()
	require.Equal(t, 1, again[0])
}
