// Package stats tiene traccia dei punteggi di training per il grafico e per i log.
package stats

import "sort"

// Tracker holds the scores of every recorded game.
// It is owned by the training loop and is not safe for concurrent use.
type Tracker struct {
	scores     []int
	meanScores []float64
	total      int
	record     int
}

// NewTracker crea un tracker vuoto.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add registra il punteggio di una partita e restituisce la media aggiornata.
func (t *Tracker) Add(score int) float64 {
	t.scores = append(t.scores, score)
	t.total += score
	if score > t.record {
		t.record = score
	}
	mean := float64(t.total) / float64(len(t.scores))
	t.meanScores = append(t.meanScores, mean)
	return mean
}

// Scores restituisce copie dei punteggi per partita e delle medie.
func (t *Tracker) Scores() ([]int, []float64) {
	scores := make([]int, len(t.scores))
	copy(scores, t.scores)
	means := make([]float64, len(t.meanScores))
	copy(means, t.meanScores)
	return scores, means
}

// GamesPlayed restituisce il numero totale di partite giocate.
func (t *Tracker) GamesPlayed() int {
	return len(t.scores)
}

// Record restituisce il punteggio massimo registrato.
func (t *Tracker) Record() int {
	return t.record
}

// Mean restituisce il punteggio medio, 0 senza partite.
func (t *Tracker) Mean() float64 {
	if len(t.scores) == 0 {
		return 0
	}
	return float64(t.total) / float64(len(t.scores))
}

// Median calcola il punteggio mediano.
func (t *Tracker) Median() float64 {
	sorted := make([]int, len(t.scores))
	copy(sorted, t.scores)

	if len(sorted) == 0 {
		return 0
	}
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return float64(sorted[mid])
}
