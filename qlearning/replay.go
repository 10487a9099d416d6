package qlearning

import "golang.org/x/exp/rand"

// ReplayBuffer memorizza le esperienze per il training. Quando è pieno, Add
// sovrascrive la transizione più vecchia.
type ReplayBuffer struct {
	buffer   []Transition
	maxSize  int
	position int
	size     int
	rng      *rand.Rand
}

// NewReplayBuffer crea un nuovo buffer di replay
func NewReplayBuffer(maxSize int, rng *rand.Rand) *ReplayBuffer {
	return &ReplayBuffer{
		buffer:  make([]Transition, 0, min(maxSize, 1024)),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Add aggiunge una transizione al buffer
func (b *ReplayBuffer) Add(t Transition) {
	if len(b.buffer) < b.maxSize {
		b.buffer = append(b.buffer, t)
	} else {
		b.buffer[b.position] = t
	}
	b.position = (b.position + 1) % b.maxSize
	if b.size < b.maxSize {
		b.size++
	}
}

// Len returns the number of stored transitions.
func (b *ReplayBuffer) Len() int {
	return b.size
}

// Sample restituisce batchSize transizioni distinte scelte a caso, o tutto
// il buffer (dalla più vecchia) se ne contiene di meno.
func (b *ReplayBuffer) Sample(batchSize int) []Transition {
	if batchSize >= b.size {
		return b.All()
	}
	batch := make([]Transition, batchSize)
	for i, idx := range b.rng.Perm(b.size)[:batchSize] {
		batch[i] = b.buffer[idx]
	}
	return batch
}

// All returns every stored transition, oldest first.
func (b *ReplayBuffer) All() []Transition {
	out := make([]Transition, 0, b.size)
	if b.size < b.maxSize {
		return append(out, b.buffer[:b.size]...)
	}
	out = append(out, b.buffer[b.position:]...)
	return append(out, b.buffer[:b.position]...)
}
