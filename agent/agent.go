// Package agent turns game positions into network inputs, picks moves with
// an epsilon-greedy policy and drives the online training loop.
package agent

import (
	"fmt"

	"snake-rl/config"
	"snake-rl/game"
	"snake-rl/qlearning"

	"golang.org/x/exp/rand"
)

// Agent is the DQN player.
type Agent struct {
	Games   int
	Epsilon int

	cfg     config.Agent
	memory  *qlearning.ReplayBuffer
	trainer *qlearning.Trainer
	rng     *rand.Rand
}

// New builds an agent with a fresh network sized from cfg.
func New(cfg config.Agent, rng *rand.Rand) *Agent {
	net := qlearning.NewNetwork(StateSize, cfg.HiddenSize, game.NumActions)
	return &Agent{
		cfg:     cfg,
		memory:  qlearning.NewReplayBuffer(cfg.MaxMemory, rng),
		trainer: qlearning.NewTrainer(net, cfg.LearningRate, cfg.Gamma),
		rng:     rng,
	}
}

// Network exposes the Q network for saving and loading weights.
func (a *Agent) Network() *qlearning.Network {
	return a.trainer.Net
}

// MemoryLen is the number of transitions in replay memory.
func (a *Agent) MemoryLen() int {
	return a.memory.Len()
}

// Action picks a move with the epsilon-greedy policy. Epsilon shrinks by
// one per finished game, so exploration stops after EpsilonStart games.
func (a *Agent) Action(s State) (game.Action, error) {
	a.Epsilon = a.cfg.EpsilonStart - a.Games
	if a.rng.Intn(a.cfg.EpsilonRange+1) < a.Epsilon {
		return game.Action(a.rng.Intn(game.NumActions)), nil
	}

	q, err := a.trainer.Net.Predict(s.Slice())
	if err != nil {
		return game.Straight, fmt.Errorf("agent: predict: %w", err)
	}
	best := 0
	for i := range q {
		if q[i] > q[best] {
			best = i
		}
	}
	return game.Action(best), nil
}

// Remember stores a transition; the oldest one is dropped when memory is full.
func (a *Agent) Remember(t qlearning.Transition) {
	a.memory.Add(t)
}

// TrainShortMemory trains on the step that was just played.
func (a *Agent) TrainShortMemory(t qlearning.Transition) (float64, error) {
	return a.trainer.TrainStep([]qlearning.Transition{t})
}

// TrainLongMemory trains on a random batch from replay memory, or on the
// whole memory while it holds fewer than BatchSize transitions.
func (a *Agent) TrainLongMemory() (float64, error) {
	if a.memory.Len() == 0 {
		return 0, nil
	}
	return a.trainer.TrainStep(a.memory.Sample(a.cfg.BatchSize))
}

// NewTransition packs one step for training.
func NewTransition(s State, action game.Action, reward float64, next State, done bool) qlearning.Transition {
	return qlearning.Transition{
		State:     s.Slice(),
		Action:    int(action),
		Reward:    reward,
		NextState: next.Slice(),
		Done:      done,
	}
}
