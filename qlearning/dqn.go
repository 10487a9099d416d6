package qlearning

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// maxCachedGraphs bounds how many batch shapes keep a compiled graph around.
const maxCachedGraphs = 16

// Transition rappresenta un singolo step nell'ambiente
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// Network is a two-layer perceptron: Linear -> ReLU -> Linear.
//
// The parameters live in tensors owned by the Network. Every batch size gets
// its own expression graph whose parameter nodes are bound to those same
// tensors, so an optimiser step on one graph is seen by all of them.
type Network struct {
	Inputs  int
	Hidden  int
	Outputs int

	w0, b0, w1, b1 *tensor.Dense

	inference map[int]*graph
	training  map[int]*graph
}

type graph struct {
	g          *gorgonia.ExprGraph
	x, y       *gorgonia.Node
	pred, loss *gorgonia.Node
	learnables gorgonia.Nodes
	vm         gorgonia.VM
}

// NewNetwork crea una nuova rete con pesi Glorot e bias a zero.
func NewNetwork(inputs, hidden, outputs int) *Network {
	return &Network{
		Inputs:    inputs,
		Hidden:    hidden,
		Outputs:   outputs,
		w0:        glorot(inputs, hidden),
		b0:        tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(1, hidden)),
		w1:        glorot(hidden, outputs),
		b1:        tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(1, outputs)),
		inference: make(map[int]*graph),
		training:  make(map[int]*graph),
	}
}

func glorot(rows, cols int) *tensor.Dense {
	backing := gorgonia.GlorotU(1.0)(tensor.Float64, rows, cols).([]float64)
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
}

func (n *Network) params() []*tensor.Dense {
	return []*tensor.Dense{n.w0, n.b0, n.w1, n.b1}
}

// build compiles the forward pass for a batch of the given size. With train
// set it also adds the MSE loss against y and the symbolic gradients.
func (n *Network) build(batch int, train bool) (*graph, error) {
	g := gorgonia.NewGraph()
	x := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, n.Inputs), gorgonia.WithName("x"))

	w0 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(n.Inputs, n.Hidden), gorgonia.WithName("w0"), gorgonia.WithValue(n.w0))
	b0 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, n.Hidden), gorgonia.WithName("b0"), gorgonia.WithValue(n.b0))
	w1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(n.Hidden, n.Outputs), gorgonia.WithName("w1"), gorgonia.WithValue(n.w1))
	b1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, n.Outputs), gorgonia.WithName("b1"), gorgonia.WithValue(n.b1))

	// (batch,1) x (1,k) repeats a bias row for every sample
	onesBacking := make([]float64, batch)
	for i := range onesBacking {
		onesBacking[i] = 1
	}
	ones := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, 1), gorgonia.WithName("ones"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(batch, 1), tensor.WithBacking(onesBacking))))

	h, err := gorgonia.Mul(x, w0)
	if err != nil {
		return nil, fmt.Errorf("qlearning: hidden layer: %w", err)
	}
	bias0, err := gorgonia.Mul(ones, b0)
	if err != nil {
		return nil, fmt.Errorf("qlearning: hidden bias: %w", err)
	}
	if h, err = gorgonia.Add(h, bias0); err != nil {
		return nil, fmt.Errorf("qlearning: hidden bias: %w", err)
	}
	if h, err = gorgonia.Rectify(h); err != nil {
		return nil, fmt.Errorf("qlearning: relu: %w", err)
	}

	out, err := gorgonia.Mul(h, w1)
	if err != nil {
		return nil, fmt.Errorf("qlearning: output layer: %w", err)
	}
	bias1, err := gorgonia.Mul(ones, b1)
	if err != nil {
		return nil, fmt.Errorf("qlearning: output bias: %w", err)
	}
	pred, err := gorgonia.Add(out, bias1)
	if err != nil {
		return nil, fmt.Errorf("qlearning: output bias: %w", err)
	}

	gr := &graph{
		g:          g,
		x:          x,
		pred:       pred,
		learnables: gorgonia.Nodes{w0, b0, w1, b1},
	}

	if !train {
		gr.vm = gorgonia.NewTapeMachine(g)
		return gr, nil
	}

	y := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, n.Outputs), gorgonia.WithName("y"))
	diff, err := gorgonia.Sub(pred, y)
	if err != nil {
		return nil, fmt.Errorf("qlearning: loss: %w", err)
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return nil, fmt.Errorf("qlearning: loss: %w", err)
	}
	loss, err := gorgonia.Mean(sq)
	if err != nil {
		return nil, fmt.Errorf("qlearning: loss: %w", err)
	}
	if _, err := gorgonia.Grad(loss, gr.learnables...); err != nil {
		return nil, fmt.Errorf("qlearning: gradients: %w", err)
	}

	gr.y = y
	gr.loss = loss
	gr.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(gr.learnables...))
	return gr, nil
}

func (n *Network) graphFor(batch int, train bool) (*graph, error) {
	cache := n.inference
	if train {
		cache = n.training
	}
	if gr, ok := cache[batch]; ok {
		return gr, nil
	}
	gr, err := n.build(batch, train)
	if err != nil {
		return nil, err
	}
	if len(cache) >= maxCachedGraphs {
		for size, old := range cache {
			old.vm.Close()
			delete(cache, size)
		}
	}
	cache[batch] = gr
	return gr, nil
}

// Forward esegue un forward pass su un batch di stati concatenati riga per
// riga e restituisce i Q-values nello stesso ordine.
func (n *Network) Forward(states []float64) ([]float64, error) {
	if len(states) == 0 || len(states)%n.Inputs != 0 {
		return nil, fmt.Errorf("qlearning: state length %d is not a multiple of %d", len(states), n.Inputs)
	}
	batch := len(states) / n.Inputs

	gr, err := n.graphFor(batch, false)
	if err != nil {
		return nil, err
	}
	defer gr.vm.Reset()

	if err := gorgonia.Let(gr.x, matrix(batch, n.Inputs, states)); err != nil {
		return nil, fmt.Errorf("qlearning: bind input: %w", err)
	}
	if err := gr.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass error: %w", err)
	}

	predValue := gr.pred.Value()
	if predValue == nil {
		return nil, errors.New("qlearning: nil prediction value")
	}
	data, ok := predValue.Data().([]float64)
	if !ok {
		return nil, errors.New("qlearning: invalid prediction tensor type")
	}
	predictions := make([]float64, len(data))
	copy(predictions, data)
	return predictions, nil
}

// Predict returns the Q-values of a single state.
func (n *Network) Predict(state []float64) ([]float64, error) {
	return n.Forward(state)
}

func matrix(rows, cols int, data []float64) *tensor.Dense {
	backing := make([]float64, len(data))
	copy(backing, data)
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
}

// Trainer applies the Bellman update with mean squared error and Adam.
type Trainer struct {
	Net    *Network
	Gamma  float64
	solver gorgonia.Solver
}

// NewTrainer wraps net with an Adam optimiser.
func NewTrainer(net *Network, learningRate, gamma float64) *Trainer {
	return &Trainer{
		Net:    net,
		Gamma:  gamma,
		solver: gorgonia.NewAdamSolver(gorgonia.WithLearnRate(learningRate)),
	}
}

// Targets computes the regression targets for a batch: the current
// prediction with the taken action's entry replaced by
// reward + gamma * max Q(next), or just the reward for terminal steps.
func (t *Trainer) Targets(batch []Transition) (states, targets []float64, err error) {
	n := t.Net
	states = make([]float64, 0, len(batch)*n.Inputs)
	nextStates := make([]float64, 0, len(batch)*n.Inputs)
	for _, tr := range batch {
		if len(tr.State) != n.Inputs || len(tr.NextState) != n.Inputs {
			return nil, nil, fmt.Errorf("qlearning: transition state size must be %d", n.Inputs)
		}
		if tr.Action < 0 || tr.Action >= n.Outputs {
			return nil, nil, fmt.Errorf("qlearning: action %d out of range", tr.Action)
		}
		states = append(states, tr.State...)
		nextStates = append(nextStates, tr.NextState...)
	}

	pred, err := n.Forward(states)
	if err != nil {
		return nil, nil, err
	}
	nextPred, err := n.Forward(nextStates)
	if err != nil {
		return nil, nil, err
	}

	targets = pred
	for i, tr := range batch {
		qNew := tr.Reward
		if !tr.Done {
			maxQ := math.Inf(-1)
			for _, q := range nextPred[i*n.Outputs : (i+1)*n.Outputs] {
				maxQ = math.Max(maxQ, q)
			}
			qNew = tr.Reward + t.Gamma*maxQ
		}
		targets[i*n.Outputs+tr.Action] = qNew
	}
	return states, targets, nil
}

// TrainStep runs one optimisation step on the batch and returns the loss
// measured before the update.
func (t *Trainer) TrainStep(batch []Transition) (float64, error) {
	if len(batch) == 0 {
		return 0, errors.New("qlearning: empty batch")
	}
	states, targets, err := t.Targets(batch)
	if err != nil {
		return 0, err
	}

	n := t.Net
	gr, err := n.graphFor(len(batch), true)
	if err != nil {
		return 0, err
	}
	defer gr.vm.Reset()

	if err := gorgonia.Let(gr.x, matrix(len(batch), n.Inputs, states)); err != nil {
		return 0, fmt.Errorf("qlearning: bind input: %w", err)
	}
	if err := gorgonia.Let(gr.y, matrix(len(batch), n.Outputs, targets)); err != nil {
		return 0, fmt.Errorf("qlearning: bind target: %w", err)
	}
	if err := gr.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("qlearning: backprop: %w", err)
	}

	loss, err := scalar(gr.loss.Value())
	if err != nil {
		return 0, err
	}
	if err := t.solver.Step(gorgonia.NodesToValueGrads(gr.learnables)); err != nil {
		return 0, fmt.Errorf("qlearning: solver step: %w", err)
	}
	return loss, nil
}

func scalar(v gorgonia.Value) (float64, error) {
	if v == nil {
		return 0, errors.New("qlearning: nil loss value")
	}
	switch d := v.Data().(type) {
	case float64:
		return d, nil
	case []float64:
		if len(d) == 1 {
			return d[0], nil
		}
	}
	return 0, fmt.Errorf("qlearning: unexpected loss value %v", v)
}

// weightsFile is the on-disk layout of a saved network.
type weightsFile struct {
	Inputs, Hidden, Outputs int
	Layers                  map[string][]float64
}

var layerNames = [...]string{"w0", "b0", "w1", "b1"}

// Save salva i pesi della rete su file, creando la directory se manca.
func (n *Network) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("qlearning: failed to create model directory: %w", err)
	}

	wf := weightsFile{
		Inputs:  n.Inputs,
		Hidden:  n.Hidden,
		Outputs: n.Outputs,
		Layers:  make(map[string][]float64, len(layerNames)),
	}
	for i, p := range n.params() {
		data := make([]float64, p.Size())
		copy(data, p.Data().([]float64))
		wf.Layers[layerNames[i]] = data
	}

	tmp := filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("qlearning: failed to create weights file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(wf); err != nil {
		f.Close()
		return fmt.Errorf("qlearning: failed to encode weights: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("qlearning: failed to write weights: %w", err)
	}
	return os.Rename(tmp, filename)
}

// Load carica i pesi da file, copiandoli nei tensori esistenti. Se il file
// manca, l'errore restituito avvolge os.ErrNotExist.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("qlearning: failed to open weights file: %w", err)
	}
	defer f.Close()

	var wf weightsFile
	if err := gob.NewDecoder(f).Decode(&wf); err != nil {
		return fmt.Errorf("qlearning: failed to decode weights: %w", err)
	}
	if wf.Inputs != n.Inputs || wf.Hidden != n.Hidden || wf.Outputs != n.Outputs {
		return fmt.Errorf("qlearning: weights are %dx%dx%d, network is %dx%dx%d",
			wf.Inputs, wf.Hidden, wf.Outputs, n.Inputs, n.Hidden, n.Outputs)
	}
	for i, p := range n.params() {
		src, ok := wf.Layers[layerNames[i]]
		if !ok || len(src) != p.Size() {
			return fmt.Errorf("qlearning: layer %s missing or wrong size", layerNames[i])
		}
	}
	// copy in place: compiled graphs are bound to these tensors
	for i, p := range n.params() {
		copy(p.Data().([]float64), wf.Layers[layerNames[i]])
	}
	return nil
}
