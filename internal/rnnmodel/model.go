// Package rnnmodel evaluates the small dense/GRU recurrent network that
// maps a per-frame feature vector to a set of band gains and a
// voice-activity probability. The network topology is fixed; its weights
// are data, loaded once per process and treated as immutable thereafter.
package rnnmodel

// Layer sizes, fixed by the trained topology this evaluator expects.
const (
	NbFeatures     = 42
	NbBands        = 22
	InputDenseSize = 24
	VadGRUSize     = 24
	NoiseGRUSize   = 48
	DenoiseGRUSize = 96
)

// weightsScale dequantizes the int8-quantized weights and biases used
// throughout the network, trading a small amount of precision for a
// weight table an order of magnitude smaller than float32.
const weightsScale = 1.0 / 128.0

// DenseLayer is a fully connected layer with a fixed activation.
type DenseLayer struct {
	Bias         []int8
	InputWeights []int8
	NbInputs     int
	NbNeurons    int
	Sigmoid      bool
}

// GRULayer is a gated recurrent unit layer; its weight slices are each
// 3*NbNeurons wide, holding the update, reset and candidate gates back to
// back in that order.
type GRULayer struct {
	Bias             []int8
	InputWeights     []int8
	RecurrentWeights []int8
	NbInputs         int
	NbNeurons        int
}

// Model is the complete evaluator: one input projection, three
// recurrent layers feeding into each other and the final feature vector,
// and two output heads (band gains, VAD probability).
type Model struct {
	InputDense    DenseLayer
	VadGRU        GRULayer
	NoiseGRU      GRULayer
	DenoiseGRU    GRULayer
	DenoiseOutput DenseLayer
	VadOutput     DenseLayer
}

// State carries the three GRU hidden states forward between frames. Its
// zero value is the correct initial state for a fresh stream.
type State struct {
	VadGRU     [VadGRUSize]float32
	NoiseGRU   [NoiseGRUSize]float32
	DenoiseGRU [DenoiseGRUSize]float32
}

// tansigApprox is a fast rational approximation of tanh, accurate enough
// for the network's quantized weights and evaluated without libm calls.
func tansigApprox(x float32) float32 {
	const (
		n0 = 952.52801514
		n1 = 96.39235687
		n2 = 0.60863042
		d0 = 952.72399902
		d1 = 413.36801147
		d2 = 11.88600922
	)
	x2 := x * x
	num := ((n2*x2 + n1) * x2 + n0) * x
	den := (d2*x2+d1)*x2 + d0
	res := num / den
	if res < -1.0 {
		return -1.0
	}
	if res > 1.0 {
		return 1.0
	}
	return res
}

func sigmoidApprox(x float32) float32 {
	return 0.5 + 0.5*tansigApprox(0.5*x)
}

// quantizedProjection is a view over a slice of int8-quantized weights
// laid out column-major: column c's NbNeurons/rows contribution to every
// output neuron sits contiguously at w[c*stride+offset : c*stride+offset+rows].
// offset lets one weight block address a single gate inside a GRU layer's
// 3*NbNeurons-wide interleaved storage without copying it out first.
type quantizedProjection struct {
	w             []int8
	rows, cols    int
	stride        int
	offset        int
}

// addTo accumulates this projection's contribution to x into dst, walking
// column-major so each column's weights are read contiguously regardless
// of which gate (offset) is being addressed.
func (p quantizedProjection) addTo(dst, x []float32) {
	for c := 0; c < p.cols; c++ {
		xv := x[c]
		if xv == 0 {
			continue
		}
		col := p.w[c*p.stride+p.offset : c*p.stride+p.offset+p.rows]
		for r, wv := range col {
			dst[r] += float32(wv) * xv
		}
	}
}

// evaluate runs the dense layer on input, writing its activated output.
func (l *DenseLayer) evaluate(output, input []float32) {
	for i := range output[:l.NbNeurons] {
		output[i] = float32(l.Bias[i])
	}
	proj := quantizedProjection{w: l.InputWeights, rows: l.NbNeurons, cols: l.NbInputs, stride: l.NbNeurons}
	proj.addTo(output, input)

	activate := tansigApprox
	if l.Sigmoid {
		activate = sigmoidApprox
	}
	for i := range output[:l.NbNeurons] {
		output[i] = activate(output[i] * weightsScale)
	}
}

// step advances a GRU layer's hidden state in place given the current
// frame's input. The reset gate must be fully resolved for every unit
// before the candidate term can be formed, since the candidate's
// recurrent contribution mixes reset[j]*state[j] across all j, not just
// the unit currently being updated; update and reset are therefore
// computed together first, the candidate second.
func (l *GRULayer) step(state, input []float32) {
	n := l.NbNeurons
	stride := 3 * n

	gateInput := func(gate int) quantizedProjection {
		return quantizedProjection{w: l.InputWeights, rows: n, cols: l.NbInputs, stride: stride, offset: gate * n}
	}
	gateRecurrent := func(gate int) quantizedProjection {
		return quantizedProjection{w: l.RecurrentWeights, rows: n, cols: n, stride: stride, offset: gate * n}
	}

	update := make([]float32, n)
	reset := make([]float32, n)
	for i := 0; i < n; i++ {
		update[i] = float32(l.Bias[i])
		reset[i] = float32(l.Bias[n+i])
	}
	gateInput(0).addTo(update, input)
	gateRecurrent(0).addTo(update, state)
	gateInput(1).addTo(reset, input)
	gateRecurrent(1).addTo(reset, state)
	for i := 0; i < n; i++ {
		update[i] = sigmoidApprox(weightsScale * update[i])
		reset[i] = sigmoidApprox(weightsScale * reset[i])
	}

	resetState := make([]float32, n)
	for i := 0; i < n; i++ {
		resetState[i] = state[i] * reset[i]
	}

	candidate := make([]float32, n)
	for i := 0; i < n; i++ {
		candidate[i] = float32(l.Bias[2*n+i])
	}
	gateInput(2).addTo(candidate, input)
	gateRecurrent(2).addTo(candidate, resetState)

	for i := 0; i < n; i++ {
		state[i] = update[i]*state[i] + (1-update[i])*tansigApprox(weightsScale*candidate[i])
	}
}

// Compute advances state by one frame given features (length NbFeatures)
// and writes the predicted per-band gains (length NbBands) and a
// single-element VAD probability.
func (m *Model) Compute(state *State, gains []float64, vadProb []float64, features []float64) {
	if len(features) != NbFeatures {
		panic("rnnmodel: Compute requires a NbFeatures feature vector")
	}
	if len(gains) != NbBands {
		panic("rnnmodel: Compute requires a NbBands gain vector")
	}
	if len(vadProb) != 1 {
		panic("rnnmodel: Compute requires a single-element VAD output")
	}

	f32 := make([]float32, NbFeatures)
	for i, v := range features {
		f32[i] = float32(v)
	}

	inputDenseOut := make([]float32, InputDenseSize)
	m.InputDense.evaluate(inputDenseOut, f32)

	m.VadGRU.step(state.VadGRU[:], inputDenseOut)

	noiseInput := make([]float32, InputDenseSize+VadGRUSize+NbFeatures)
	copy(noiseInput, inputDenseOut)
	copy(noiseInput[InputDenseSize:], state.VadGRU[:])
	copy(noiseInput[InputDenseSize+VadGRUSize:], f32)
	m.NoiseGRU.step(state.NoiseGRU[:], noiseInput)

	denoiseInput := make([]float32, VadGRUSize+NoiseGRUSize+NbFeatures)
	copy(denoiseInput, state.VadGRU[:])
	copy(denoiseInput[VadGRUSize:], state.NoiseGRU[:])
	copy(denoiseInput[VadGRUSize+NoiseGRUSize:], f32)
	m.DenoiseGRU.step(state.DenoiseGRU[:], denoiseInput)

	gainsOut := make([]float32, NbBands)
	m.DenoiseOutput.evaluate(gainsOut, state.DenoiseGRU[:])
	for i, v := range gainsOut {
		gains[i] = float64(v)
	}

	vadOut := make([]float32, 1)
	m.VadOutput.evaluate(vadOut, state.VadGRU[:])
	vadProb[0] = float64(vadOut[0])
}
