package rnnoise

import (
	"github.com/thesyncim/rnnoise/internal/dsp"
	"github.com/thesyncim/rnnoise/internal/rnnmodel"
)

// FrameSize is the only frame length process_frame accepts: 480 samples,
// 10ms at the fixed 48kHz sample rate this engine operates at.
const FrameSize = dsp.FrameSize

// DenoiseState is a single noise-suppression stream. It owns all memory
// carried between frames (analysis/synthesis overlap, pitch history, the
// cepstral ring, previous gains, and the RNN's recurrent state) and is
// exclusive to one caller; process independent streams with independent
// DenoiseStates.
type DenoiseState struct {
	dsp   dsp.State
	rnn   rnnmodel.State
	model *rnnmodel.Model
}

// NewDenoiseState constructs a stream using the package's compiled-in
// default model.
func NewDenoiseState() *DenoiseState {
	return NewDenoiseStateWithModel(defaultModel())
}

// NewDenoiseStateWithModel constructs a stream using an explicitly
// supplied model, e.g. one loaded from a trained weight file with
// rnnmodel.Load. Passing nil panics; construction is the only place this
// package validates model presence, since process_frame has no error
// return.
func NewDenoiseStateWithModel(m *rnnmodel.Model) *DenoiseState {
	if m == nil {
		panic(ErrNilModel)
	}
	return &DenoiseState{model: m}
}

// ProcessFrame denoises one 480-sample frame of input into output,
// returning the frame's voice-activity probability in [0,1]. Both output
// and input must have length FrameSize; a mismatched length is a
// programming error and panics rather than returning an error.
func (s *DenoiseState) ProcessFrame(output, input []float32) float32 {
	if len(input) != FrameSize || len(output) != FrameSize {
		panic("rnnoise: ProcessFrame requires FrameSize-length input and output")
	}

	var xTime [FrameSize]float64
	rawInput := make([]float64, FrameSize)
	for i, v := range input {
		rawInput[i] = float64(v)
	}
	s.dsp.HighPass.ApplyF64(xTime[:], rawInput)

	var xFreq [dsp.FreqSize]complex128
	var p [dsp.FreqSize]complex128
	var ex, ep, exp [dsp.NbBands]float64
	var features [dsp.NbFeatures]float64

	silence := dsp.ComputeFrameFeatures(&s.dsp, xFreq[:], p[:], ex[:], ep[:], exp[:], features[:], xTime[:], rawInput)

	var vadProb [1]float64
	if !silence {
		var g [dsp.NbBands]float64
		s.model.Compute(&s.rnn, g[:], vadProb[:], features[:])

		dsp.PitchFilter(xFreq[:], p[:], ex[:], ep[:], exp[:], g[:])
		for i := range g {
			floor := 0.6 * s.dsp.LastG[i]
			if g[i] < floor {
				g[i] = floor
			}
			s.dsp.LastG[i] = g[i]
		}

		var gf [dsp.FreqSize]float64
		dsp.InterpBandGain(gf[:], g[:])
		for i := range xFreq {
			xFreq[i] *= complex(gf[i], 0)
		}
	}

	var outF64 [FrameSize]float64
	dsp.FrameSynthesis(&s.dsp, outF64[:], xFreq[:])
	for i, v := range outF64 {
		output[i] = float32(v)
	}

	return float32(vadProb[0])
}

func defaultModel() *rnnmodel.Model {
	return rnnmodel.DefaultModel()
}
