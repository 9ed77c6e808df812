package rnnoise_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thesyncim/rnnoise"
)

func sineFrame(amplitude, freq, sampleRate float64, startSample int) []float32 {
	out := make([]float32, rnnoise.FrameSize)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(startSample+i)/sampleRate))
	}
	return out
}

// TestNewDenoiseStateWithNilModelPanics checks construction validates its
// model argument since ProcessFrame itself never returns an error.
func TestNewDenoiseStateWithNilModelPanics(t *testing.T) {
	require.PanicsWithValue(t, rnnoise.ErrNilModel, func() {
		rnnoise.NewDenoiseStateWithModel(nil)
	})
}

// TestProcessFrameRejectsWrongLength checks ProcessFrame panics on
// mismatched slice lengths rather than silently truncating or
// out-of-bounds indexing.
func TestProcessFrameRejectsWrongLength(t *testing.T) {
	state := rnnoise.NewDenoiseState()
	out := make([]float32, rnnoise.FrameSize)

	require.Panics(t, func() {
		state.ProcessFrame(out, make([]float32, rnnoise.FrameSize-1))
	})
	require.Panics(t, func() {
		state.ProcessFrame(make([]float32, rnnoise.FrameSize-1), make([]float32, rnnoise.FrameSize))
	})
}

// TestProcessFrameAllZeroInput (scenario B, invariant 3) checks a
// stream of silent frames produces exactly zero output after the first
// frame (the first frame still carries the zero-initialised overlap
// memory's transient) and keeps the VAD probability small.
func TestProcessFrameAllZeroInput(t *testing.T) {
	state := rnnoise.NewDenoiseState()
	in := make([]float32, rnnoise.FrameSize)
	out := make([]float32, rnnoise.FrameSize)

	for frame := 0; frame < 50; frame++ {
		vad := state.ProcessFrame(out, in)
		require.False(t, math.IsNaN(float64(vad)), "frame %d: vad is NaN", frame)
		// The silence branch never calls the RNN evaluator at all (see
		// state.go's `if !silence` guard), so vadProb stays at its
		// zero value deterministically, independent of model weights.
		require.Zerof(t, vad, "frame %d: VAD on silence should be exactly 0", frame)

		if frame > 0 {
			for i, v := range out {
				require.Zerof(t, v, "frame %d sample %d: output is %v, want exactly 0 on sustained silence", frame, i, v)
			}
		}
	}
}

// TestProcessFrameImpulseResponse (scenario C) feeds a single-sample
// impulse frame followed by silence and checks the engine stays stable
// (finite, bounded output) through the transient.
func TestProcessFrameImpulseResponse(t *testing.T) {
	state := rnnoise.NewDenoiseState()
	out := make([]float32, rnnoise.FrameSize)

	impulse := make([]float32, rnnoise.FrameSize)
	impulse[0] = 16000

	frames := [][]float32{impulse}
	for i := 0; i < 19; i++ {
		frames = append(frames, make([]float32, rnnoise.FrameSize))
	}

	for frame, in := range frames {
		state.ProcessFrame(out, in)
		for i, v := range out {
			require.Falsef(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0),
				"frame %d sample %d: output is %v, want finite", frame, i, v)
			require.Lessf(t, math.Abs(float64(v)), 1e6, "frame %d sample %d: output %v unexpectedly large", frame, i, v)
		}
	}
}

// TestProcessFrameToneStaysBounded (scenario D) drives a sustained,
// loud, periodic tone through the engine and checks the voice-activity
// probability and output samples stay within their documented bounds
// throughout. It does not assert the probability favours speech-like
// input over silence: the compiled-in DefaultModel is an untrained,
// fixed-seed placeholder network (see rnnmodel.DefaultModel), so its
// gain/VAD *values* carry no trained semantic meaning, only the shape
// contract (bounded, finite, deterministic) that a trained model would
// also have to satisfy.
func TestProcessFrameToneStaysBounded(t *testing.T) {
	state := rnnoise.NewDenoiseState()
	out := make([]float32, rnnoise.FrameSize)

	const sampleRate = 48000.0
	for frame := 0; frame < 30; frame++ {
		in := sineFrame(16000, 220, sampleRate, frame*rnnoise.FrameSize)
		vad := state.ProcessFrame(out, in)

		require.GreaterOrEqual(t, vad, float32(0))
		require.LessOrEqual(t, vad, float32(1))
		for i, v := range out {
			require.Falsef(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0),
				"frame %d sample %d: output is %v, want finite", frame, i, v)
		}
	}
}

// TestProcessFrameDeterministicAcrossIndependentStreams (scenario F)
// checks two independently constructed states fed the identical input
// sequence produce byte-identical output, i.e. no hidden global mutable
// state leaks between streams.
func TestProcessFrameDeterministicAcrossIndependentStreams(t *testing.T) {
	stateA := rnnoise.NewDenoiseState()
	stateB := rnnoise.NewDenoiseState()

	outA := make([]float32, rnnoise.FrameSize)
	outB := make([]float32, rnnoise.FrameSize)

	const sampleRate = 48000.0
	for frame := 0; frame < 15; frame++ {
		in := sineFrame(12000, 300, sampleRate, frame*rnnoise.FrameSize)

		vadA := stateA.ProcessFrame(outA, in)
		vadB := stateB.ProcessFrame(outB, in)

		require.Equal(t, vadA, vadB, "frame %d: vad diverged between independent streams", frame)
		require.Equal(t, outA, outB, "frame %d: output diverged between independent streams", frame)
	}
}

// TestProcessFrameConcurrentStreamsDoNotInterfere runs two independent
// streams concurrently and checks each still matches its own
// sequentially-computed reference output, confirming DenoiseState
// carries no shared mutable state across instances.
func TestProcessFrameConcurrentStreamsDoNotInterfere(t *testing.T) {
	const sampleRate = 48000.0
	const nFrames = 15

	reference := rnnoise.NewDenoiseState()
	refOut := make([][]float32, nFrames)
	for frame := 0; frame < nFrames; frame++ {
		in := sineFrame(9000, 180, sampleRate, frame*rnnoise.FrameSize)
		out := make([]float32, rnnoise.FrameSize)
		reference.ProcessFrame(out, in)
		refOut[frame] = out
	}

	concurrent := rnnoise.NewDenoiseState()
	done := make(chan [][]float32)
	go func() {
		outs := make([][]float32, nFrames)
		for frame := 0; frame < nFrames; frame++ {
			in := sineFrame(9000, 180, sampleRate, frame*rnnoise.FrameSize)
			out := make([]float32, rnnoise.FrameSize)
			concurrent.ProcessFrame(out, in)
			outs[frame] = out
		}
		done <- outs
	}()
	outs := <-done

	for frame := 0; frame < nFrames; frame++ {
		require.Equal(t, refOut[frame], outs[frame], "frame %d diverged between sequential and goroutine-driven runs", frame)
	}
}
