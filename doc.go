// Package rnnoise implements a streaming, frame-based noise suppressor
// for single-channel 48 kHz audio.
//
// It follows the RNNoise design: per-frame spectral analysis on a
// windowed FFT, extraction of a compact feature vector (band energies,
// cepstral deltas, pitch-correlation features, spectral variability), a
// small recurrent network that predicts per-band gains and a
// voice-activity probability, pitch-based comb filtering of the
// spectrum, gain application, and overlap-add resynthesis.
//
// # Usage
//
// Create one DenoiseState per audio stream and feed it consecutive
// 480-sample (10 ms) frames:
//
//	state := rnnoise.NewDenoiseState()
//	out := make([]float32, rnnoise.FrameSize)
//	for {
//	    in := nextFrame() // exactly rnnoise.FrameSize samples
//	    vad := state.ProcessFrame(out, in)
//	    _ = vad // voice-activity probability in [0,1]
//	    consume(out)
//	}
//
// Sample values use the same convention as 16-bit signed PCM (roughly
// [-32768, 32767]) represented as float32. The first output frame
// contains a fade-in transient from the zero-initialised overlap memory
// and is conventionally discarded by callers.
//
// A DenoiseState is not safe for concurrent use by multiple goroutines;
// processing independent streams concurrently requires one DenoiseState
// per stream, each exclusive to its own goroutine.
package rnnoise
