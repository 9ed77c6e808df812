// Package dsp implements the per-frame spectral analysis, pitch search,
// feature extraction, pitch-comb filtering and overlap-add synthesis
// kernels that the RNNoise pipeline is built from.
package dsp

// Frame and window geometry, fixed by the algorithm.
const (
	FrameSize  = 480 // samples per call, 10ms at 48kHz
	WindowSize = 960 // analysis/synthesis window length
	FreqSize   = 481 // WindowSize/2 + 1 non-redundant FFT bins
)

// Pitch search range, in samples at the full 48kHz rate.
const (
	PitchMinPeriod = 60
	PitchMaxPeriod = 768
	PitchFrameSize = 960
	PitchBufSize   = 1728
)

// Feature vector geometry.
const (
	NbBands      = 22
	CepsMem      = 8
	NbDeltaCeps  = 6
	NbFeatures   = NbBands + 3*NbDeltaCeps + 2 // 42
)

// EBand5ms gives the 22 critical-band boundaries in units of 4-bin
// groups of the 960-point FFT: band i spans FFT bins
// EBand5ms[i]*4 .. EBand5ms[i+1]*4.
var EBand5ms = [NbBands + 1]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 14, 16, 20, 24, 28, 34, 40, 48, 60, 78, 100,
}
