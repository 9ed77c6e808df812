package dsp

// BandCorr computes the triangular critical-band cross-energy of two
// spectra x and p (length FreqSize) into out (length NbBands).
//
// Each FFT bin contributes to its two neighbouring bands through a
// linear (triangular) crossfade; the two edge bands only ever see the
// inner half of their triangle, so they are doubled afterward to
// account for the missing outer half.
func BandCorr(out []float64, x, p []complex128) {
	if len(out) != NbBands || len(x) != FreqSize || len(p) != FreqSize {
		panic("dsp: BandCorr requires NbBands out and FreqSize spectra")
	}
	for i := range out {
		out[i] = 0
	}
	for i := 0; i < NbBands-1; i++ {
		bandSize := (EBand5ms[i+1] - EBand5ms[i]) * 4
		for j := 0; j < bandSize; j++ {
			frac := float64(j) / float64(bandSize)
			idx := EBand5ms[i]*4 + j
			corr := real(x[idx])*real(p[idx]) + imag(x[idx])*imag(p[idx])
			out[i] += (1 - frac) * corr
			out[i+1] += frac * corr
		}
	}
	out[0] *= 2
	out[NbBands-1] *= 2
}

// InterpBandGain expands a NbBands-length piecewise-constant band gain
// vector into a FreqSize-length per-bin gain vector, linearly
// interpolating across each band's triangular weighting. Bins below the
// first band boundary and above the last are zero.
func InterpBandGain(out []float64, bandE []float64) {
	if len(out) != FreqSize || len(bandE) != NbBands {
		panic("dsp: InterpBandGain requires FreqSize out and NbBands input")
	}
	for i := range out {
		out[i] = 0
	}
	for i := 0; i < NbBands-1; i++ {
		bandSize := (EBand5ms[i+1] - EBand5ms[i]) * 4
		for j := 0; j < bandSize; j++ {
			frac := float64(j) / float64(bandSize)
			idx := EBand5ms[i]*4 + j
			out[idx] = (1-frac)*bandE[i] + frac*bandE[i+1]
		}
	}
}
