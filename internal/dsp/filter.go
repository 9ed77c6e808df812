package dsp

import "math"

// PitchFilter applies the pitch-comb correction to the spectrum x in
// place, blending in the shifted, gain-matched pitch-period spectrum p
// wherever the RNN's predicted band gain g undershoots the evidence for
// periodicity carried by the cross-band correlation exp, then rescales
// each band toward its pre-filter energy ex. The rescale factors are
// computed per band and interpolated across bins, so a band's energy
// matches ex exactly only where neighbouring bands need the same factor;
// elsewhere it lands close to ex, not on it.
func PitchFilter(x, p []complex128, ex, ep, exp, g []float64) {
	if len(x) != FreqSize || len(p) != FreqSize {
		panic("dsp: PitchFilter requires FreqSize spectra")
	}
	if len(ex) != NbBands || len(ep) != NbBands || len(exp) != NbBands || len(g) != NbBands {
		panic("dsp: PitchFilter requires NbBands band vectors")
	}

	var r [NbBands]float64
	for i := 0; i < NbBands; i++ {
		if exp[i] > g[i] {
			r[i] = 1.0
		} else {
			expSq := exp[i] * exp[i]
			gSq := g[i] * g[i]
			r[i] = expSq * (1 - gSq) / (0.001 + gSq*(1-expSq))
		}
		if r[i] > 1 {
			r[i] = 1
		} else if r[i] < 0 {
			r[i] = 0
		}
		r[i] = math.Sqrt(r[i])
		r[i] *= math.Sqrt(ex[i] / (1e-8 + ep[i]))
	}

	var rf [FreqSize]float64
	InterpBandGain(rf[:], r[:])
	for i := 0; i < FreqSize; i++ {
		x[i] += complex(rf[i], 0) * p[i]
	}

	var newE [NbBands]float64
	BandCorr(newE[:], x, x)
	var norm [NbBands]float64
	for i := 0; i < NbBands; i++ {
		norm[i] = math.Sqrt(ex[i] / (1e-8 + newE[i]))
	}
	var normf [FreqSize]float64
	InterpBandGain(normf[:], norm[:])
	for i := 0; i < FreqSize; i++ {
		x[i] *= complex(normf[i], 0)
	}
}
