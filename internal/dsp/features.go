package dsp

import "math"

// State holds all per-stream memory carried between frames: input/output
// overlap, pitch history, the cepstral ring, and the previous frame's
// gains. It contains no shared or process-wide data; callers processing
// multiple independent streams use one State per stream.
type State struct {
	AnalysisMem  [FrameSize]float64
	SynthesisMem [FrameSize]float64
	PitchBuf     [PitchBufSize]float64
	CepstralMem  [CepsMem][NbBands]float64
	MemID        int
	LastGain     float64
	LastPeriod   int
	LastG        [NbBands]float64
	HighPass     HighPass
}

// ApplyWindow multiplies buf (length WindowSize) in place by the shared
// analysis/synthesis window.
func ApplyWindow(buf []float64) {
	if len(buf) != WindowSize {
		panic("dsp: ApplyWindow requires a WindowSize buffer")
	}
	w := GetCommonTables().Window
	for i, v := range buf {
		buf[i] = v * w[i]
	}
}

// FrameAnalysis concatenates the saved analysis overlap with the new
// frame, windows it, and transforms it into the spectrum x and its band
// energy ex, while sliding the overlap memory forward by one frame.
func FrameAnalysis(state *State, x []complex128, ex []float64, input []float64) {
	if len(input) != FrameSize {
		panic("dsp: FrameAnalysis requires a FrameSize input")
	}
	var buf [WindowSize]float64
	copy(buf[:FrameSize], state.AnalysisMem[:])
	copy(buf[FrameSize:], input)
	copy(state.AnalysisMem[:], input)

	ApplyWindow(buf[:])
	RealForward(x, buf[:])
	BandCorr(ex, x, x)
}

// FrameSynthesis inverse-transforms spectrum y, windows it, and overlap-adds
// it with the saved synthesis tail into out.
func FrameSynthesis(state *State, out []float64, y []complex128) {
	if len(out) != FrameSize {
		panic("dsp: FrameSynthesis requires a FrameSize output")
	}
	var x [WindowSize]float64
	RealInverse(x[:], y)
	ApplyWindow(x[:])
	for i := 0; i < FrameSize; i++ {
		out[i] = x[i] + state.SynthesisMem[i]
		state.SynthesisMem[i] = x[FrameSize+i]
	}
}

// ComputeFrameFeatures runs the full feature-extraction pipeline for one
// frame. input is the high-passed frame used for spectral analysis;
// pitchInput is the corresponding raw (pre-high-pass) frame used only to
// advance pitch_buf, preserving an intentional quirk of the reference
// behaviour. x and p receive the current and pitch-delayed spectra; ex,
// ep, exp receive their band energies/cross-energy; features receives the
// NbFeatures-length feature vector. It reports whether the frame was
// judged silent.
func ComputeFrameFeatures(state *State, x, p []complex128, ex, ep, exp, features []float64, input, pitchInput []float64) bool {
	if len(features) != NbFeatures {
		panic("dsp: ComputeFrameFeatures requires a NbFeatures feature vector")
	}

	FrameAnalysis(state, x, ex, input)

	copy(state.PitchBuf[:PitchBufSize-FrameSize], state.PitchBuf[FrameSize:])
	copy(state.PitchBuf[PitchBufSize-FrameSize:], pitchInput)

	var pitchBufDown [PitchBufSize / 2]float64
	PitchDownsample(state.PitchBuf[:], pitchBufDown[:])

	pitchIdx := PitchSearch(pitchBufDown[PitchMaxPeriod/2:], pitchBufDown[:], PitchFrameSize, PitchMaxPeriod-3*PitchMinPeriod)
	pitchIdx = PitchMaxPeriod - pitchIdx

	pitchIdx, gain := RemoveDoubling(pitchBufDown[:], PitchMaxPeriod, PitchMinPeriod, PitchFrameSize, pitchIdx, state.LastPeriod, state.LastGain)
	state.LastPeriod = pitchIdx
	state.LastGain = gain

	var pBuf [WindowSize]float64
	off := PitchBufSize - WindowSize - pitchIdx
	for i := 0; i < WindowSize; i++ {
		pBuf[i] = state.PitchBuf[off+i]
	}
	ApplyWindow(pBuf[:])
	RealForward(p, pBuf[:])
	BandCorr(ep, p, p)
	BandCorr(exp, x, p)
	for i := 0; i < NbBands; i++ {
		exp[i] /= math.Sqrt(0.001 + ex[i]*ep[i])
	}

	var tmp [NbBands]float64
	Dct(tmp[:], exp)
	for i := 0; i < NbDeltaCeps; i++ {
		features[NbBands+2*NbDeltaCeps+i] = tmp[i]
	}
	features[NbBands+2*NbDeltaCeps] -= 1.3
	features[NbBands+2*NbDeltaCeps+1] -= 0.9
	features[NbBands+3*NbDeltaCeps] = 0.01 * (float64(pitchIdx) - 300)

	var ly [NbBands]float64
	logMax := -2.0
	follow := -2.0
	e := 0.0
	for i := 0; i < NbBands; i++ {
		v := math.Log10(1e-2 + ex[i])
		v = math.Max(v, logMax-7)
		v = math.Max(v, follow-1.5)
		ly[i] = v
		logMax = math.Max(logMax, v)
		follow = math.Max(follow-1.5, v)
		e += ex[i]
	}

	if e < 0.04 {
		for i := range features {
			features[i] = 0
		}
		return true
	}

	Dct(features[:NbBands], ly[:])
	features[0] -= 12
	features[1] -= 4

	i0 := state.MemID
	i1 := i0 - 1
	if state.MemID < 1 {
		i1 = CepsMem + state.MemID - 1
	}
	i2 := i0 - 2
	if state.MemID < 2 {
		i2 = CepsMem + state.MemID - 2
	}

	copy(state.CepstralMem[i0][:], features[:NbBands])
	state.MemID++

	ceps0 := state.CepstralMem[i0]
	ceps1 := state.CepstralMem[i1]
	ceps2 := state.CepstralMem[i2]
	for i := 0; i < NbDeltaCeps; i++ {
		features[i] = ceps0[i] + ceps1[i] + ceps2[i]
		features[NbBands+i] = ceps0[i] - ceps2[i]
		features[NbBands+NbDeltaCeps+i] = ceps0[i] - 2*ceps1[i] + ceps2[i]
	}

	if state.MemID == CepsMem {
		state.MemID = 0
	}

	specVariability := 0.0
	for i := 0; i < CepsMem; i++ {
		minDist := math.Inf(1)
		for j := 0; j < CepsMem; j++ {
			if j == i {
				continue
			}
			dist := 0.0
			for k := 0; k < NbBands; k++ {
				d := state.CepstralMem[i][k] - state.CepstralMem[j][k]
				dist += d * d
			}
			if dist < minDist {
				minDist = dist
			}
		}
		specVariability += minDist
	}
	features[NbBands+3*NbDeltaCeps+1] = specVariability/float64(CepsMem) - 2.1

	return false
}
