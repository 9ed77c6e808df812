package dsp

// RealForward computes the forward real FFT of a WindowSize-length real
// signal, returning its FreqSize (=WindowSize/2+1) non-redundant bins,
// normalised by the documented forward-only 1/WindowSize scale.
//
// The real input is packed into a WindowSize-length complex sequence with
// a zero imaginary part and run through the shared mixed-radix complex
// FFT; bins FreqSize..WindowSize-1 are the Hermitian mirror of bins
// 1..WindowSize/2-1 and are discarded.
func RealForward(dst []complex128, src []float64) {
	if len(src) != WindowSize || len(dst) != FreqSize {
		panic("dsp: RealForward requires a WindowSize input and FreqSize output")
	}
	t := GetCommonTables()

	var in, out [WindowSize]complex128
	for i, v := range src {
		in[i] = complex(v, 0)
	}
	t.fft.forward(out[:], in[:])

	scale := 1.0 / float64(WindowSize)
	for k := 0; k < FreqSize; k++ {
		dst[k] = out[k] * complex(scale, 0)
	}
}

// RealInverse computes the inverse real FFT from FreqSize non-redundant
// bins back to a WindowSize-length real signal, with no further scaling
// (the forward transform already applied the documented normalisation).
func RealInverse(dst []float64, src []complex128) {
	if len(dst) != WindowSize || len(src) != FreqSize {
		panic("dsp: RealInverse requires a FreqSize input and WindowSize output")
	}
	t := GetCommonTables()

	var in, out [WindowSize]complex128
	for k := 0; k < FreqSize; k++ {
		in[k] = src[k]
	}
	for k := FreqSize; k < WindowSize; k++ {
		in[k] = complex(real(src[WindowSize-k]), -imag(src[WindowSize-k]))
	}

	t.fft.inverse(out[:], in[:])
	for i := 0; i < WindowSize; i++ {
		dst[i] = real(out[i])
	}
}
