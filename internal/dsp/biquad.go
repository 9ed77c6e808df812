package dsp

// Biquad coefficients for the input DC-blocking high-pass filter, per
// the reference's fixed a/b pair (not derived, a compiled-in constant).
var (
	biquadA = [2]float64{-1.99599, 0.99600}
	biquadB = [2]float64{-2.0, 1.0}
)

// HighPass is the two-tap direct-form biquad that removes DC and
// sub-audio content from the input before analysis. Inner arithmetic is
// 64-bit; the public Apply signature trades in 32-bit samples to match
// the stream's sample format.
type HighPass struct {
	mem [2]float64
}

// Apply filters n samples from src into dst (dst and src may overlap
// only if they are identical, matching an in-place call site).
func (h *HighPass) Apply(dst, src []float32) {
	for i := range src {
		dst[i] = float32(h.step(float64(src[i])))
	}
}

// ApplyF64 is Apply's float64-domain counterpart, used by callers that
// already carry samples in 64-bit form and want to avoid a round trip
// through float32.
func (h *HighPass) ApplyF64(dst, src []float64) {
	for i := range src {
		dst[i] = h.step(src[i])
	}
}

func (h *HighPass) step(x float64) float64 {
	y := x + h.mem[0]
	h.mem[0] = h.mem[1] + (biquadB[0]*x - biquadA[0]*y)
	h.mem[1] = biquadB[1]*x - biquadA[1]*y
	return y
}
