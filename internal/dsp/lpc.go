package dsp

// Autocorr computes the first order+1 autocorrelation lags of x into ac
// (ac[0]..ac[order]), ac[k] = sum_t x[t]*x[t+k] over the valid overlap.
func Autocorr(ac []float64, x []float64, order int) {
	if len(ac) != order+1 {
		panic("dsp: Autocorr requires len(ac) == order+1")
	}
	n := len(x)
	for k := 0; k <= order; k++ {
		sum := 0.0
		for t := 0; t < n-k; t++ {
			sum += x[t] * x[t+k]
		}
		ac[k] = sum
	}
}

// Lpc runs Levinson-Durbin recursion on autocorrelation ac (length p+1)
// to produce p LPC coefficients in lpcOut, exiting early once the
// prediction error has fallen below 30dB of ac[0].
func Lpc(lpcOut []float64, ac []float64, p int) {
	if len(lpcOut) != p || len(ac) != p+1 {
		panic("dsp: Lpc requires len(lpcOut)==p and len(ac)==p+1")
	}
	for i := range lpcOut {
		lpcOut[i] = 0
	}
	errv := ac[0]
	if errv == 0 {
		return
	}
	for i := 0; i < p; i++ {
		rr := ac[i+1]
		for j := 0; j < i; j++ {
			rr += lpcOut[j] * ac[i-j]
		}
		r := -rr / errv
		lpcOut[i] = r

		for j := 0; j < i/2; j++ {
			a, b := lpcOut[j], lpcOut[i-1-j]
			lpcOut[j] = a + r*b
			lpcOut[i-1-j] = b + r*a
		}
		if i&1 == 1 {
			mid := i / 2
			lpcOut[mid] += r * lpcOut[mid]
		}

		errv *= 1 - r*r
		if errv < 1e-3*ac[0] {
			break
		}
	}
}
