package dsp

import "math"

// xcorr computes len(out) terms of the cross-correlation between xs and
// ys: out[i] = sum_t xs[t]*ys[i+t], t ranging over 0..len(xs).
func xcorr(xs, ys []float64, out []float64) {
	for i := range out {
		sum := 0.0
		for t, x := range xs {
			sum += x * ys[i+t]
		}
		out[i] = sum
	}
}

// innerProd is the plain dot product of the first n elements of xs, ys.
func innerProd(xs, ys []float64, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += xs[i] * ys[i]
	}
	return sum
}

// findBestPitch returns the indices of the largest and second-largest
// normalised autocorrelation peaks in xcorrv, where ys[i:i+length] is the
// window whose energy normalises xcorrv[i].
func findBestPitch(xcorrv, ys []float64, length int) (best, second int) {
	bestNum, secondNum := -1.0, -1.0
	bestDen, secondDen := 0.0, 0.0
	second = 1

	ySqNorm := 1.0
	for _, y := range ys[:length] {
		ySqNorm += y * y
	}
	for i, corr := range xcorrv {
		if corr > 0 {
			num := corr * corr
			if num*secondDen > secondNum*ySqNorm {
				if num*bestDen > bestNum*ySqNorm {
					secondNum, secondDen, second = bestNum, bestDen, best
					bestNum, bestDen, best = num, ySqNorm, i
				} else {
					secondNum, secondDen, second = num, ySqNorm, i
				}
			}
		}
		ySqNorm += ys[i+length]*ys[i+length] - ys[i]*ys[i]
		if ySqNorm < 1.0 {
			ySqNorm = 1.0
		}
	}
	return best, second
}

// PitchDownsample halves the sample rate of a PitchBufSize-length buffer,
// then whitens the half-rate result in place with a short LPC-derived
// pre-emphasis filter so the coarse pitch search below works on a
// flatter spectrum.
func PitchDownsample(x []float64, xLP []float64) {
	if len(xLP) != len(x)/2 {
		panic("dsp: PitchDownsample requires an output half the input length")
	}
	for i := 1; i < len(x)/2; i++ {
		xLP[i] = ((x[2*i-1]+x[2*i+1])/2 + x[2*i]) / 2
	}
	xLP[0] = (x[1]/2 + x[0]) / 2

	var ac [5]float64
	Autocorr(ac[:], xLP, 4)
	ac[0] *= 1.0001
	for i := 1; i < 5; i++ {
		lag := 0.008 * float64(i)
		ac[i] -= ac[i] * lag * lag
	}

	var lpcCoeffs [4]float64
	Lpc(lpcCoeffs[:], ac[:], 4)
	tmp := 1.0
	for i := 0; i < 4; i++ {
		tmp *= 0.9
		lpcCoeffs[i] *= tmp
	}

	var num [5]float64
	num[0] = lpcCoeffs[0] + 0.8
	num[1] = lpcCoeffs[1] + 0.8*lpcCoeffs[0]
	num[2] = lpcCoeffs[2] + 0.8*lpcCoeffs[1]
	num[3] = lpcCoeffs[3] + 0.8*lpcCoeffs[2]
	num[4] = 0.8 * lpcCoeffs[3]

	var mem [5]float64
	for i, xv := range xLP {
		out := xv + num[0]*mem[0] + num[1]*mem[1] + num[2]*mem[2] + num[3]*mem[3] + num[4]*mem[4]
		mem[4], mem[3], mem[2], mem[1], mem[0] = mem[3], mem[2], mem[1], mem[0], xv
		xLP[i] = out
	}
}

// PitchSearch locates the coarse pitch period in xLP (searched against the
// longer buffer y) via a two-stage decimated cross-correlation followed by
// a three-point check around the peak that shifts the result by at most
// one sample. length is the correlation window size and maxPitch bounds
// the lag search, both at the full rate; the returned lag is also at the
// full rate.
func PitchSearch(xLP, y []float64, length, maxPitch int) int {
	xLP4 := make([]float64, len(xLP)/2)
	yLP4 := make([]float64, len(y)/2)
	for j := range xLP4 {
		xLP4[j] = xLP[2*j]
	}
	for j := range yLP4 {
		yLP4[j] = y[2*j]
	}

	xc := make([]float64, maxPitch/2)
	xcorr(xLP4, yLP4, xc[:maxPitch/4])
	bestPitch, secondBestPitch := findBestPitch(xc[:maxPitch/4], yLP4, length/4)

	for i := 0; i < maxPitch/2; i++ {
		xc[i] = 0
		if absInt(i-2*bestPitch) > 2 && absInt(i-2*secondBestPitch) > 2 {
			continue
		}
		v := innerProd(xLP, y[i:], length/2)
		if v < -1.0 {
			v = -1.0
		}
		xc[i] = v
	}

	bestPitch, _ = findBestPitch(xc, y, length/2)

	offset := 0
	if bestPitch > 0 && bestPitch < maxPitch/2-1 {
		a, b, c := xc[bestPitch-1], xc[bestPitch], xc[bestPitch+1]
		if c-a > 0.7*(b-a) {
			offset = 1
		} else if a-c > 0.7*(b-c) {
			offset = -1
		}
	}
	return 2*bestPitch - offset
}

func pitchGain(xy, xx, yy float64) float64 {
	return xy / math.Sqrt(1+xx*yy)
}

var secondCheck = [16]int{0, 0, 3, 2, 3, 2, 5, 2, 3, 2, 3, 2, 5, 2, 3, 2}

// RemoveDoubling refines a coarse pitch estimate t0 (as produced by
// PitchSearch) by checking for octave errors (the coarse search locking
// onto a harmonic of the true period) and returns the corrected period
// together with a normalised pitch-strength gain of at most 1. The gain
// is negative only when the correlation at t0 is negative and no shorter
// candidate period is accepted.
func RemoveDoubling(x []float64, maxPeriod, minPeriod, n, t0, prevPeriod int, prevGain float64) (int, float64) {
	initMinPeriod := minPeriod
	minPeriod /= 2
	maxPeriod /= 2
	t0 /= 2
	prevPeriod /= 2
	n /= 2
	if t0 > maxPeriod-1 {
		t0 = maxPeriod - 1
	}

	t := t0
	xx := innerProd(x[maxPeriod:], x[maxPeriod:], n)
	xy := innerProd(x[maxPeriod:], x[maxPeriod-t0:], n)

	yyLookup := make([]float64, maxPeriod+1)
	yyLookup[0] = xx
	yy := xx
	for i := 1; i <= maxPeriod; i++ {
		yy += x[maxPeriod-i]*x[maxPeriod-i] - x[maxPeriod+n-i]*x[maxPeriod+n-i]
		if yy < 0 {
			yy = 0
		}
		yyLookup[i] = yy
	}

	yy = yyLookup[t0]
	bestXY, bestYY := xy, yy

	g0 := pitchGain(xy, xx, yy)
	g := g0

	for k := 2; k <= 15; k++ {
		t1 := (2*t0 + k) / (2 * k)
		if t1 < minPeriod {
			break
		}
		var t1b int
		if k == 2 {
			if t1+t0 > maxPeriod {
				t1b = t0
			} else {
				t1b = t0 + t1
			}
		} else {
			t1b = (2*secondCheck[k]*t0 + k) / (2 * k)
		}
		xy1 := innerProd(x[maxPeriod:], x[maxPeriod-t1:], n)
		xy2 := innerProd(x[maxPeriod:], x[maxPeriod-t1b:], n)
		xyAvg := (xy1 + xy2) / 2
		yyAvg := (yyLookup[t1] + yyLookup[t1b]) / 2

		g1 := pitchGain(xyAvg, xx, yyAvg)
		var cont float64
		if absInt(t1-prevPeriod) <= 1 {
			cont = prevGain
		} else if absInt(t1-prevPeriod) <= 2 && 5*k*k < t0 {
			cont = prevGain / 2
		}

		var thresh float64
		switch {
		case t1 < 3*minPeriod:
			thresh = math.Max(0.85*g0-cont, 0.4)
		case t1 < 2*minPeriod:
			thresh = math.Max(0.9*g0-cont, 0.5)
		default:
			thresh = math.Max(0.7*g0-cont, 0.3)
		}
		if g1 > thresh {
			bestXY, bestYY = xyAvg, yyAvg
			t = t1
			g = g1
		}
	}

	if bestXY < 0 {
		bestXY = 0
	}
	pg := 1.0
	if bestYY > bestXY {
		pg = bestXY / (bestYY + 1)
	}

	var xc [3]float64
	for k := 0; k < 3; k++ {
		xc[k] = innerProd(x[maxPeriod:], x[maxPeriod-(t+k-1):], n)
	}
	offset := 0
	if xc[2]-xc[0] > 0.7*(xc[1]-xc[0]) {
		offset = 1
	} else if xc[0]-xc[2] > 0.7*(xc[1]-xc[2]) {
		offset = -1
	}

	if pg > g {
		pg = g
	}
	finalT0 := 2*t + offset
	if finalT0 < initMinPeriod {
		finalT0 = initMinPeriod
	}
	return finalT0, pg
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
