package dsp

import "math"

var dctScale = math.Sqrt(2.0 / float64(NbBands))

// Dct computes the orthonormal NbBands-point DCT of x into out:
// out[i] = sqrt(2/NbBands) * sum_j x[j] * DCTTable[j*NbBands+i].
func Dct(out, x []float64) {
	if len(out) != NbBands || len(x) != NbBands {
		panic("dsp: Dct requires NbBands-length in/out slices")
	}
	table := GetCommonTables().DCTTable
	for i := 0; i < NbBands; i++ {
		sum := 0.0
		for j := 0; j < NbBands; j++ {
			sum += x[j] * table[j*NbBands+i]
		}
		out[i] = sum * dctScale
	}
}
