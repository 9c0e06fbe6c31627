package features

import "math"

// tonalBasis holds the 6x12 projection from pitch-class energy onto
// the tonal centroid space: sin/cos pairs over the circle of fifths,
// minor thirds and major thirds, with the third-interval pairs at
// reduced radius.
//
// sonido's TonnetzAnalyzer exposes a 2-D lattice trajectory; the
// dataset schema needs the full 6-D centroid, so the projection is
// built here.
var tonalBasis = buildTonalBasis()

func buildTonalBasis() [NumTonnetz][12]float64 {
	scale := [NumTonnetz]float64{7.0 / 6.0, 7.0 / 6.0, 3.0 / 2.0, 3.0 / 2.0, 2.0 / 3.0, 2.0 / 3.0}
	radius := [NumTonnetz]float64{1.0, 1.0, 1.0, 1.0, 0.5, 0.5}

	var basis [NumTonnetz][12]float64
	for d := range NumTonnetz {
		for pc := range 12 {
			v := scale[d] * float64(pc)
			if d%2 == 0 {
				// Even rows are the sin component of each pair.
				v -= 0.5
			}
			basis[d][pc] = radius[d] * math.Cos(math.Pi*v)
		}
	}
	return basis
}

// tonalCentroid projects a frame-major chromagram onto the 6-D tonal
// centroid space. Each frame is L1-normalized before projection so the
// centroid tracks harmonic content rather than loudness.
func tonalCentroid(chromagram [][]float64) [][]float64 {
	centroids := make([][]float64, len(chromagram))

	for t, frame := range chromagram {
		centroids[t] = make([]float64, NumTonnetz)

		norm := 0.0
		for _, c := range frame {
			norm += math.Abs(c)
		}
		if norm < 1e-10 {
			continue
		}

		for d := range NumTonnetz {
			sum := 0.0
			for pc := 0; pc < 12 && pc < len(frame); pc++ {
				sum += tonalBasis[d][pc] * frame[pc]
			}
			centroids[t][d] = sum / norm
		}
	}

	return centroids
}
