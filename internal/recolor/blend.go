package recolor

// AdaptiveAlpha scales the base strength by lightness so that shadowed pixels
// are tinted less than bright ones. It ranges from 0.6*alpha at L=0 to alpha
// at L=LMax.
func AdaptiveAlpha(l, alpha float64) float64 {
	return alpha * (0.6 + 0.4*(l/LMax))
}

// Blend steers the chroma of src toward target inside mask.
//
// The L plane is copied unchanged. For each pixel the weight is
// mask * AdaptiveAlpha(L, alpha) and the a/b channels are linearly
// interpolated toward the target's a/b, then clamped to [ChromaMin, ChromaMax].
// src and mask are not modified; both must share dimensions and alpha must
// already be validated.
func Blend(src *LabImage, mask *Mask, target LabPixel, alpha float64) *LabImage {
	out := newLabImage(src.Width, src.Height)
	copy(out.L, src.L)

	n := len(src.L)
	targetA := constantPlane(n, target.A)
	targetB := constantPlane(n, target.B)

	for i := 0; i < n; i++ {
		w := mask.Values[i] * AdaptiveAlpha(src.L[i], alpha)
		out.A[i] = clampChroma(src.A[i]*(1-w) + targetA[i]*w)
		out.B[i] = clampChroma(src.B[i]*(1-w) + targetB[i]*w)
	}
	return out
}

// constantPlane materializes a plane of n copies of v.
func constantPlane(n int, v float64) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = v
	}
	return p
}

func clampChroma(v float64) float64 {
	if v < ChromaMin {
		return ChromaMin
	}
	if v > ChromaMax {
		return ChromaMax
	}
	return v
}
