package dashboard

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
)

// scottBandwidth returns the Gaussian kernel bandwidth sd * n^(-1/5).
// It is zero when the sample cannot support a density estimate.
func scottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return sd * math.Pow(float64(len(values)), -0.2)
}

// densityLine evaluates a Gaussian kernel density estimate of values at
// samples points across [min, max], scaled by scale so that it can be
// overlaid on a count histogram. ok is false when no estimate exists.
func densityLine(values []float64, samples int, scale float64) (xys plotter.XYs, ok bool) {
	bw := scottBandwidth(values)
	if bw == 0 || samples < 2 {
		return nil, false
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	n := float64(len(values))
	step := (hi - lo) / float64(samples-1)

	xys = make(plotter.XYs, samples)
	for i := range xys {
		x := lo + float64(i)*step
		var density float64
		for _, v := range values {
			density += kernel.Prob(x - v)
		}
		xys[i].X = x
		xys[i].Y = density / n * scale
	}
	return xys, true
}
