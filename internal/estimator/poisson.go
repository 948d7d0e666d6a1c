package estimator

import (
	"math"
	"math/rand"
)

// poissonPMF returns P(X = k) for X ~ Poisson(lambda)
func poissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// poissonCDF returns P(X <= k) for X ~ Poisson(lambda)
func poissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	sum := 0.0
	term := math.Exp(-lambda)
	for i := 0; i <= k; i++ {
		if i > 0 {
			term *= lambda / float64(i)
		}
		sum += term
	}
	return math.Min(sum, 1)
}

// overProbability returns P(X > line); half-lines make this P(X >= ceil(line))
func overProbability(line, lambda float64) float64 {
	return 1 - poissonCDF(int(math.Floor(line)), lambda)
}

// samplePoisson draws from Poisson(lambda) with Knuth's multiplication method.
// Expected goals stay well below the range where exp(-lambda) underflows.
func samplePoisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}
