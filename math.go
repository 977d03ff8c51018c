package geostats

import (
	"math"
)

func degToRad(angle float64) float64 {
	return angle * math.Pi / 180
}

func exp(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Exp(x)
}

func pow2(x float64) float64 {
	return x * x
}

func pow3(x float64) float64 {
	return x * x * x
}

func euclidean(a, b Coordinate) float64 {
	var s float64
	for i := range a {
		s += pow2(a[i] - b[i])
	}
	return math.Sqrt(s)
}
