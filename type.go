package geostats

type ModelType string

const (
	Gaussian    ModelType = "gaussian"
	Exponential ModelType = "exponential"
	Spherical   ModelType = "spherical"
)

type KrigingKind string

const (
	Ordinary KrigingKind = "ordinary"
	Simple   KrigingKind = "simple"
)

type NeighborhoodKind string

const (
	Unlimited NeighborhoodKind = "unlimited"
	KNearest  NeighborhoodKind = "knearest"
	Radius    NeighborhoodKind = "radius"
)

// DistanceList holds (lag, semivariance) pairs.
type DistanceList [][2]float64

func (t DistanceList) Len() int {
	return len(t)
}

func (t DistanceList) Less(i, j int) bool {
	return t[i][0] < t[j][0]
}

func (t DistanceList) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}
