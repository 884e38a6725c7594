package usecases

import (
	"math"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/geospatial"
)

// SampleCount is the number of evenly spaced points compared between a
// candidate path and a saved path.
const SampleCount = 5

// SelectBestMatch returns the index of the alternative whose shape best
// matches saved. With a single alternative or an empty saved path it
// returns 0. Ties go to the lowest index.
func SelectBestMatch(alternatives [][]domain.Coordinate, saved []domain.Coordinate) int {
	if len(alternatives) <= 1 || len(saved) == 0 {
		return 0
	}
	best, bestScore := 0, math.Inf(1)
	for i, alt := range alternatives {
		if s := Score(alt, saved); s < bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// Score is the mean haversine distance in kilometers between up to
// SampleCount evenly spaced points of alt and saved. An empty path scores +Inf.
func Score(alt, saved []domain.Coordinate) float64 {
	n := min(SampleCount, len(alt), len(saved))
	if n == 0 {
		return math.Inf(1)
	}
	var total float64
	for i := 0; i < n; i++ {
		total += geospatial.DistanceKm(alt[sampleIndex(i, n, len(alt))], saved[sampleIndex(i, n, len(saved))])
	}
	return total / float64(n)
}

// sampleIndex maps sample i of n onto a path of length size.
func sampleIndex(i, n, size int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(size-1) / float64(n-1)))
}
