package calculator

import (
	"errors"
	"math"
)

// ErrNoScores is returned by Mean when there is nothing to average.
var ErrNoScores = errors.New("no scores to average")

// Brier returns the squared error between a probability and a 0/1 outcome.
func Brier(probability float64, outcome int) float64 {
	d := probability - float64(outcome)
	return d * d
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoScores
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Bucket is one probability band of a reliability table: the mean stated
// probability and the observed frequency of the outcome within the band.
type Bucket struct {
	Lower, Upper float64
	Count        int
	MeanForecast float64
	ObservedRate float64
}

// Reliability groups (probability, outcome) pairs into n equal-width buckets.
// Empty buckets are omitted.
func Reliability(probabilities []float64, outcomes []int, n int) ([]Bucket, error) {
	if len(probabilities) != len(outcomes) {
		return nil, errors.New("probabilities and outcomes differ in length")
	}
	if n <= 0 {
		return nil, errors.New("bucket count must be positive")
	}
	width := 1.0 / float64(n)
	sums := make([]float64, n)
	hits := make([]int, n)
	counts := make([]int, n)
	for i, p := range probabilities {
		idx := int(p / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		sums[idx] += p
		hits[idx] += outcomes[i]
		counts[idx]++
	}
	var out []Bucket
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		out = append(out, Bucket{
			Lower:        float64(i) * width,
			Upper:        float64(i+1) * width,
			Count:        counts[i],
			MeanForecast: sums[i] / float64(counts[i]),
			ObservedRate: float64(hits[i]) / float64(counts[i]),
		})
	}
	return out, nil
}
