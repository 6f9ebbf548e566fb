package rng

import "errors"

var (
	ErrEmptyWeights    = errors.New("weights cannot be empty")
	ErrNegativeWeight  = errors.New("weights cannot be negative")
	ErrZeroTotalWeight = errors.New("total weight must be positive")
)

// Intn maps one draw onto [0, n). n must be positive.
func Intn(src Source, n int) int {
	if n <= 0 {
		panic("rng: Intn called with non-positive n")
	}
	i := int(src.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Next() < p
}

// Shuffle performs a Fisher-Yates shuffle over n elements using swap.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, Intn(src, i+1))
	}
}

// SelectWeighted picks an index with probability proportional to its weight.
func SelectWeighted(src Source, weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, ErrEmptyWeights
	}

	var total float64
	for _, w := range weights {
		if w < 0 {
			return 0, ErrNegativeWeight
		}
		total += w
	}
	if total <= 0 {
		return 0, ErrZeroTotalWeight
	}

	target := src.Next() * total

	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i, nil
		}
	}

	return len(weights) - 1, nil
}
