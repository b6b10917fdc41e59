package analyzer

import "math"

// Entropy computes the Shannon entropy of a window, in bits per byte.
// Byte values absent from the window contribute nothing. An empty window
// scores 0; callers scanning windows always pass at least one byte.
func Entropy(window []byte) float64 {
	if len(window) == 0 {
		return 0
	}

	var freq [256]int
	for _, b := range window {
		freq[b]++
	}

	// H = -Σ p(x) * log2(p(x))
	var entropy float64
	length := float64(len(window))
	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// MaxEntropy is the upper bound of Entropy for a window of n bytes
func MaxEntropy(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n > 256 {
		n = 256
	}
	return math.Log2(float64(n))
}
