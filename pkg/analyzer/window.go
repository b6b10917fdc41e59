package analyzer

import (
	"golang.org/x/sync/errgroup"
)

// DefaultWindowLen is the width of the key-material window
const DefaultWindowLen = 5

// minShardWindows is the smallest number of windows worth a goroutine
var minShardWindows = 4096

// Candidate is the best-scoring window of a scan
type Candidate struct {
	Offset int
	Bytes  []byte
	Score  float64
}

// beats reports whether c should replace best: strictly higher score, or an
// equal score at an earlier offset.
func (c Candidate) beats(best Candidate) bool {
	if c.Score != best.Score {
		return c.Score > best.Score
	}
	return c.Offset < best.Offset
}

// FindEntropyKey scans every window of length k and returns the one with the
// strictly greatest entropy. Ties keep the earliest window. Returns false when
// the buffer is shorter than k.
func FindEntropyKey(buffer []byte, k int) (Candidate, bool) {
	if k < 1 || len(buffer) < k {
		return Candidate{}, false
	}
	offset, score := scanRange(buffer, k, 0, len(buffer)-k)
	return newCandidate(buffer, k, offset, score), true
}

// FindEntropyKeyParallel splits the window offsets into contiguous shards,
// scores them concurrently and merges the shard winners with offset as the
// tie-break. The result is always identical to FindEntropyKey.
func FindEntropyKeyParallel(buffer []byte, k, shards int) (Candidate, bool) {
	if k < 1 || len(buffer) < k {
		return Candidate{}, false
	}

	windows := len(buffer) - k + 1
	if shards > windows/minShardWindows {
		shards = windows / minShardWindows
	}
	if shards <= 1 {
		return FindEntropyKey(buffer, k)
	}

	type shardBest struct {
		offset int
		score  float64
	}
	results := make([]shardBest, shards)
	per := (windows + shards - 1) / shards

	var g errgroup.Group
	for i := 0; i < shards; i++ {
		i := i
		first := i * per
		last := first + per - 1
		if last > windows-1 {
			last = windows - 1
		}
		if first > last {
			results[i] = shardBest{offset: -1}
			continue
		}
		g.Go(func() error {
			off, score := scanRange(buffer, k, first, last)
			results[i] = shardBest{offset: off, score: score}
			return nil
		})
	}
	// Shard scans never fail.
	_ = g.Wait()

	best := Candidate{Offset: -1}
	for _, r := range results {
		if r.offset < 0 {
			continue
		}
		c := Candidate{Offset: r.offset, Score: r.score}
		if best.Offset < 0 || c.beats(best) {
			best = c
		}
	}
	return newCandidate(buffer, k, best.Offset, best.Score), true
}

// scanRange scores windows starting at offsets first..last inclusive. The
// first window seeds the best so an all-zero range returns first.
func scanRange(buffer []byte, k, first, last int) (int, float64) {
	bestOffset := first
	bestScore := Entropy(buffer[first : first+k])
	for i := first + 1; i <= last; i++ {
		score := Entropy(buffer[i : i+k])
		if score > bestScore {
			bestScore = score
			bestOffset = i
		}
	}
	return bestOffset, bestScore
}

func newCandidate(buffer []byte, k, offset int, score float64) Candidate {
	window := make([]byte, k)
	copy(window, buffer[offset:offset+k])
	return Candidate{Offset: offset, Bytes: window, Score: score}
}
