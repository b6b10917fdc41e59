package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEntropy(t *testing.T) {
	t.Run("identical bytes score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Entropy([]byte{7, 7, 7, 7, 7}))
		assert.Equal(t, 0.0, Entropy([]byte{0}))
	})

	t.Run("distinct bytes reach log2(K)", func(t *testing.T) {
		assert.Equal(t, math.Log2(5), Entropy([]byte{1, 2, 3, 4, 5}))
		assert.Equal(t, 2.0, Entropy([]byte{0x00, 0x10, 0x20, 0x30}))
	})

	t.Run("two symbols evenly split", func(t *testing.T) {
		assert.InDelta(t, 1.0, Entropy([]byte{1, 2, 1, 2}), 1e-12)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Equal(t, 0.0, Entropy(nil))
	})
}

func TestEntropyBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		window := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "window")
		h := Entropy(window)
		if h < 0 {
			t.Fatalf("negative entropy %v", h)
		}
		if h > MaxEntropy(len(window))+1e-9 {
			t.Fatalf("entropy %v exceeds log2(%d)", h, len(window))
		}
	})
}

func TestEntropyIdenticalWindows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := rapid.Byte().Draw(t, "b")
		n := rapid.IntRange(1, 64).Draw(t, "n")
		window := make([]byte, n)
		for i := range window {
			window[i] = b
		}
		if h := Entropy(window); h != 0 {
			t.Fatalf("entropy of identical bytes = %v", h)
		}
	})
}

func TestMaxEntropy(t *testing.T) {
	assert.Equal(t, 0.0, MaxEntropy(0))
	assert.Equal(t, 0.0, MaxEntropy(1))
	assert.Equal(t, 1.0, MaxEntropy(2))
	assert.Equal(t, 8.0, MaxEntropy(256))
	assert.Equal(t, 8.0, MaxEntropy(1000))
}

func TestAssess(t *testing.T) {
	t.Run("distinct key is high", func(t *testing.T) {
		a := Assess([]byte{1, 2, 3, 4, 5})
		assert.Equal(t, LevelHigh, a.Level)
		assert.InDelta(t, 100.0, a.Confidence, 1e-9)
		assert.InDelta(t, math.Log2(5), a.MaxScore, 1e-12)
	})

	t.Run("uniform key is none", func(t *testing.T) {
		a := Assess([]byte{7, 7, 7, 7, 7})
		assert.Equal(t, LevelNone, a.Level)
		assert.Equal(t, 0.0, a.Confidence)
	})

	t.Run("confidence follows the score", func(t *testing.T) {
		// 1,1,2,2,3: H = 1.5219..., log2(5) = 2.3219...
		a := Assess([]byte{1, 1, 2, 2, 3})
		assert.Equal(t, LevelMedium, a.Level)
		assert.InDelta(t, 65.5, a.Confidence, 0.05)

		// 1,1,1,1,2: H = 0.7219...
		a = Assess([]byte{1, 1, 1, 1, 2})
		assert.Equal(t, LevelLow, a.Level)
		assert.InDelta(t, 31.1, a.Confidence, 0.05)
	})

	t.Run("short keys", func(t *testing.T) {
		assert.Equal(t, LevelNone, Assess([]byte{0xAA}).Level)
		assert.Equal(t, LevelNone, Assess(nil).Level)
	})
}

func TestLowEntropyThreshold(t *testing.T) {
	assert.Equal(t, 0.25, LowEntropyThreshold(1))
	assert.Equal(t, 0.5, LowEntropyThreshold(2))
	assert.Equal(t, 0.75, LowEntropyThreshold(3))
	assert.Equal(t, 0.5, LowEntropyThreshold(0))
}
