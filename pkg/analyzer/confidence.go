package analyzer

import "math"

// Entropy level labels
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
	LevelNone   = "None"
)

// Assessment is the confidence narrative for a key, derived only from its
// computed entropy.
type Assessment struct {
	Score      float64
	MaxScore   float64
	Normalized float64
	Confidence float64
	Level      string
}

// Assess scores key bytes and relates the score to the maximum possible for
// that length.
func Assess(key []byte) Assessment {
	return AssessScore(Entropy(key), len(key))
}

// AssessScore builds the narrative for an already computed score over n bytes
func AssessScore(score float64, n int) Assessment {
	a := Assessment{Score: score, MaxScore: MaxEntropy(n), Level: LevelNone}
	if a.MaxScore > 0 {
		a.Normalized = math.Min(score/a.MaxScore, 1)
	}
	a.Confidence = math.Round(a.Normalized*1000) / 10

	switch {
	case a.Normalized >= 0.9:
		a.Level = LevelHigh
	case a.Normalized >= 0.6:
		a.Level = LevelMedium
	case a.Normalized > 0:
		a.Level = LevelLow
	}
	return a
}

// LowEntropyThreshold maps a security level (1-3) to the normalized score
// below which a key is flagged as low entropy.
func LowEntropyThreshold(securityLevel int) float64 {
	switch securityLevel {
	case 1:
		return 0.25
	case 3:
		return 0.75
	default:
		return 0.5
	}
}
