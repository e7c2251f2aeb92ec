package dice

import "go.uber.org/zap"

// chanceScale is the number of equally likely outcomes of one Chance draw.
// A probability p succeeds on ceil(p*chanceScale) of them, so any p > 0 keeps
// a nonzero chance and the error is below 1/chanceScale.
const chanceScale = 1 << 30

// Chance performs a Bernoulli trial that succeeds with probability p.
//
// Precondition: src must be non-nil.
// Postcondition: Returns false when p <= 0 and true when p >= 1 without
// consuming randomness; otherwise consumes exactly one Intn draw.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return float64(src.Intn(chanceScale)) < p*chanceScale
}

// Between returns a uniformly random int in [lo, hi).
//
// Precondition: hi > lo; src must be non-nil.
func Between(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo)
}

// Select returns a uniformly chosen element of options.
//
// Precondition: len(options) > 0; src must be non-nil.
func Select[T any](src Source, options []T) T {
	return options[src.Intn(len(options))]
}

// loggedSource wraps a Source and logs every draw at debug level.
type loggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a Source that draws from src and logs each draw to
// logger, which makes seeded sessions easy to replay and compare.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) Source {
	return &loggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and result.
func (l *loggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw", zap.Int("n", n), zap.Int("value", v))
	return v
}
