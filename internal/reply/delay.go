package reply

import (
	"math/rand/v2"
	"time"
)

// Typing-delay parameters: roughly human typing speed plus a randomized
// thinking pause, so paced delivery feels natural.
const (
	perRuneDelay = 100 * time.Millisecond
	maxTypeDelay = 3 * time.Second
	minThink     = 500 * time.Millisecond
	maxThink     = 2500 * time.Millisecond
)

// TypingDelay estimates how long a human would take to type text. The typing
// component is monotonically non-decreasing in text length up to its cap;
// the thinking component is uniform in [minThink, maxThink). Deterministic
// given a fixed random source.
func TypingDelay(text string, rng *rand.Rand) time.Duration {
	typing := min(time.Duration(len([]rune(text)))*perRuneDelay, maxTypeDelay)

	span := int64(maxThink - minThink)
	var think time.Duration
	if rng != nil {
		think = minThink + time.Duration(rng.Int64N(span))
	} else {
		think = minThink + time.Duration(rand.Int64N(span))
	}
	return typing + think
}
