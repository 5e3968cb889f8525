package platform

import "math/rand/v2"

// Random is the source used by augmentation rules that pick from fixed pools.
// *rand.Rand satisfies it, so tests can pass a seeded generator.
type Random interface {
	IntN(n int) int
}

type systemRandom struct{}

func (systemRandom) IntN(n int) int { return rand.IntN(n) }

// SystemRandom returns the process-wide generator. It is safe for concurrent use.
func SystemRandom() Random {
	return systemRandom{}
}

// pick returns k distinct entries of pool in random order.
func pick(rnd Random, pool []string, k int) []string {
	items := append([]string(nil), pool...)
	k = min(k, len(items))
	for i := 0; i < k; i++ {
		j := i + rnd.IntN(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}
