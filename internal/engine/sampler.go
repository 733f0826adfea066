package engine

import (
	"math"
	"math/rand"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Sample draws min(count, len(candidates)) distinct questions, each draw
// proportional to the weights of the candidates still in the pool.
// When the remaining weights sum to zero or less the draw is uniform.
func Sample(candidates []model.Question, count int, rng *rand.Rand) []model.Question {
	if count <= 0 || len(candidates) == 0 {
		return []model.Question{}
	}
	if count > len(candidates) {
		count = len(candidates)
	}

	pool := make([]int, len(candidates))
	for i := range pool {
		pool[i] = i
	}

	out := make([]model.Question, 0, count)
	for len(out) < count {
		k := pick(candidates, pool, rng)
		out = append(out, candidates[pool[k]])
		pool = append(pool[:k], pool[k+1:]...)
	}
	return out
}

// pick returns a position in pool.
func pick(candidates []model.Question, pool []int, rng *rand.Rand) int {
	var total float64
	for _, idx := range pool {
		total += weight(candidates[idx])
	}
	if !(total > 0) {
		return rng.Intn(len(pool))
	}

	r := rng.Float64() * total
	last := 0
	for k, idx := range pool {
		w := weight(candidates[idx])
		if w == 0 {
			continue
		}
		last = k
		r -= w
		if r <= 0 {
			return k
		}
	}
	return last
}

// weight treats non-positive, NaN and infinite weights as zero.
func weight(q model.Question) float64 {
	if q.Weight > 0 && !math.IsInf(q.Weight, 1) {
		return q.Weight
	}
	return 0
}
