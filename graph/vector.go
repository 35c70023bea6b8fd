package graph

import "math"

// normEpsilon floors the L2 norm when normalizing.
const normEpsilon = 1e-12

// Normalize returns a unit-length copy of v.
func Normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	norm := max(math.Sqrt(sumSquares), normEpsilon)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Dot returns the dot product of a and b, accumulated in float64.
// Vectors of different lengths are compared over their common prefix.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Similarities returns the dot product of every node vector with query.
// The query must already be unit length; results are clamped to [-1, 1].
func (x *Index) Similarities(query []float32) []float64 {
	sims := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		sims[i] = Clamp(Dot(v, query))
	}
	return sims
}

// SubgraphEmbedding returns the re-normalized mean of the vectors of the given nodes.
func (x *Index) SubgraphEmbedding(indices []int) []float32 {
	if len(indices) == 0 || x.dim == 0 {
		return nil
	}
	sum := make([]float64, x.dim)
	for _, i := range indices {
		for j, v := range x.vectors[i] {
			sum[j] += float64(v)
		}
	}
	mean := make([]float32, x.dim)
	n := float64(len(indices))
	for j := range sum {
		mean[j] = float32(sum[j] / n)
	}
	return Normalize(mean)
}

// Clamp bounds a similarity score to [-1, 1].
func Clamp(score float64) float64 {
	return math.Max(-1, math.Min(1, score))
}
