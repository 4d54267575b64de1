// Package recommend turns feedback into a preference vector and ranks the store against it.
package recommend

import "github.com/hyperjump/memefeed/internal/vector"

// ComputePreference returns the arithmetic mean of the embeddings at the liked indices.
// Duplicates count once per occurrence; out-of-range indices are skipped. With no valid
// likes the result is a zero vector of the store's dimension, which ranks every item at 0.
func ComputePreference(liked []int, store *vector.Store) []float32 {
	pref, _ := aggregate(liked, store)
	return pref
}

// aggregate is ComputePreference that also reports how many indices contributed.
func aggregate(liked []int, store *vector.Store) ([]float32, int) {
	dim := store.Dimension()
	sum := make([]float64, dim)
	used := 0
	for _, idx := range liked {
		emb, err := store.EmbeddingAt(idx)
		if err != nil {
			continue
		}
		for j, v := range emb {
			sum[j] += float64(v)
		}
		used++
	}
	pref := make([]float32, dim)
	if used == 0 {
		return pref, 0
	}
	for j := range sum {
		pref[j] = float32(sum[j] / float64(used))
	}
	return pref, used
}
