package vector

import "sort"

// Scored is a ranked item index with its cosine similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// RankScored scores every stored embedding against query and returns the top k,
// highest score first. Equal scores keep ascending index order.
// k <= 0 yields an empty slice; k > Size is clamped.
func RankScored(query []float32, store *Store, k int) []Scored {
	if k <= 0 || store == nil || store.Size() == 0 {
		return []Scored{}
	}
	scores := make([]Scored, store.Size())
	for i := range scores {
		scores[i] = Scored{Index: i, Score: CosineSimilarity(query, store.vectorAt(i))}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Index < scores[j].Index
	})
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k:k]
}

// Rank returns the indices of the top k items for query. See RankScored.
func Rank(query []float32, store *Store, k int) []int {
	scored := RankScored(query, store, k)
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.Index
	}
	return out
}
