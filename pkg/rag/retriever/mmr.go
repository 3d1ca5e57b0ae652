package retriever

import (
	"math"

	"afcon-assistant-be/internal/repository/contract"
)

// rerankMMR applies maximal marginal relevance over the candidate pool:
// each round picks the candidate with the best blend of similarity to the
// query and dissimilarity to what is already selected.
func rerankMMR(candidates []*contract.ScoredFragment, k int, lambda float64) []*contract.ScoredFragment {
	if k >= len(candidates) {
		return candidates
	}

	selected := make([]*contract.ScoredFragment, 0, k)
	remaining := make([]*contract.ScoredFragment, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			relevance := cand.Similarity
			redundancy := 0.0
			for _, sel := range selected {
				if sim := cosineSimilarity(cand.Fragment.EmbeddingValue, sel.Fragment.EmbeddingValue); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
