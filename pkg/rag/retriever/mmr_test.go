package retriever

import (
	"testing"

	"afcon-assistant-be/internal/entity"
	"afcon-assistant-be/internal/repository/contract"
)

func candidate(similarity float64, vector []float32) *contract.ScoredFragment {
	return &contract.ScoredFragment{
		Fragment:   &entity.Fragment{EmbeddingValue: vector},
		Similarity: similarity,
	}
}

func TestRerankMMRPrefersDiversity(t *testing.T) {
	// Two near-duplicates with high relevance plus one distinct candidate.
	// With lambda 0.5 the distinct one must displace the duplicate.
	a := candidate(0.95, []float32{1, 0, 0})
	aDup := candidate(0.94, []float32{1, 0.01, 0})
	b := candidate(0.70, []float32{0, 1, 0})

	selected := rerankMMR([]*contract.ScoredFragment{a, aDup, b}, 2, 0.5)

	if len(selected) != 2 {
		t.Fatalf("selected = %d, want 2", len(selected))
	}
	if selected[0] != a {
		t.Errorf("first pick should be the most relevant candidate")
	}
	if selected[1] != b {
		t.Errorf("second pick should be the diverse candidate, got duplicate")
	}
}

func TestRerankMMRPureRelevance(t *testing.T) {
	a := candidate(0.9, []float32{1, 0})
	aDup := candidate(0.8, []float32{1, 0})
	b := candidate(0.1, []float32{0, 1})

	// lambda 1.0 ignores redundancy entirely.
	selected := rerankMMR([]*contract.ScoredFragment{a, aDup, b}, 2, 1.0)
	if selected[0] != a || selected[1] != aDup {
		t.Errorf("pure relevance should keep the top scored candidates")
	}
}

func TestRerankMMRSmallPool(t *testing.T) {
	a := candidate(0.9, []float32{1, 0})
	b := candidate(0.8, []float32{0, 1})

	selected := rerankMMR([]*contract.ScoredFragment{a, b}, 5, 0.5)
	if len(selected) != 2 {
		t.Errorf("k larger than the pool should return the whole pool")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
