package retriever

import (
	"context"
	"fmt"
	"log"

	"afcon-assistant-be/internal/repository/contract"
	"afcon-assistant-be/pkg/embedding"
	"afcon-assistant-be/pkg/store"
)

// RetrievalError signals that semantic retrieval could not run, either
// because embedding the question failed or the vector search did.
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("semantic retrieval failed: %v", e.Cause)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Retriever embeds the question, pulls a candidate pool from the vector
// store and reranks it for diversity before handing fragments to the answer
// synthesizer.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	repo     contract.FragmentRepository
	logger   *log.Logger

	// TopK is the number of fragments returned after reranking. FetchK is
	// the size of the candidate pool the rerank selects from.
	TopK   int
	FetchK int
	// Lambda balances relevance against diversity in the rerank, 1.0 being
	// pure relevance.
	Lambda float64
}

func NewRetriever(embedder embedding.EmbeddingProvider, repo contract.FragmentRepository, logger *log.Logger, topK, fetchK int, lambda float64) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	if fetchK < topK {
		fetchK = topK
	}
	return &Retriever{
		embedder: embedder,
		repo:     repo,
		logger:   logger,
		TopK:     topK,
		FetchK:   fetchK,
		Lambda:   lambda,
	}
}

// Retrieve returns up to TopK fragments relevant to the question, most
// relevant first. Failures are wrapped in RetrievalError so the caller can
// degrade to an empty fragment list.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]store.Fragment, error) {
	resp, err := r.embedder.Generate(question, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, &RetrievalError{Cause: err}
	}
	queryVector := resp.Embedding.Values

	scored, err := r.repo.SearchSimilarWithScore(ctx, queryVector, r.FetchK)
	if err != nil {
		return nil, &RetrievalError{Cause: err}
	}
	if len(scored) == 0 {
		return nil, nil
	}

	selected := rerankMMR(scored, r.TopK, r.Lambda)

	fragments := make([]store.Fragment, 0, len(selected))
	for _, s := range selected {
		fragments = append(fragments, store.Fragment{
			ID:       s.Fragment.Id.String(),
			Content:  s.Fragment.Content,
			Score:    s.Similarity,
			Metadata: s.Fragment.Metadata,
		})
	}
	r.logger.Printf("[RETRIEVER] Selected %d of %d candidate fragments", len(fragments), len(scored))
	return fragments, nil
}
