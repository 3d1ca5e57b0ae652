package contract

import (
	"context"

	"github.com/google/uuid"

	"afcon-assistant-be/internal/entity"
)

// ScoredFragment pairs a stored fragment with its cosine similarity to a query.
type ScoredFragment struct {
	Fragment   *entity.Fragment
	Similarity float64
}

type FragmentRepository interface {
	Create(ctx context.Context, fragment *entity.Fragment) error
	CreateBulk(ctx context.Context, fragments []*entity.Fragment) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Fragment, error)
	Count(ctx context.Context) (int64, error)

	// SearchSimilarWithScore returns the closest fragments by cosine similarity,
	// highest first. Read-only: repeated calls against an unchanged index return
	// the same ordered result.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredFragment, error)
}
