package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"afcon-assistant-be/internal/entity"
	"afcon-assistant-be/internal/mapper"
	"afcon-assistant-be/internal/model"
	"afcon-assistant-be/internal/repository/contract"
)

type FragmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FragmentMapper
}

func NewFragmentRepository(db *gorm.DB) contract.FragmentRepository {
	return &FragmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewFragmentMapper(),
	}
}

func (r *FragmentRepositoryImpl) Create(ctx context.Context, fragment *entity.Fragment) error {
	m := r.mapper.ToModel(fragment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*fragment = *r.mapper.ToEntity(m)
	return nil
}

func (r *FragmentRepositoryImpl) CreateBulk(ctx context.Context, fragments []*entity.Fragment) error {
	models := make([]*model.Fragment, len(fragments))
	for i, f := range fragments {
		models[i] = r.mapper.ToModel(f)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*fragments[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *FragmentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Fragment, error) {
	var m model.Fragment
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FragmentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Fragment{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns fragments with cosine similarity scores.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding_value <=> query_vector) = cosine_similarity.
func (r *FragmentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredFragment, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Fragment
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("fragments").
		Select("fragments.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredFragment, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredFragment{
			Fragment:   r.mapper.ToEntity(&res.Fragment),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
