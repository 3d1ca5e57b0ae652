package mapper

import (
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"

	"afcon-assistant-be/internal/entity"
	"afcon-assistant-be/internal/model"
	"afcon-assistant-be/pkg/store"
)

type FragmentMapper struct{}

func NewFragmentMapper() *FragmentMapper {
	return &FragmentMapper{}
}

func (m *FragmentMapper) ToEntity(f *model.Fragment) *entity.Fragment {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	var meta store.FragmentMetadata
	if len(f.Metadata) > 0 {
		// Metadata written at ingestion time; a decode failure leaves zero values
		_ = json.Unmarshal(f.Metadata, &meta)
	}

	return &entity.Fragment{
		Id:             f.Id,
		Content:        f.Content,
		EmbeddingValue: f.EmbeddingValue.Slice(),
		Metadata:       meta,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *FragmentMapper) ToModel(f *entity.Fragment) *model.Fragment {
	if f == nil {
		return nil
	}

	metaBytes, _ := json.Marshal(f.Metadata)

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.Fragment{
		Id:             f.Id,
		Content:        f.Content,
		EmbeddingValue: pgvector.NewVector(f.EmbeddingValue),
		Metadata:       metaBytes,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *FragmentMapper) ToEntities(fragments []*model.Fragment) []*entity.Fragment {
	entities := make([]*entity.Fragment, len(fragments))
	for i, f := range fragments {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
