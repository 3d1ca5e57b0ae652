package entity

import (
	"time"

	"github.com/google/uuid"

	"afcon-assistant-be/pkg/store"
)

// Fragment is the persisted form of an indexed text fragment.
type Fragment struct {
	Id             uuid.UUID
	Content        string
	EmbeddingValue []float32
	Metadata       store.FragmentMetadata
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
