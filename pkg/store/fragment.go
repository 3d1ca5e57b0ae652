package store

// FragmentMetadata describes where an indexed fragment came from.
// It is written once at ingestion time and never mutated by retrieval.
type FragmentMetadata struct {
	Source      string `json:"source"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
	Section     string `json:"section"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Fragment is one retrievable unit of indexed text plus metadata.
type Fragment struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Score    float64          `json:"score"`
	Metadata FragmentMetadata `json:"metadata"`
}
