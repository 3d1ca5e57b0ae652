package dto

import "afcon-assistant-be/pkg/store"

// PublishIngestFragmentMessage is the payload placed on the ingestion topic.
// The consumer embeds the content and stores the resulting fragment.
type PublishIngestFragmentMessage struct {
	Content  string                 `json:"content"`
	Metadata store.FragmentMetadata `json:"metadata"`
}

// IngestRequest is the body of POST /api/ingest/v1.
type IngestRequest struct {
	Content  string `json:"content" validate:"required,min=1"`
	Source   string `json:"source" validate:"required"`
	Category string `json:"category"`
	Section  string `json:"section"`
}
