package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"afcon-assistant-be/internal/dto"
	"afcon-assistant-be/internal/entity"
	"afcon-assistant-be/internal/repository/contract"
	"afcon-assistant-be/pkg/embedding"
	"afcon-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	fragmentRepo      contract.FragmentRepository
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	fragmentRepo contract.FragmentRepository,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		fragmentRepo:      fragmentRepo,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestFragmentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Ingesting fragment from source %q (content length: %d)", payload.Metadata.Source, len(payload.Content))

	// Long documents are split so each stored fragment stays inside the
	// embedding model's context window.
	chunks := utils.SplitText(payload.Content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var fragments []*entity.Fragment
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d: %v", i, err)
			msg.Nack() // Retriable
			return
		}

		metadata := payload.Metadata
		metadata.ChunkIndex = i
		metadata.TotalChunks = len(chunks)

		fragments = append(fragments, &entity.Fragment{
			Id:             uuid.New(),
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			Metadata:       metadata,
			CreatedAt:      time.Now(),
		})
	}

	if len(fragments) > 0 {
		if err := cs.fragmentRepo.CreateBulk(ctx, fragments); err != nil {
			log.Printf("[ERROR] Failed to store fragments: %v", err)
			msg.Nack()
			return
		}
	}

	log.Printf("[SUCCESS] Stored %d fragments from source %q", len(fragments), payload.Metadata.Source)
	msg.Ack()
}
