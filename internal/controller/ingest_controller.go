package controller

import (
	"afcon-assistant-be/internal/dto"
	"afcon-assistant-be/internal/pkg/serverutils"
	"afcon-assistant-be/internal/service"
	"afcon-assistant-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
}

type ingestController struct {
	publisherService service.IPublisherService
}

func NewIngestController(publisherService service.IPublisherService) IIngestController {
	return &ingestController{
		publisherService: publisherService,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Post("", c.Ingest)
}

// Ingest accepts a document and queues it for embedding. The actual
// chunking and storage happen asynchronously in the consumer.
func (c *ingestController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	msg := dto.PublishIngestFragmentMessage{
		Content: req.Content,
		Metadata: store.FragmentMetadata{
			Source:   req.Source,
			Category: req.Category,
			Section:  req.Section,
		},
	}
	if err := c.publisherService.Publish(msg); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for ingestion", nil))
}
