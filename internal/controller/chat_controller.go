package controller

import (
	"afcon-assistant-be/internal/dto"
	"afcon-assistant-be/internal/pkg/serverutils"
	"afcon-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	assistantService service.IAssistantService
}

func NewChatController(assistantService service.IAssistantService) IChatController {
	return &chatController{
		assistantService: assistantService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Chat)
}

// Chat answers one question. The session is identified by the X-Session-Id
// header; a missing header starts a fresh session and the response carries
// the new id.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionId := ctx.Get("X-Session-Id")

	res, err := c.assistantService.Chat(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	ctx.Set("X-Session-Id", res.SessionId)
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}
