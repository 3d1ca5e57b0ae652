package serverutils

import (
	"errors"
	"log"

	"afcon-assistant-be/pkg/rag/response"

	"github.com/gofiber/fiber/v2"
)

// userSafeApology is what the client sees when answer synthesis itself is
// down. Raw error text never reaches the end user.
const userSafeApology = "Sorry, I am unable to answer right now. Please try again in a moment."

// ErrorHandlerMiddleware converts errors bubbling out of handlers into JSON
// envelopes with appropriate status codes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var genErr *response.GenerationError
		if errors.As(err, &genErr) {
			log.Printf("[ERROR] Answer generation failed: %v", genErr)
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(userSafeApology))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Printf("[ERROR] Unhandled request error: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
