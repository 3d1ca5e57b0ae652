package controller

import (
	"fmt"

	"afcon-assistant-be/internal/pkg/serverutils"
	"afcon-assistant-be/pkg/tools"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	db       *gorm.DB
	registry *tools.Registry
}

func NewHealthController(db *gorm.DB, registry *tools.Registry) IHealthController {
	return &healthController{db: db, registry: registry}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

// Health pings the database (which also backs the vector store) and reports
// how many tools are registered.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	status := map[string]string{
		"database":     "up",
		"vector_store": "up",
		"tools":        fmt.Sprintf("%d registered", len(c.registry.All())),
	}

	sqlDB, err := c.db.DB()
	if err != nil || sqlDB.PingContext(ctx.Context()) != nil {
		status["database"] = "down"
		status["vector_store"] = "down"
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("Degraded", status))
	}

	return ctx.JSON(serverutils.SuccessResponse("Healthy", status))
}
