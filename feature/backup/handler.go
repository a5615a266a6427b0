package backup

import (
	"watchstate/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for snapshots.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the backup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/backup")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleBackup)
}

// HandleList lists the stored snapshots, oldest first.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	names, err := h.service.List(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Snapshot listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"snapshots": names})
}

// HandleBackup writes a snapshot now.
func (h *Handler) HandleBackup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering snapshot")

	res, err := h.service.Backup(c.Context())
	if err != nil {
		l.Error("Snapshot failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
