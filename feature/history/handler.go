package history

import (
	"errors"

	"watchstate/core/entity"
	"watchstate/core/logger"
	"watchstate/core/store"
	"watchstate/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for history lookups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/history")
	group.Get("/", h.HandleList)
	group.Get("/lookup", h.HandleLookup)
	group.Get("/:id", h.HandleGet)
}

// HandleList lists entities. Query: type, watched (0/1), via, limit.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	f := Filter{
		Type: entity.Type(c.Query("type")),
		Via:  c.Query("via"),
	}
	if raw := c.Query("watched"); raw != "" {
		w, ok := utils.ToBool(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "watched must be 0 or 1"})
		}
		f.Watched = &w
	}
	if raw := c.Query("limit"); raw != "" {
		n, ok := utils.ToInt64(raw)
		if !ok || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive number"})
		}
		f.Limit = int(n)
	}

	items, err := h.service.List(c.Context(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"count": len(items), "items": items})
}

// HandleLookup finds the entity claiming ?pointer=, optionally restricted by ?type=.
func (h *Handler) HandleLookup(c *fiber.Ctx) error {
	pointer := c.Query("pointer")
	if pointer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pointer is required"})
	}

	e, err := h.service.Lookup(c.Context(), pointer, entity.Type(c.Query("type")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(e)
}

// HandleGet returns one entity by id.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, ok := utils.ToInt64(c.Params("id"))
	if !ok || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a positive number"})
	}

	e, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(e)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrBadQuery):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	logger.WithRayID(h.service.logger, c).Error("History query failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
