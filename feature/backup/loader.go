package backup

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates a new backup feature. It is disabled when no bucket is configured.
func NewFeature(svc *Service) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc), enabled: svc.cfg.Bucket != ""}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "backup"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
