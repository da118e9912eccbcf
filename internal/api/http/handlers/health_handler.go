package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GatewayProbe reports the state of the Discord gateway connection.
type GatewayProbe interface {
	Ready() bool
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	gateway     GatewayProbe
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, gateway GatewayProbe) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, gateway: gateway}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness based on the gateway connection.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.gateway == nil || !h.gateway.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "discord gateway not connected",
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{"discord_gateway": "ok"},
	})
}
