package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/observability"
)

// StatusHandler exposes ticket counters and interaction metrics for
// operators.
type StatusHandler struct {
	counters *counter.Store
	metrics  *observability.Metrics
}

// NewStatusHandler returns a new handler instance.
func NewStatusHandler(counters *counter.Store, metrics *observability.Metrics) *StatusHandler {
	return &StatusHandler{counters: counters, metrics: metrics}
}

// Status reports the current ticket counters and interaction totals.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	tickets := fiber.Map{}
	if h.counters != nil {
		for t, n := range h.counters.Snapshot() {
			tickets[string(t)] = n
		}
	}

	interactions, errors := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"tickets":      tickets,
		"interactions": interactions,
		"errors":       errors,
	})
}
