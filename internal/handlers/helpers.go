package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/logging"
)

// EventPublisher is what handlers need from the kafka producer. A nil
// publisher disables events (tests, local runs without a broker).
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

func publish(c echo.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed",
			"topic", topic, "error", err)
	}
}
