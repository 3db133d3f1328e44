package middleware

import (
	"time"

	"event-ticketing/logger"
	"event-ticketing/types"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger records every request and response through the async logger.
// Bodies and headers are deep-copied because fiber reuses its buffers.
func RequestLogger(asyncLogger *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		requestBody := string(append([]byte(nil), c.Body()...))
		responseBody := string(append([]byte(nil), c.Response().Body()...))
		requestHeaders := string(append([]byte(nil), c.Request().Header.Header()...))
		responseHeaders := string(append([]byte(nil), c.Response().Header.Header()...))

		asyncLogger.Log(types.LogEntry{
			Method:          string([]byte(c.Method())),
			URL:             string([]byte(c.OriginalURL())),
			RequestBody:     requestBody,
			ResponseBody:    responseBody,
			RequestHeaders:  requestHeaders,
			ResponseHeaders: responseHeaders,
			StatusCode:      c.Response().StatusCode(),
			CreatedAt:       time.Now(),
		})

		return err
	}
}
