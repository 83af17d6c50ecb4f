package rest

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// requestLogger logs one line per request. Bodies are never logged.
func requestLogger(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		logger.Info(c.UserContext(), "request",
			"method", utils.CopyString(c.Method()),
			"path", utils.CopyString(c.Path()),
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}

// requestMetrics records request counts and latency by matched route, and
// the outcome of credential operations.
func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		// unmatched paths share one label
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		// label values outlive the request buffer
		m.ObserveRequest(utils.CopyString(c.Method()), route, status, time.Since(start))
		if op, ok := operations[route]; ok {
			m.RecordOperation(op, metrics.OutcomeForStatus(status))
		}
		return err
	}
}

// errorHandler renders errors that escaped the handlers as JSON.
func errorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal server error."

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error(c.UserContext(), "unhandled error", "error", err)
		}

		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
