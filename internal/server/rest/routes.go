package rest

import (
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// operations names the credential operation behind each route.
var operations = map[string]string{
	"/register":        "register",
	"/login":           "login",
	"/update-email":    "update_email",
	"/update-password": "update_password",
	"/reset-password":  "reset_password",
}

// RegisterRoutes mounts the credential endpoints on app.
func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Put("/update-email", h.UpdateEmail)
	app.Put("/update-password", h.UpdatePassword)
	app.Put("/reset-password", h.ResetPassword)
}

// RegisterMetricsRoute exposes the registry of m in the Prometheus text
// format at GET /metrics.
func RegisterMetricsRoute(app *fiber.App, m *metrics.Metrics) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
