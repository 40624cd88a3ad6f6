package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"roomescape/internal/http/middleware"
	"roomescape/internal/service"
)

// MetricsPath is where Prometheus metrics are served.
const MetricsPath = "/metrics"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds what the routes need. Metrics is optional.
type Deps struct {
	DB           Pinger
	Reservations service.ReservationService
	Auth         fiber.Handler
	Metrics      prometheus.Gatherer
	Logger       *zap.Logger
}

// HealthCheck pings the database.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	svc := d.Reservations

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	app.Post("/reservations", d.Auth, CreateReservation(svc, log))
	app.Get("/reservations/mine", d.Auth, ListMine(svc, log))
	app.Get("/reservations/:id", d.Auth, GetReservation(svc, log))
	app.Delete("/reservations/:id", d.Auth, CancelMine(svc, log))
	app.Post("/reservations/:id/payment", d.Auth, ApprovePayment(svc, log))
	app.Get("/reservations/:id/receipt", d.Auth, GetReceipt(svc, log))
	app.Post("/waitings", d.Auth, CreateWaiting(svc, log))

	admin := app.Group("/admin", d.Auth, middleware.RequireAdmin())
	admin.Post("/reservations", AdminCreateReservation(svc, log))
	admin.Get("/reservations", AdminListByStatus(svc, log))
	admin.Get("/reservations/search", AdminSearch(svc, log))
	admin.Get("/reservations/canceled", AdminListCanceled(svc, log))
	admin.Delete("/reservations/:id", AdminDelete(svc, log))
}
