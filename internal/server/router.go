package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cafehandler "github.com/campusbites/order-service/internal/cafe/handler"
	loyaltyhandler "github.com/campusbites/order-service/internal/loyalty/handler"
	menuhandler "github.com/campusbites/order-service/internal/menu/handler"
	notificationhandler "github.com/campusbites/order-service/internal/notification/handler"
	orderhandler "github.com/campusbites/order-service/internal/order/handler"
	profilehandler "github.com/campusbites/order-service/internal/profile/handler"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

type Handlers struct {
	Profiles      *profilehandler.ProfileHandler
	Cafes         *cafehandler.CafeHandler
	Menu          *menuhandler.MenuHandler
	Orders        *orderhandler.OrderHandler
	Loyalty       *loyaltyhandler.LoyaltyHandler
	Notifications *notificationhandler.NotificationHandler
}

func NewRouter(h *Handlers, log logger.ZapLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(identityMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", h.Profiles.Register)
			r.Get("/me", h.Profiles.Me)
			r.Patch("/me", h.Profiles.Update)
		})

		r.Route("/cafes", func(r chi.Router) {
			r.Get("/", h.Cafes.List)
			r.Post("/", h.Cafes.Create)

			r.Route("/{cafeID}", func(r chi.Router) {
				r.Get("/", h.Cafes.Get)
				r.Patch("/", h.Cafes.Update)
				r.Put("/accepting", h.Cafes.SetAccepting)

				r.Route("/staff", func(r chi.Router) {
					r.Get("/", h.Cafes.ListStaff)
					r.Post("/", h.Cafes.AddStaff)
					r.Delete("/{userID}", h.Cafes.RemoveStaff)
				})

				r.Route("/menu", func(r chi.Router) {
					r.Get("/", h.Menu.List)
					r.Post("/", h.Menu.Create)
					r.Post("/bulk/price", h.Menu.BulkPrice)
					r.Post("/bulk/availability", h.Menu.BulkAvailability)
					r.Post("/stock/reset", h.Menu.ResetStock)
					r.Get("/stock/movements", h.Menu.Movements)

					r.Route("/{itemID}", func(r chi.Router) {
						r.Get("/", h.Menu.Get)
						r.Patch("/", h.Menu.Update)
						r.Delete("/", h.Menu.Delete)
						r.Post("/stock", h.Menu.AdjustStock)
					})
				})

				r.Get("/orders", h.Orders.ListForCafe)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.Place)
			r.Get("/", h.Orders.ListMine)

			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", h.Orders.Get)
				r.Post("/advance", h.Orders.Advance)
				r.Post("/cancel", h.Orders.Cancel)
			})
		})

		r.Route("/loyalty", func(r chi.Router) {
			r.Get("/balance", h.Loyalty.Balance)
			r.Get("/tiers", h.Loyalty.Tiers)
			// Tier lookup by user is the QR scanner flow at the till.
			r.Get("/tier/{userID}", h.Loyalty.Tier)
			r.Get("/history", h.Loyalty.History)
			r.Post("/reconcile/{userID}", h.Loyalty.Reconcile)
		})

		// Destructive, owner-gated. Kept off the regular cafe surface.
		r.Delete("/admin/cafes/{cafeID}/orders", h.Orders.Purge)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications.List)
			r.Get("/stream", h.Notifications.Stream)
			r.Post("/read-all", h.Notifications.MarkAllRead)
			r.Post("/{notificationID}/read", h.Notifications.MarkRead)
		})
	})

	return r
}
