package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/garagedesk/internal/auth"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/authn"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/catalog"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/importcsv"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/inventory"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/settings"
	"github.com/MrJamesThe3rd/garagedesk/internal/http/vehicle"
)

func New(
	tokens *auth.Tokens,
	authV1 *authn.Handler,
	customersV1 *customer.Handler,
	vehiclesV1 *vehicle.Handler,
	catalogV1 *catalog.Handler,
	inventoryV1 *inventory.Handler,
	invoicesV1 *invoice.Handler,
	settingsV1 *settings.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				customersV1.Routes(r)
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				vehiclesV1.Routes(r)
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				catalogV1.Routes(r)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				inventoryV1.Routes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				invoicesV1.Routes(r)
			})

			r.Route("/settings", settingsV1.Routes)

			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
