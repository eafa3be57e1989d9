package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/assistance-intake/app"
	"github.com/mbolis/assistance-intake/metrics"
	"github.com/mbolis/assistance-intake/routes/middlewares"
)

var validate = validator.New()

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer, metrics.Middleware)

	root.Mount("/api", apiRouter(app))
	root.Method(http.MethodGet, "/metrics", metrics.Handler())

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin", app.PrivateDir))
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/steps", ListSteps(app))
	api.Get("/catalog/assistance-types", ListAssistanceTypes(app))
	api.Get("/catalog/locations", ListLocations(app))

	api.Post("/drafts", CreateDraft(app))
	api.Route("/drafts/{id}", func(r chi.Router) {
		r.Get("/", GetDraft(app))
		r.Delete("/", DiscardDraft(app))

		r.Put("/fields/{field}", UpdateDraftField(app))
		r.Put("/district", UpdateDraftDistrict(app))
		r.Put("/city", UpdateDraftCity(app))
		r.Put("/type", SetDraftAssistanceType(app))
		r.Put("/subtypes", SetDraftSubTypes(app))
		r.Post("/subtypes/{subTypeId}/toggle", ToggleDraftSubType(app))
		r.Put("/transportation", SetDraftTransportation(app))
		r.Put("/volunteers", SetDraftVolunteers(app))
		r.Post("/attachments", AddDraftAttachment(app))
		r.Delete(`/attachments/{index:^-?\d+$}`, RemoveDraftAttachment(app))

		r.Post("/step", SetDraftStep(app))
		r.Post("/next", NextDraftStep(app))
		r.Post("/previous", PreviousDraftStep(app))
		r.Post("/reset", ResetDraft(app))
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Get("/requests", ListRequests(app))
		r.Get("/requests/stats", RequestStats(app))
		r.Get("/requests/{id}", GetRequest(app))
		r.Patch("/requests/{id}", UpdateRequest(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}

func servePrivateFiles(path, dir string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir(dir)))
}
