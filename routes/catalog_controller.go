package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/assistance-intake/app"
)

func ListSteps(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"steps":      app.Steps,
			"totalSteps": app.Steps.Total(),
		})
	}
}

func ListAssistanceTypes(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"assistanceTypes": app.Catalog.AssistanceTypes,
		})
	}
}

func ListLocations(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"districts": app.Catalog.Districts,
		})
	}
}
