package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/assistance-intake/app"
	"github.com/mbolis/assistance-intake/httpx"
	"github.com/mbolis/assistance-intake/log"
	"github.com/mbolis/assistance-intake/model"
	"github.com/mbolis/assistance-intake/requests"
)

func ListRequests(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := requests.Filter{
			Query:      q.Get("q"),
			Status:     model.Status(q.Get("status")),
			TypeID:     q.Get("type"),
			DistrictID: q.Get("district"),
		}
		if filter.Status != "" && !filter.Status.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.query.status", "unknown status %q", filter.Status)
			return
		}

		list, err := app.Requests.List(r.Context(), filter)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_requests", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"requests": list,
		})
	}
}

func GetRequest(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		req, err := app.Requests.Get(r.Context(), id)
		if errors.Is(err, requests.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_request", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_request", err)
			return
		}

		render.JSON(w, r, req)
	}
}

type updateRequestBody struct {
	Status     model.Status `json:"status" validate:"required,oneof=pending in_progress resolved rejected"`
	AssignedTo *string      `json:"assignedTo"`
}

// UpdateRequest is the triage action of the dashboard: it moves a request to
// another status and optionally (re)assigns it. Omitting assignedTo keeps the
// current assignee.
func UpdateRequest(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body updateRequestBody
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = validate.Struct(body); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.validate_body", "%s", err)
			return
		}

		current, err := app.Requests.Get(r.Context(), id)
		if errors.Is(err, requests.ErrNotFound) {
			httpx.LogNotFound(w, r, "update_request", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_request.get", err)
			return
		}

		assignedTo := current.RequestStatus.AssignedTo
		if body.AssignedTo != nil {
			assignedTo = *body.AssignedTo
		}

		updated, err := app.Requests.Update(r.Context(), id, body.Status, assignedTo, app.Now())
		if errors.Is(err, requests.ErrNotFound) {
			httpx.LogNotFound(w, r, "update_request", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_request", err)
			return
		}

		log.With(log.Fields{"request": id, "status": body.Status}).Info("request.update")
		render.JSON(w, r, updated)
	}
}

func RequestStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := app.Requests.Stats(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.request_stats", err)
			return
		}

		total := 0
		for _, n := range stats {
			total += n
		}
		render.JSON(w, r, map[string]any{
			"byStatus": stats,
			"total":    total,
		})
	}
}
