package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/assistance-intake/app"
	"github.com/mbolis/assistance-intake/httpx"
	"github.com/mbolis/assistance-intake/log"
	"github.com/mbolis/assistance-intake/metrics"
	"github.com/mbolis/assistance-intake/model"
	"github.com/mbolis/assistance-intake/wizard"
)

type DraftView struct {
	ID         string         `json:"id"`
	Draft      model.Draft    `json:"draft"`
	Attachment string         `json:"attachment"`
	Step       wizard.Step    `json:"step"`
	TotalSteps int            `json:"totalSteps"`
	StepValid  bool           `json:"stepValid"`
	Validity   map[int]bool   `json:"validity"`
	Submitted  *model.Request `json:"submitted,omitempty"`
}

func newDraftView(id string, f *wizard.Form) DraftView {
	d := f.Draft()
	steps := f.Steps()
	step, _ := steps.Get(d.CurrentStep)

	validity := make(map[int]bool, steps.Total())
	for n := 1; n <= steps.Total(); n++ {
		validity[n] = f.IsStepValid(n)
	}

	return DraftView{
		ID:         id,
		Draft:      d,
		Attachment: model.JoinAttachments(d.Attachments),
		Step:       step,
		TotalSteps: steps.Total(),
		StepValid:  validity[d.CurrentStep],
		Validity:   validity,
	}
}

// requestError is returned by a draft operation to reject the HTTP request
// without touching the draft.
type requestError struct {
	status int
	code   string
	msg    string
}

func (e *requestError) Error() string {
	return e.code + ": " + e.msg
}

func badRequest(code, msg string, args ...any) error {
	return &requestError{http.StatusBadRequest, code, fmt.Sprintf(msg, args...)}
}

func renderDraft(w http.ResponseWriter, r *http.Request, code, id string, view DraftView, err error) {
	var reqErr *requestError
	switch {
	case errors.Is(err, wizard.ErrDraftNotFound):
		httpx.LogNotFound(w, r, code, id)
	case errors.As(err, &reqErr):
		httpx.LogStatusMsg(w, r, reqErr.status, log.DebugLevel, code+"."+reqErr.code, "%s", reqErr.msg)
	case err != nil:
		httpx.LogInternalError(w, r, code, err)
	default:
		render.JSON(w, r, view)
	}
}

// draftHandler runs op on the draft named in the URL and responds with the
// resulting draft view.
func draftHandler(app app.App, code string, op func(r *http.Request, f *wizard.Form) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var view DraftView
		err := app.Drafts.Do(id, func(f *wizard.Form) error {
			if err := op(r, f); err != nil {
				return err
			}
			view = newDraftView(id, f)
			return nil
		})
		renderDraft(w, r, code, id, view, err)
	}
}

// decode reads the JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return badRequest("parse_body", "malformed JSON body")
	}
	if err := validate.Struct(v); err != nil {
		return badRequest("validate_body", "%s", err)
	}
	return nil
}

func CreateDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, form := app.Drafts.Create()
		metrics.DraftsCreated.Inc()
		metrics.DraftsActive.Set(float64(app.Drafts.Len()))
		log.With(log.Fields{"draft": id}).Debug("draft.create")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, newDraftView(id, form))
	}
}

func GetDraft(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.get", func(*http.Request, *wizard.Form) error {
		return nil
	})
}

// DiscardDraft drops the draft altogether, as a page reload would.
func DiscardDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !app.Drafts.Discard(id) {
			httpx.LogNotFound(w, r, "draft.discard", id)
			return
		}
		metrics.DraftsActive.Set(float64(app.Drafts.Len()))
		w.WriteHeader(http.StatusNoContent)
	}
}

type valueBody struct {
	Value string `json:"value"`
}

func UpdateDraftField(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.update_field", func(r *http.Request, f *wizard.Form) error {
		field, ok := wizard.ParseField(chi.URLParam(r, "field"))
		if !ok {
			return badRequest("field", "unknown field %q", chi.URLParam(r, "field"))
		}
		var body valueBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.UpdateField(field, body.Value)
		return nil
	})
}

type placeBody struct {
	ID string `json:"id"`
}

// UpdateDraftDistrict selects a district from the location catalog and clears
// the city, which belonged to the previous district. An empty id clears both.
func UpdateDraftDistrict(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.update_district", func(r *http.Request, f *wizard.Form) error {
		var body placeBody
		if err := decode(r, &body); err != nil {
			return err
		}

		var district model.Place
		if body.ID != "" {
			d, ok := app.Catalog.District(body.ID)
			if !ok {
				return badRequest("district", "unknown district %q", body.ID)
			}
			district = d.Place
		}

		if district.ID != f.Draft().District.ID {
			f.UpdateCity(model.Place{})
		}
		f.UpdateDistrict(district)
		return nil
	})
}

func UpdateDraftCity(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.update_city", func(r *http.Request, f *wizard.Form) error {
		var body placeBody
		if err := decode(r, &body); err != nil {
			return err
		}

		if body.ID == "" {
			f.UpdateCity(model.Place{})
			return nil
		}
		district := f.Draft().District
		city, ok := app.Catalog.City(district.ID, body.ID)
		if !ok {
			return badRequest("city", "city %q is not in district %q", body.ID, district.ID)
		}
		f.UpdateCity(city)
		return nil
	})
}

type labelsBody struct {
	Labels []string `json:"labels"`
}

func SetDraftAssistanceType(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.set_type", func(r *http.Request, f *wizard.Form) error {
		var body labelsBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.SetAssistanceType(body.Labels)
		return nil
	})
}

type idsBody struct {
	IDs []string `json:"ids"`
}

func SetDraftSubTypes(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.set_subtypes", func(r *http.Request, f *wizard.Form) error {
		var body idsBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.SetSelectedSubTypes(body.IDs)
		return nil
	})
}

func ToggleDraftSubType(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.toggle_subtype", func(r *http.Request, f *wizard.Form) error {
		f.ToggleSelectedSubType(chi.URLParam(r, "subTypeId"))
		return nil
	})
}

type boolBody struct {
	Value *bool `json:"value" validate:"required"`
}

func SetDraftTransportation(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.set_transportation", func(r *http.Request, f *wizard.Form) error {
		var body boolBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.SetTransportationNeeded(*body.Value)
		return nil
	})
}

func SetDraftVolunteers(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.set_volunteers", func(r *http.Request, f *wizard.Form) error {
		var body boolBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.SetVolunteersNeeded(*body.Value)
		return nil
	})
}

type attachmentBody struct {
	Name        string `json:"name" validate:"required"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"contentType"`
}

func AddDraftAttachment(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.add_attachment", func(r *http.Request, f *wizard.Form) error {
		var body attachmentBody
		if err := decode(r, &body); err != nil {
			return err
		}
		f.AddUploadedFile(model.Attachment{
			Name:        body.Name,
			Size:        body.Size,
			ContentType: body.ContentType,
		})
		return nil
	})
}

func RemoveDraftAttachment(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.remove_attachment", func(r *http.Request, f *wizard.Form) error {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			return badRequest("index", "invalid attachment index")
		}
		f.RemoveUploadedFile(index)
		return nil
	})
}

type stepBody struct {
	Step int `json:"step"`
}

// firstInvalidStep returns the first step before upTo that does not pass
// validation, or 0 when all of them do.
func firstInvalidStep(f *wizard.Form, upTo int) int {
	for n := 1; n < upTo; n++ {
		if !f.IsStepValid(n) {
			return n
		}
	}
	return 0
}

func incompleteStep(n int) error {
	return &requestError{http.StatusUnprocessableEntity, "invalid", fmt.Sprintf("step %d is incomplete", n)}
}

// SetDraftStep jumps to another step. Going forward requires every step in
// between to be valid, and the final step is only reached by submitting.
func SetDraftStep(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.set_step", func(r *http.Request, f *wizard.Form) error {
		var body stepBody
		if err := decode(r, &body); err != nil {
			return err
		}

		steps := f.Steps()
		if _, ok := steps.Get(body.Step); ok {
			if steps.IsFinalStep(body.Step) && !steps.IsFinalStep(f.CurrentStep()) {
				return &requestError{http.StatusUnprocessableEntity, "final", "the final step is reached by submitting"}
			}
			if body.Step > f.CurrentStep() {
				if n := firstInvalidStep(f, body.Step); n != 0 {
					return incompleteStep(n)
				}
			}
		}
		f.SetCurrentStep(body.Step)
		return nil
	})
}

// NextDraftStep is the wizard's "next" button: it refuses to leave an invalid
// step, and leaving the summary step submits the request once every previous
// step is valid.
func NextDraftStep(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var view DraftView
		err := app.Drafts.Do(id, func(f *wizard.Form) error {
			step := f.CurrentStep()
			if !f.IsStepValid(step) {
				return incompleteStep(step)
			}
			if step == f.Steps().SubmitStep() {
				if n := firstInvalidStep(f, step); n != 0 {
					return incompleteStep(n)
				}
			}

			submitted, err := f.Submit(r.Context(), app.Requests)
			if err != nil {
				return err
			}

			view = newDraftView(id, f)
			if submitted != nil {
				metrics.RequestsSubmitted.WithLabelValues(submitted.RequestDetails.Type.ID).Inc()
				log.With(log.Fields{"draft": id, "request": submitted.ID}).Info("draft.submit")
				view.Submitted = submitted
			}
			return nil
		})
		renderDraft(w, r, "draft.next", id, view, err)
	}
}

func PreviousDraftStep(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.previous", func(_ *http.Request, f *wizard.Form) error {
		f.GoToPreviousStep()
		return nil
	})
}

// ResetDraft clears the draft content, keeping the current step. With
// ?all=true the draft starts over from the first step.
func ResetDraft(app app.App) http.HandlerFunc {
	return draftHandler(app, "draft.reset", func(r *http.Request, f *wizard.Form) error {
		if r.URL.Query().Get("all") == "true" {
			f.ResetAll()
		} else {
			f.ResetForm()
		}
		return nil
	})
}
