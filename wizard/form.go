// Package wizard implements the multi-step intake form: the draft being
// composed, the step pointer, per-step validity and submission of the
// finished request.
//
// Every operation is total. Input outside an operation's domain (an unknown
// step, an out-of-range attachment index, an unknown field) leaves the form
// untouched instead of failing; gating navigation on IsStepValid is the
// caller's job.
package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/mbolis/assistance-intake/catalog"
	"github.com/mbolis/assistance-intake/log"
	"github.com/mbolis/assistance-intake/model"
)

type Field string

const (
	RequesterName      Field = "requesterName"
	RequesterPhone     Field = "requesterPhone"
	RequestName        Field = "requestName"
	RequestDescription Field = "requestDescription"
	Street             Field = "street"
)

func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case RequesterName, RequesterPhone, RequestName, RequestDescription, Street:
		return f, true
	}
	return "", false
}

// Collection receives submitted requests.
type Collection interface {
	Append(ctx context.Context, req model.Request) error
}

type Form struct {
	draft   model.Draft
	steps   Steps
	catalog *catalog.Catalog
	now     func() time.Time
	ids     *IDSequence
}

func NewForm(steps Steps, cat *catalog.Catalog) *Form {
	f := &Form{
		steps:   steps,
		catalog: cat,
		now:     time.Now,
		ids:     &requestIDs,
	}
	f.ResetAll()
	return f
}

func emptyDraft() model.Draft {
	return model.Draft{
		CurrentStep:    1,
		RequestSubType: []model.Option{},
		Attachments:    []model.Attachment{},
		RequestStatus:  model.StatusPending,
	}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() model.Draft {
	d := f.draft
	d.RequestSubType = append([]model.Option{}, f.draft.RequestSubType...)
	d.Attachments = append([]model.Attachment{}, f.draft.Attachments...)
	d.NeedTransportation = copyBool(f.draft.NeedTransportation)
	d.NeedVolunteers = copyBool(f.draft.NeedVolunteers)
	return d
}

func (f *Form) Steps() Steps {
	return f.steps
}

func (f *Form) CurrentStep() int {
	return f.draft.CurrentStep
}

func (f *Form) UpdateField(field Field, value string) {
	switch field {
	case RequesterName:
		f.draft.RequesterName = value
	case RequesterPhone:
		f.draft.RequesterPhone = value
	case RequestName:
		f.draft.RequestName = value
	case RequestDescription:
		f.draft.RequestDescription = value
	case Street:
		f.draft.Street = value
	}
}

// UpdateDistrict replaces the district. The city is left as is: callers
// changing the district are expected to clear it.
func (f *Form) UpdateDistrict(district model.Place) {
	f.draft.District = district
}

func (f *Form) UpdateCity(city model.Place) {
	f.draft.City = city
}

// SetAssistanceType selects the main assistance type from the first label;
// the rest are ignored. Changing type drops the selected sub-types.
func (f *Form) SetAssistanceType(labels []string) {
	var selected model.Option
	if len(labels) > 0 {
		if t, ok := f.catalog.MainType(labels[0]); ok {
			selected = t.Option
		} else {
			log.Debugf("wizard.assistance_type: unresolved %q", labels[0])
			selected = placeholder(labels[0])
		}
	}

	if selected.ID != f.draft.RequestType.ID {
		f.draft.RequestSubType = []model.Option{}
	}
	f.draft.RequestType = selected
}

func (f *Form) SetSelectedSubTypes(ids []string) {
	subTypes := make([]model.Option, 0, len(ids))
	for _, id := range ids {
		if indexOf(subTypes, id) >= 0 {
			continue
		}
		subTypes = append(subTypes, f.resolveSubType(id))
	}
	f.draft.RequestSubType = subTypes
}

func (f *Form) ToggleSelectedSubType(id string) {
	if i := indexOf(f.draft.RequestSubType, id); i >= 0 {
		f.draft.RequestSubType = append(f.draft.RequestSubType[:i:i], f.draft.RequestSubType[i+1:]...)
		return
	}
	f.draft.RequestSubType = append(f.draft.RequestSubType, f.resolveSubType(id))
}

func (f *Form) resolveSubType(id string) model.Option {
	if s, ok := f.catalog.SubType(f.draft.RequestType.ID, id); ok {
		return s
	}
	log.Debugf("wizard.sub_type: unresolved %q", id)
	return placeholder(id)
}

func (f *Form) SetTransportationNeeded(needed bool) {
	f.draft.NeedTransportation = &needed
}

func (f *Form) SetVolunteersNeeded(needed bool) {
	f.draft.NeedVolunteers = &needed
}

func (f *Form) AddUploadedFile(file model.Attachment) {
	f.draft.Attachments = append(f.draft.Attachments, file)
}

func (f *Form) RemoveUploadedFile(index int) {
	if index < 0 || index >= len(f.draft.Attachments) {
		return
	}
	f.draft.Attachments = append(f.draft.Attachments[:index:index], f.draft.Attachments[index+1:]...)
}

// SetCurrentStep jumps to step n. Steps outside the configured range are
// ignored, and so is any jump once the final step has been reached.
func (f *Form) SetCurrentStep(n int) {
	if n < 1 || n > f.steps.Total() || f.steps.IsFinalStep(f.draft.CurrentStep) {
		return
	}
	f.draft.CurrentStep = n
}

func (f *Form) GoToNextStep() {
	if f.draft.CurrentStep < f.steps.Total() {
		f.draft.CurrentStep++
	}
}

// GoToPreviousStep moves back one step. The final step is terminal: the
// request is already submitted, so there is no way back from it.
func (f *Form) GoToPreviousStep() {
	if f.draft.CurrentStep > 1 && !f.steps.IsFinalStep(f.draft.CurrentStep) {
		f.draft.CurrentStep--
	}
}

func (f *Form) IsStepValid(step int) bool {
	d := &f.draft
	switch step {
	case 1:
		return filled(d.RequesterName) && filled(d.RequesterPhone) && filled(d.RequestName)
	case 2:
		return filled(d.District.Name) && filled(d.City.Name)
	case 3:
		return filled(d.RequestType.Label)
	case 4:
		return len(d.RequestSubType) > 0
	case 5:
		return d.NeedTransportation != nil && d.NeedVolunteers != nil
	case 6:
		return filled(d.RequestName)
	default:
		return true
	}
}

// SubmitDraft materializes the finished request from the current draft. It
// does not touch the form.
func (f *Form) SubmitDraft() model.Request {
	now := f.now()
	d := f.Draft()
	return model.Request{
		ID: f.ids.Next(now),
		RequesterDetails: model.RequesterDetails{
			Name:     d.RequesterName,
			Phone:    d.RequesterPhone,
			District: d.District,
			City:     d.City,
			Street:   d.Street,
		},
		RequestDetails: model.RequestDetails{
			Name:               d.RequestName,
			Description:        d.RequestDescription,
			Type:               d.RequestType,
			SubTypes:           d.RequestSubType,
			NeedTransportation: d.NeedTransportation,
			NeedVolunteers:     d.NeedVolunteers,
			Attachments:        d.Attachments,
		},
		RequestStatus: model.RequestStatus{
			Status:     d.RequestStatus,
			AssignedTo: d.AssignedTo,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Submit is the forward transition of the wizard footer. On the submit step
// the draft is handed to c before advancing, and the stored request is
// returned. Elsewhere it only advances. If c fails the step is kept.
func (f *Form) Submit(ctx context.Context, c Collection) (*model.Request, error) {
	if f.draft.CurrentStep != f.steps.SubmitStep() {
		f.GoToNextStep()
		return nil, nil
	}

	req := f.SubmitDraft()
	if err := c.Append(ctx, req); err != nil {
		return nil, err
	}
	f.GoToNextStep()
	return &req, nil
}

// ResetForm clears every content field but keeps the step pointer.
func (f *Form) ResetForm() {
	step := f.draft.CurrentStep
	f.draft = emptyDraft()
	f.draft.CurrentStep = step
}

func (f *Form) ResetAll() {
	f.draft = emptyDraft()
}

func placeholder(raw string) model.Option {
	return model.Option{ID: raw, Label: raw, Name: raw}
}

func indexOf(opts []model.Option, id string) int {
	for i, o := range opts {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
