package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mbolis/assistance-intake/app"
	"github.com/mbolis/assistance-intake/catalog"
	"github.com/mbolis/assistance-intake/config"
	"github.com/mbolis/assistance-intake/database"
	"github.com/mbolis/assistance-intake/httpx"
	"github.com/mbolis/assistance-intake/model"
	"github.com/mbolis/assistance-intake/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	app app.App
	t   *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cat, err := catalog.Default()
	require.NoError(t, err)

	cfg := config.Config{
		Addr:        "127.0.0.1:0",
		TokenSecret: "test-secret",
		TokenTTL:    time.Minute,
		DraftTTL:    time.Hour,
		PublicDir:   t.TempDir(),
		PrivateDir:  t.TempDir(),
	}
	a := app.New(db, httpx.NewBearerServer(db, cfg), cfg, cat)

	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return &testServer{srv, a, t}
}

func (s *testServer) do(method, path string, body any, header ...string) (int, []byte) {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(s.t, err)
	req.Header.Set("content-type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, data
}

func (s *testServer) draft(method, path string, body any) (int, DraftView) {
	s.t.Helper()
	status, data := s.do(method, path, body)
	var view DraftView
	if status < 300 {
		require.NoError(s.t, json.Unmarshal(data, &view), string(data))
	}
	return status, view
}

func (s *testServer) newDraft() string {
	s.t.Helper()
	status, view := s.draft(http.MethodPost, "/api/drafts", nil)
	require.Equal(s.t, http.StatusCreated, status)
	require.NotEmpty(s.t, view.ID)
	return view.ID
}

func (s *testServer) mustDraft(method, path string, body any) DraftView {
	s.t.Helper()
	status, view := s.draft(method, path, body)
	require.Equal(s.t, http.StatusOK, status, "%s %s", method, path)
	return view
}

// completeDraft fills the draft through the API and walks it to the summary step.
func (s *testServer) completeDraft(id string) {
	s.t.Helper()
	p := "/api/drafts/" + id

	s.mustDraft(http.MethodPut, p+"/fields/requesterName", map[string]any{"value": "Ada Lovelace"})
	s.mustDraft(http.MethodPut, p+"/fields/requesterPhone", map[string]any{"value": "555-0100"})
	s.mustDraft(http.MethodPut, p+"/fields/requestName", map[string]any{"value": "Weekly groceries"})
	s.mustDraft(http.MethodPost, p+"/next", nil)

	s.mustDraft(http.MethodPut, p+"/district", map[string]any{"id": "north"})
	s.mustDraft(http.MethodPut, p+"/city", map[string]any{"id": "north-harbor"})
	s.mustDraft(http.MethodPost, p+"/next", nil)

	s.mustDraft(http.MethodPut, p+"/type", map[string]any{"labels": []string{"Food"}})
	s.mustDraft(http.MethodPost, p+"/next", nil)

	s.mustDraft(http.MethodPost, p+"/subtypes/food-parcels/toggle", nil)
	s.mustDraft(http.MethodPost, p+"/next", nil)

	s.mustDraft(http.MethodPut, p+"/transportation", map[string]any{"value": false})
	s.mustDraft(http.MethodPut, p+"/volunteers", map[string]any{"value": true})
	s.mustDraft(http.MethodPost, p+"/next", nil)

	s.mustDraft(http.MethodPut, p+"/fields/requestDescription", map[string]any{"value": "Two elderly residents"})
	s.mustDraft(http.MethodPost, p+"/attachments", map[string]any{"name": "a.png"})
	view := s.mustDraft(http.MethodPost, p+"/next", nil)
	require.Equal(s.t, 7, view.Draft.CurrentStep)
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// login creates an administrator and logs it in.
func (s *testServer) login() tokens {
	s.t.Helper()

	hash, err := httpx.HashPassword("hunter2")
	require.NoError(s.t, err)
	_, err = s.app.Exec(`INSERT INTO user (username, password_hash, roles) VALUES (?, ?, ?)`, "admin", hash, "admin")
	require.NoError(s.t, err)

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/login", nil)
	require.NoError(s.t, err)
	req.SetBasicAuth("admin", "hunter2")
	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	require.Equal(s.t, http.StatusOK, resp.StatusCode)

	var tok tokens
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&tok))
	require.NotEmpty(s.t, tok.AccessToken)
	require.NotEmpty(s.t, tok.RefreshToken)
	return tok
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	return "Bearer " + s.login().AccessToken
}

// page fetches a browser page without following redirects.
func (s *testServer) page(path string, cookies ...*http.Cookie) *http.Response {
	s.t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(s.t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	client := *s.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSteps(t *testing.T) {
	s := newTestServer(t)
	status, data := s.do(http.MethodGet, "/api/steps", nil)
	require.Equal(t, http.StatusOK, status)

	var body struct {
		TotalSteps int `json:"totalSteps"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, 8, body.TotalSteps)
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)

	status, data := s.do(http.MethodGet, "/api/catalog/assistance-types", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"food-parcels"`)

	status, data = s.do(http.MethodGet, "/api/catalog/locations", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"north-harbor"`)
}

func TestCreateAndGetDraft(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()

	view := s.mustDraft(http.MethodGet, "/api/drafts/"+id, nil)
	assert.Equal(t, 1, view.Draft.CurrentStep)
	assert.Equal(t, 8, view.TotalSteps)
	assert.Equal(t, "Requester details", view.Step.Title)
	assert.False(t, view.StepValid)
	assert.True(t, view.Validity[7])
}

func TestUnknownDraft(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.draft(http.MethodGet, "/api/drafts/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDiscardDraft(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()

	status, _ := s.do(http.MethodDelete, "/api/drafts/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(http.MethodGet, "/api/drafts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateField(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()

	view := s.mustDraft(http.MethodPut, "/api/drafts/"+id+"/fields/street", map[string]any{"value": "1 Main St"})
	assert.Equal(t, "1 Main St", view.Draft.Street)

	status, _ := s.draft(http.MethodPut, "/api/drafts/"+id+"/fields/currentStep", map[string]any{"value": "3"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.draft(http.MethodPut, "/api/drafts/"+id+"/fields/street", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDistrictChangeClearsCity(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	s.mustDraft(http.MethodPut, p+"/district", map[string]any{"id": "north"})
	view := s.mustDraft(http.MethodPut, p+"/city", map[string]any{"id": "north-harbor"})
	assert.Equal(t, "harbor", view.Draft.City.Name)
	assert.True(t, view.Validity[2])

	view = s.mustDraft(http.MethodPut, p+"/district", map[string]any{"id": "north"})
	assert.Equal(t, "harbor", view.Draft.City.Name, "same district keeps the city")

	view = s.mustDraft(http.MethodPut, p+"/district", map[string]any{"id": "south"})
	assert.Equal(t, "south", view.Draft.District.ID)
	assert.True(t, view.Draft.City.IsZero())
	assert.False(t, view.Validity[2])
}

func TestLocationValidation(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	status, _ := s.draft(http.MethodPut, p+"/district", map[string]any{"id": "atlantis"})
	assert.Equal(t, http.StatusBadRequest, status)

	s.mustDraft(http.MethodPut, p+"/district", map[string]any{"id": "central"})
	status, _ = s.draft(http.MethodPut, p+"/city", map[string]any{"id": "north-harbor"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAssistanceTypeAndSubTypes(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	view := s.mustDraft(http.MethodPut, p+"/type", map[string]any{"labels": []string{"Shelter", "Food"}})
	assert.Equal(t, "shelter", view.Draft.RequestType.ID)

	view = s.mustDraft(http.MethodPut, p+"/subtypes", map[string]any{"ids": []string{"heating", "home-repair"}})
	assert.Len(t, view.Draft.RequestSubType, 2)

	view = s.mustDraft(http.MethodPost, p+"/subtypes/heating/toggle", nil)
	require.Len(t, view.Draft.RequestSubType, 1)
	assert.Equal(t, "home-repair", view.Draft.RequestSubType[0].ID)

	view = s.mustDraft(http.MethodPut, p+"/type", map[string]any{"labels": []string{"Food"}})
	assert.Empty(t, view.Draft.RequestSubType)
}

func TestLogistics(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	status, _ := s.draft(http.MethodPut, p+"/transportation", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "value is required")

	s.mustDraft(http.MethodPut, p+"/transportation", map[string]any{"value": false})
	view := s.mustDraft(http.MethodPut, p+"/volunteers", map[string]any{"value": false})
	require.NotNil(t, view.Draft.NeedTransportation)
	assert.False(t, *view.Draft.NeedTransportation)
	assert.True(t, view.Validity[5])
}

func TestAttachments(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	s.mustDraft(http.MethodPost, p+"/attachments", map[string]any{"name": "a.png"})
	view := s.mustDraft(http.MethodPost, p+"/attachments", map[string]any{"name": "b.png", "size": 2048})
	assert.Equal(t, "a.png,b.png", view.Attachment)

	view = s.mustDraft(http.MethodDelete, p+"/attachments/0", nil)
	assert.Equal(t, "b.png", view.Attachment)

	view = s.mustDraft(http.MethodDelete, p+"/attachments/7", nil)
	assert.Equal(t, "b.png", view.Attachment)

	status, _ := s.draft(http.MethodPost, p+"/attachments", map[string]any{"size": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestNavigation(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()
	p := "/api/drafts/" + id

	view := s.mustDraft(http.MethodPost, p+"/previous", nil)
	assert.Equal(t, 1, view.Draft.CurrentStep)

	s.completeDraft(id)

	view = s.mustDraft(http.MethodPost, p+"/step", map[string]any{"step": 2})
	assert.Equal(t, 2, view.Draft.CurrentStep)
	assert.Equal(t, "Location", view.Step.Title)

	view = s.mustDraft(http.MethodPost, p+"/step", map[string]any{"step": 6})
	assert.Equal(t, 6, view.Draft.CurrentStep)
	assert.Equal(t, "Description", view.Step.Title)

	view = s.mustDraft(http.MethodPost, p+"/step", map[string]any{"step": 12})
	assert.Equal(t, 6, view.Draft.CurrentStep)

	view = s.mustDraft(http.MethodPost, p+"/previous", nil)
	assert.Equal(t, 5, view.Draft.CurrentStep)
}

func TestStepJumpSkippingInvalidSteps(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	status, data := s.do(http.MethodPost, p+"/step", map[string]any{"step": 7})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "draft.set_step.invalid", body.Code)
	assert.Contains(t, body.Message, "step 1")

	s.mustDraft(http.MethodPut, p+"/fields/requesterName", map[string]any{"value": "Ada"})
	s.mustDraft(http.MethodPut, p+"/fields/requesterPhone", map[string]any{"value": "555-0100"})
	s.mustDraft(http.MethodPut, p+"/fields/requestName", map[string]any{"value": "Groceries"})

	view := s.mustDraft(http.MethodPost, p+"/step", map[string]any{"step": 2})
	assert.Equal(t, 2, view.Draft.CurrentStep)

	status, _ = s.do(http.MethodPost, p+"/step", map[string]any{"step": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "location still missing")

	view = s.mustDraft(http.MethodPost, p+"/step", map[string]any{"step": 1})
	assert.Equal(t, 1, view.Draft.CurrentStep, "going back is always allowed")
}

func TestStepJumpToFinalStep(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()

	status, data := s.do(http.MethodPost, p+"/step", map[string]any{"step": 8})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "draft.set_step.final", body.Code)

	id := s.newDraft()
	s.completeDraft(id)
	status, _ = s.do(http.MethodPost, "/api/drafts/"+id+"/step", map[string]any{"step": 8})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "even with a complete draft")

	view := s.mustDraft(http.MethodGet, "/api/drafts/"+id, nil)
	assert.Equal(t, 7, view.Draft.CurrentStep)

	list, err := s.app.Requests.List(context.Background(), requests.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitRequiresCompleteDraft(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()
	p := "/api/drafts/" + id
	s.completeDraft(id)
	s.mustDraft(http.MethodPut, p+"/fields/requesterPhone", map[string]any{"value": ""})

	status, data := s.do(http.MethodPost, p+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "draft.next.invalid", body.Code)
	assert.Contains(t, body.Message, "step 1")

	view := s.mustDraft(http.MethodGet, p, nil)
	assert.Equal(t, 7, view.Draft.CurrentStep)

	list, err := s.app.Requests.List(context.Background(), requests.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	s.mustDraft(http.MethodPut, p+"/fields/requesterPhone", map[string]any{"value": "555-0100"})
	view = s.mustDraft(http.MethodPost, p+"/next", nil)
	assert.Equal(t, 8, view.Draft.CurrentStep)
	require.NotNil(t, view.Submitted)
}

func TestNextRefusesInvalidStep(t *testing.T) {
	s := newTestServer(t)
	p := "/api/drafts/" + s.newDraft()
	s.mustDraft(http.MethodPut, p+"/fields/requesterName", map[string]any{"value": "   "})

	status, data := s.do(http.MethodPost, p+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "draft.next.invalid", body.Code)

	view := s.mustDraft(http.MethodGet, p, nil)
	assert.Equal(t, 1, view.Draft.CurrentStep)
}

func TestReset(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()
	p := "/api/drafts/" + id
	s.completeDraft(id)

	view := s.mustDraft(http.MethodPost, p+"/reset", nil)
	assert.Equal(t, 7, view.Draft.CurrentStep)
	assert.Empty(t, view.Draft.RequesterName)
	assert.Empty(t, view.Draft.RequestSubType)
	assert.Nil(t, view.Draft.NeedVolunteers)

	view = s.mustDraft(http.MethodPost, p+"/reset?all=true", nil)
	assert.Equal(t, 1, view.Draft.CurrentStep)
}

func TestSubmit(t *testing.T) {
	s := newTestServer(t)
	id := s.newDraft()
	p := "/api/drafts/" + id
	s.completeDraft(id)

	view := s.mustDraft(http.MethodPost, p+"/next", nil)
	assert.Equal(t, 8, view.Draft.CurrentStep)
	assert.True(t, view.Step.IsFinalStep)
	require.NotNil(t, view.Submitted)
	assert.Equal(t, view.Submitted.CreatedAt, view.Submitted.UpdatedAt)

	stored, err := s.app.Requests.Get(context.Background(), view.Submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.RequesterDetails.Name)
	assert.Equal(t, "food", stored.RequestDetails.Type.ID)
	assert.Equal(t, model.StatusPending, stored.RequestStatus.Status)

	view = s.mustDraft(http.MethodPost, p+"/next", nil)
	assert.Equal(t, 8, view.Draft.CurrentStep)
	assert.Nil(t, view.Submitted, "the final step submits nothing")

	view = s.mustDraft(http.MethodPost, p+"/previous", nil)
	assert.Equal(t, 8, view.Draft.CurrentStep)

	list, err := s.app.Requests.List(context.Background(), requests.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodGet, "/api/admin/requests", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/login", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminDashboard(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"Ada Lovelace", "Grace Hopper"} {
		id := s.newDraft()
		s.completeDraft(id)
		s.mustDraft(http.MethodPut, "/api/drafts/"+id+"/fields/requesterName", map[string]any{"value": name})
		s.mustDraft(http.MethodPost, "/api/drafts/"+id+"/next", nil)
	}
	auth := s.adminToken()

	var listed struct {
		Requests []model.Request `json:"requests"`
	}
	status, data := s.do(http.MethodGet, "/api/admin/requests?q=hopper", nil, "authorization", auth)
	require.Equal(t, http.StatusOK, status, string(data))
	require.NoError(t, json.Unmarshal(data, &listed))
	require.Len(t, listed.Requests, 1)
	id := listed.Requests[0].ID

	status, _ = s.do(http.MethodGet, "/api/admin/requests?status=bogus", nil, "authorization", auth)
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = s.do(http.MethodPatch, "/api/admin/requests/"+id,
		map[string]any{"status": "in_progress", "assignedTo": "team-a"}, "authorization", auth)
	require.Equal(t, http.StatusOK, status, string(data))
	var updated model.Request
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, model.StatusInProgress, updated.RequestStatus.Status)
	assert.Equal(t, "team-a", updated.RequestStatus.AssignedTo)

	status, data = s.do(http.MethodPatch, "/api/admin/requests/"+id,
		map[string]any{"status": "resolved"}, "authorization", auth)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "team-a", updated.RequestStatus.AssignedTo, "assignee kept")

	status, _ = s.do(http.MethodPatch, "/api/admin/requests/"+id,
		map[string]any{"status": "archived"}, "authorization", auth)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodGet, "/api/admin/requests/missing", nil, "authorization", auth)
	assert.Equal(t, http.StatusNotFound, status)

	status, data = s.do(http.MethodGet, "/api/admin/requests/stats", nil, "authorization", auth)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		ByStatus map[model.Status]int `json:"byStatus"`
		Total    int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.StatusResolved])
	assert.Equal(t, 1, stats.ByStatus[model.StatusPending])
}

func writeDashboard(t *testing.T, s *testServer) {
	t.Helper()
	err := os.WriteFile(filepath.Join(s.app.PrivateDir, "dashboard.html"), []byte("<h1>requests</h1>"), 0o644)
	require.NoError(t, err)
}

func TestDashboardRedirectsToLogin(t *testing.T) {
	s := newTestServer(t)
	writeDashboard(t, s)

	resp := s.page("/admin/dashboard.html")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?goto="+url.QueryEscape("/admin/dashboard.html"), resp.Header.Get("location"))
}

func TestDashboardWithAccessCookie(t *testing.T) {
	s := newTestServer(t)
	writeDashboard(t, s)
	tok := s.login()

	resp := s.page("/admin/dashboard.html", &http.Cookie{Name: "access_token", Value: tok.AccessToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>requests</h1>", string(data))
	assert.Empty(t, resp.Cookies())
}

func TestDashboardWithRefreshCookie(t *testing.T) {
	s := newTestServer(t)
	writeDashboard(t, s)
	tok := s.login()

	resp := s.page("/admin/dashboard.html", &http.Cookie{Name: "refresh_token", Value: tok.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>requests</h1>", string(data))

	cookies := map[string]string{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.NotEmpty(t, cookies["access_token"])
	assert.NotEmpty(t, cookies["refresh_token"])

	resp = s.page("/admin/dashboard.html", &http.Cookie{Name: "access_token", Value: cookies["access_token"]})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// refresh tokens are single use
	resp = s.page("/admin/dashboard.html", &http.Cookie{Name: "refresh_token", Value: tok.RefreshToken})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.newDraft()

	status, data := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), "intake_drafts_created_total")
	assert.Contains(t, string(data), fmt.Sprintf("route=%q", "/api/drafts"))
}
