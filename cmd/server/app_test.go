package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CodingDyl/virtec-crm/auth"
	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/db"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const baseURL = "http://crm.test"

type harness struct {
	t   *testing.T
	app *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)}, log)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb, false, "", log))
	require.NoError(t, db.Seed(gdb))

	users := services.NewUserService(gdb, log)
	auth.SetUserVerifier(users.Exists)
	t.Cleanup(func() { auth.SetUserVerifier(nil) })
	ctx := context.Background()
	for _, u := range []services.NewUser{
		{Email: "admin@virtec.test", Password: "admin-pass", Profile: "admin"},
		{Email: "sales@virtec.test", Password: "sales-pass", Profile: "sales"},
		{Email: "viewer@virtec.test", Password: "viewer-pass", Profile: "viewer"},
	} {
		_, err := users.Create(ctx, u)
		require.NoError(t, err)
	}

	cfg := &config.Config{
		Artifacts: config.ArtifactConfig{Backend: "db", MaxSize: 1 << 20},
		App:       config.AppConfig{HourlyRate: 300, ProfileCache: time.Minute},
	}
	store, err := artifact.New("db", gdb, "", baseURL)
	require.NoError(t, err)
	return &harness{t: t, app: NewApp(gdb, store, cfg, log)}
}

// login returns the session cookie for email.
func (h *harness) login(email, password string) *http.Cookie {
	rr := h.do(nil, http.MethodPost, "/login", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	h.t.Fatal("no session cookie")
	return nil
}

func (h *harness) do(session *http.Cookie, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	h.app.ServeHTTP(rr, req)
	return rr
}

func (h *harness) decode(rr *httptest.ResponseRecorder, dst any) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/health", "/healthz"} {
		rr := h.do(nil, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusUnauthorized, h.do(nil, http.MethodGet, "/customers", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(nil, http.MethodGet, "/me", nil).Code)

	rr := h.do(nil, http.MethodPost, "/login", map[string]string{"email": "sales@virtec.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	viewer := h.login("viewer@virtec.test", "viewer-pass")
	assert.Equal(t, http.StatusOK, h.do(viewer, http.MethodGet, "/customers", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(viewer, http.MethodPost, "/customers", map[string]string{"name": "X", "email": "x@y.test"}).Code)
	assert.Equal(t, http.StatusForbidden, h.do(viewer, http.MethodGet, "/admin/users", nil).Code)

	var envelope struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	h.decode(h.do(viewer, http.MethodGet, "/customers?limit=5000", nil), &envelope)
	assert.Equal(t, 200, envelope.Limit)
	assert.Equal(t, 0, envelope.Offset)

	var me models.User
	h.decode(h.do(viewer, http.MethodGet, "/me", nil), &me)
	assert.Equal(t, "viewer@virtec.test", me.Email)
}

func TestQuoteToSignedAgreement(t *testing.T) {
	h := newHarness(t)
	s := h.login("sales@virtec.test", "sales-pass")

	rr := h.do(s, http.MethodPost, "/customers", map[string]any{"name": "Naledi Mokoena", "email": "naledi@example.test"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var c models.Customer
	h.decode(rr, &c)

	rr = h.do(s, http.MethodPost, "/projects", map[string]any{"client_id": c.ID, "project_type": "E-commerce"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p models.Project
	h.decode(rr, &p)

	rr = h.do(s, http.MethodPost, "/quotes/price", map[string]any{"estimated_hours": 10, "complexity": "High", "urgency": "Rush", "hosting_cost": 500})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var preview struct {
		Total float64 `json:"total"`
	}
	h.decode(rr, &preview)
	assert.InDelta(t, 7700.0, preview.Total, 0.001)

	rr = h.do(s, http.MethodPost, "/quotes", map[string]any{"project_id": p.ID, "estimated_hours": 10, "complexity": "Low", "urgency": "Standard"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var q models.Quote
	h.decode(rr, &q)
	assert.Equal(t, 3000.0, q.TotalAmount)
	assert.Equal(t, fmt.Sprintf("/quotes/%d", q.ID), rr.Header().Get("Location"))

	rr = h.do(s, http.MethodGet, fmt.Sprintf("/quotes/%d/pdf", q.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = h.do(s, http.MethodPost, fmt.Sprintf("/quotes/%d/status", q.ID), map[string]any{"status": "accepted", "version": q.Version})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = h.do(s, http.MethodPost, fmt.Sprintf("/quotes/%d/status", q.ID), map[string]any{"status": "rejected"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var spent struct {
		TotalSpent float64 `json:"total_spent"`
	}
	h.decode(h.do(s, http.MethodGet, fmt.Sprintf("/customers/%d/total-spent", c.ID), nil), &spent)
	assert.Equal(t, 3000.0, spent.TotalSpent)

	rr = h.do(s, http.MethodPost, fmt.Sprintf("/projects/%d/agreement", p.ID), map[string]any{
		"date":             "2024-06-01T00:00:00Z",
		"payment_method":   "bank_transfer",
		"payment_duration": "milestones",
		"requirements":     "Catalogue with 40 products",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	h.decode(rr, &p)
	assert.Equal(t, models.AgreementPending, p.AgreementStatus)
	require.True(t, strings.HasPrefix(p.AgreementURL, baseURL+"/artifacts/"))

	rr = h.do(s, http.MethodGet, strings.TrimPrefix(p.AgreementURL, baseURL), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = h.do(s, http.MethodPost, fmt.Sprintf("/projects/%d/agreement/review", p.ID), map[string]any{"status": "approved", "version": p.Version})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	h.decode(rr, &p)
	assert.Equal(t, models.AgreementApproved, p.AgreementStatus)

	rr = h.upload(s, fmt.Sprintf("/projects/%d/agreement/signed", p.ID), "notes.txt", []byte("just text"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.upload(s, fmt.Sprintf("/projects/%d/agreement/signed", p.ID), "signed.pdf", []byte("%PDF-1.4 signed copy"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	h.decode(rr, &p)
	assert.Equal(t, models.AgreementSigned, p.AgreementStatus)

	rr = h.do(s, http.MethodPost, fmt.Sprintf("/projects/%d/agreement", p.ID), map[string]any{
		"date": "2024-06-02T00:00:00Z", "payment_method": "paypal", "payment_duration": "one_time",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "signed agreements cannot be regenerated")

	var o services.Overview
	h.decode(h.do(s, http.MethodGet, "/dashboard/overview", nil), &o)
	assert.Equal(t, 3000.0, o.TotalRevenue)
}

func (h *harness) upload(session *http.Cookie, path, filename string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(h.t, err)
	_, err = fw.Write(data)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(session)
	rr := httptest.NewRecorder()
	h.app.ServeHTTP(rr, req)
	return rr
}

func TestErrorsAreTranslated(t *testing.T) {
	h := newHarness(t)
	s := h.login("sales@virtec.test", "sales-pass")

	rr := h.do(s, http.MethodGet, "/customers/999?lang=fr", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	var body struct {
		Error string `json:"error"`
	}
	h.decode(rr, &body)
	assert.Equal(t, "Introuvable", body.Error)

	rr = h.do(s, http.MethodPost, "/customers", map[string]any{"name": "", "email": "not-an-email"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var ve struct {
		Details map[string]string `json:"details"`
	}
	h.decode(rr, &ve)
	assert.Contains(t, ve.Details, "name")
	assert.Contains(t, ve.Details, "email")

	assert.Equal(t, http.StatusBadRequest, h.do(s, http.MethodGet, "/customers/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(s, http.MethodPost, "/customers", map[string]any{"nickname": "x"}).Code)
}

func TestAdminAssignsProfile(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@virtec.test", "admin-pass")
	viewer := h.login("viewer@virtec.test", "viewer-pass")

	var listing struct {
		Users    []models.User    `json:"users"`
		Profiles []models.Profile `json:"profiles"`
	}
	h.decode(h.do(admin, http.MethodGet, "/admin/users", nil), &listing)
	var viewerID, salesProfile uint
	for _, u := range listing.Users {
		if u.Email == "viewer@virtec.test" {
			viewerID = u.ID
		}
	}
	for _, p := range listing.Profiles {
		if p.Name == "sales" {
			salesProfile = p.ID
		}
	}
	require.NotZero(t, viewerID)
	require.NotZero(t, salesProfile)

	newCustomer := map[string]any{"name": "Promoted", "email": "promoted@example.test"}
	require.Equal(t, http.StatusForbidden, h.do(viewer, http.MethodPost, "/customers", newCustomer).Code)

	rr := h.do(admin, http.MethodPost, fmt.Sprintf("/admin/users/%d/profile", viewerID), map[string]any{"profile_id": salesProfile})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, http.StatusCreated, h.do(viewer, http.MethodPost, "/customers", newCustomer).Code)
}
