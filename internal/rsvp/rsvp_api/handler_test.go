package rsvp_api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rsvp-collector/internal/i18n"
	"rsvp-collector/internal/logger"
	"rsvp-collector/internal/models"
	"rsvp-collector/internal/qr"
	"rsvp-collector/internal/rsvp/db"
	"rsvp-collector/internal/rsvp/render"
	"rsvp-collector/internal/rsvp/rsvp_api"
	"rsvp-collector/internal/rsvp/service"
)

func newRouter(t *testing.T, store service.RSVPDBLayer) chi.Router {
	t.Helper()
	tr, err := i18n.NewTranslator("en")
	require.NoError(t, err)
	dashboard, err := render.NewDashboard(tr)
	require.NoError(t, err)

	log := logger.NewNopLogger()
	svc := service.NewRSVPService(store, nil, log)
	h := rsvp_api.NewHandler(svc, dashboard, qr.NewGenerator("http://localhost:8080/"), log)
	return rsvp_api.NewRouter(h, []string{"*"})
}

func setupStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	store.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return store
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, r http.Handler, body string) {
	t.Helper()
	rec := do(r, http.MethodPost, "/rsvp", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSubmitThenFilterDashboard(t *testing.T) {
	r := newRouter(t, setupStore(t))

	rec := do(r, http.MethodPost, "/rsvp", `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"message":"RSVP saved successfully"}`, rec.Body.String())

	yes := do(r, http.MethodGet, "/rsvp/export/html?attend=yes", "")
	assert.Equal(t, http.StatusOK, yes.Code)
	assert.Equal(t, "text/html; charset=utf-8", yes.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(yes.Body.String(), `<tr class="guest">`))
	assert.Contains(t, yes.Body.String(), "Ana")
	assert.Contains(t, yes.Body.String(), "✅")
	assert.Contains(t, yes.Body.String(), "Total: 1")

	no := do(r, http.MethodGet, "/rsvp/export/html?attend=no", "")
	assert.Equal(t, http.StatusOK, no.Code)
	assert.Equal(t, 0, strings.Count(no.Body.String(), `<tr class="guest">`))
	assert.Contains(t, no.Body.String(), "Total: 0")
}

func TestSubmitValidation(t *testing.T) {
	r := newRouter(t, setupStore(t))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"not json", `hello`, http.StatusBadRequest},
		{"missing email", `{"name":"Ana","attend":"yes"}`, http.StatusUnprocessableEntity},
		{"missing everything", `{}`, http.StatusUnprocessableEntity},
		{"wrong type", `{"name":1,"email":"a@b.c","attend":"yes"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/rsvp", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["ok"])
			assert.NotEmpty(t, body["error"])
		})
	}

	list := do(r, http.MethodGet, "/rsvp", "")
	assert.JSONEq(t, `{"count":0,"guests":[]}`, list.Body.String())
}

func TestListRSVPs(t *testing.T) {
	r := newRouter(t, setupStore(t))
	submit(t, r, `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)
	submit(t, r, `{"name":"Bruno","email":"bruno@x.com","attend":"no","msg":"Sorry"}`)

	rec := do(r, http.MethodGet, "/rsvp", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":2,"guests":[
		["2025-06-01T12:00:02.000000Z","Bruno","bruno@x.com","no","Sorry"],
		["2025-06-01T12:00:01.000000Z","Ana","ana@x.com","yes",null]
	]}`, rec.Body.String())
}

func TestExportCSV(t *testing.T) {
	r := newRouter(t, setupStore(t))
	submit(t, r, `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)
	submit(t, r, `{"name":"Bruno, Jr.","email":"bruno@x.com","attend":"no","msg":"line one\nline two"}`)

	rec := do(r, http.MethodGet, "/rsvp/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=guests.csv", rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "created_at", "name", "email", "attend", "msg"}, records[0])
	assert.Equal(t, []string{"1", "2025-06-01T12:00:01.000000Z", "Ana", "ana@x.com", "yes", ""}, records[1])
	assert.Equal(t, "Bruno, Jr.", records[2][2])
	assert.Equal(t, "line one\nline two", records[2][5])
}

func TestDashboardEscapesMarkup(t *testing.T) {
	r := newRouter(t, setupStore(t))
	submit(t, r, `{"name":"<script>alert(1)</script>","email":"x@y.z","attend":"yes"}`)

	rec := do(r, http.MethodGet, "/rsvp/export/html", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestDashboardPagination(t *testing.T) {
	r := newRouter(t, setupStore(t))
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		submit(t, r, `{"name":"`+name+`","email":"g@x.com","attend":"yes"}`)
	}

	rec := do(r, http.MethodGet, "/rsvp/export/html?attend=yes&page=2&size=1&order=name_asc", "")
	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(body, `<tr class="guest">`))
	assert.Contains(t, body, "Bruno")
	assert.Contains(t, body, `rel="prev" href="/rsvp/export/html?attend=yes&amp;order=name_asc&amp;page=1&amp;size=1"`)
	assert.Contains(t, body, `rel="next" href="/rsvp/export/html?attend=yes&amp;order=name_asc&amp;page=3&amp;size=1"`)

	last := do(r, http.MethodGet, "/rsvp/export/html?page=3&size=1&order=name_asc", "")
	assert.Contains(t, last.Body.String(), "Carla")
	assert.NotContains(t, last.Body.String(), `rel="next"`)
}

func TestDashboardHugePageIsEmpty(t *testing.T) {
	r := newRouter(t, setupStore(t))
	submit(t, r, `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)
	submit(t, r, `{"name":"Bruno","email":"bruno@x.com","attend":"no"}`)

	for _, page := range []string{"3", "46116860184273880", "9223372036854775807"} {
		rec := do(r, http.MethodGet, "/rsvp/export/html?size=200&page="+page, "")
		assert.Equal(t, http.StatusOK, rec.Code, page)
		assert.Equal(t, 0, strings.Count(rec.Body.String(), `<tr class="guest">`), page)
		assert.Contains(t, rec.Body.String(), "Total: 2", page)
	}
}

func TestDashboardBadParamsFallBack(t *testing.T) {
	r := newRouter(t, setupStore(t))
	submit(t, r, `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)

	rec := do(r, http.MethodGet, "/rsvp/export/html?page=abc&size=-3&order=bogus&attend=maybe", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `<tr class="guest">`))
}

func TestDashboardLocale(t *testing.T) {
	r := newRouter(t, setupStore(t))

	req := httptest.NewRequest(http.MethodGet, "/rsvp/export/html", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "Painel de RSVP")
}

func TestInvitationQR(t *testing.T) {
	r := newRouter(t, setupStore(t))

	rec := do(r, http.MethodGet, "/rsvp/qr", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHealthAndRequestID(t *testing.T) {
	r := newRouter(t, setupStore(t))

	rec := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(rsvp_api.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(rsvp_api.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(rsvp_api.RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t, setupStore(t))

	req := httptest.NewRequest(http.MethodOptions, "/rsvp", nil)
	req.Header.Set("Origin", "https://wedding.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

type MockRSVPDBLayer struct {
	mock.Mock
}

func (m *MockRSVPDBLayer) Insert(ctx context.Context, name, email, attend string, msg *string) (int64, error) {
	args := m.Called(ctx, name, email, attend, msg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRSVPDBLayer) ListAll(ctx context.Context) ([]models.GuestResponse, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.GuestResponse)
	return rows, args.Error(1)
}

func (m *MockRSVPDBLayer) ExportAll(ctx context.Context) ([]models.GuestResponse, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.GuestResponse)
	return rows, args.Error(1)
}

func (m *MockRSVPDBLayer) Query(ctx context.Context, filter models.Filter, sort models.SortKey, limit, offset int) ([]models.GuestResponse, int, error) {
	args := m.Called(ctx, filter, sort, limit, offset)
	rows, _ := args.Get(0).([]models.GuestResponse)
	return rows, args.Int(1), args.Error(2)
}

func (m *MockRSVPDBLayer) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestStoreFailuresReturn500(t *testing.T) {
	store := new(MockRSVPDBLayer)
	dbErr := errors.New("disk I/O error")
	store.On("Insert", mock.Anything, "Ana", "ana@x.com", "yes", (*string)(nil)).Return(int64(0), dbErr)
	store.On("ListAll", mock.Anything).Return(nil, dbErr)
	store.On("ExportAll", mock.Anything).Return(nil, dbErr)
	store.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, 0, dbErr)
	store.On("Ping", mock.Anything).Return(dbErr)
	r := newRouter(t, store)

	rec := do(r, http.MethodPost, "/rsvp", `{"name":"Ana","email":"ana@x.com","attend":"yes"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk I/O")

	for _, path := range []string{"/rsvp", "/rsvp/export", "/rsvp/export/html"} {
		rec := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "disk I/O", path)
	}

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/healthz", "").Code)
}
