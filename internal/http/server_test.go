package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"khosta-backend-go/internal/config"
	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/services"
	"khosta-backend-go/internal/store/kv"
)

type testAPI struct {
	server  *Server
	handler http.Handler
	tokens  map[models.Role]string
	ids     map[models.Role]string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	backend, err := kv.OpenSQLite(":memory:")
	require.NoError(t, err)
	st := kv.New(backend)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{
		StorageBackend:    config.BackendLocal,
		JWTSecret:         "test-secret",
		JWTIssuer:         "khosta-test",
		AccessTTLSeconds:  3600,
		RefreshTTLSeconds: 7200,
		MediaStoragePath:  t.TempDir(),
	}
	server := NewServer(st, cfg, zap.NewNop())
	api := &testAPI{
		server:  server,
		handler: server.Router(),
		tokens:  map[models.Role]string{},
		ids:     map[models.Role]string{},
	}
	for _, role := range models.Roles {
		email := string(role) + "@khosta.test"
		user, err := server.Users.Create(context.Background(), services.UserInput{
			FullName: "Test " + string(role),
			Email:    email,
			Password: "password-" + string(role),
			Role:     string(role),
		})
		require.NoError(t, err)
		login, err := server.Users.Login(context.Background(), email, "password-"+string(role))
		require.NoError(t, err)
		api.tokens[role] = login.AccessToken
		api.ids[role] = user.ID
	}
	return api
}

func (a *testAPI) do(t *testing.T, role models.Role, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token := a.tokens[role]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func recordBody() map[string]interface{} {
	return map[string]interface{}{
		"fullName":      "João Manuel",
		"birthDate":     "1990-05-15",
		"gender":        "male",
		"processNumber": "PR-001/2020",
		"crime":         "robbery",
		"entryDate":     "2020-01-10",
		"sentence":      5,
		"status":        "incarcerated",
	}
}

func TestRoleMatrix(t *testing.T) {
	api := newTestAPI(t)
	cases := []struct {
		role   models.Role
		method string
		path   string
		want   int
	}{
		{"", http.MethodGet, "/api/records", http.StatusUnauthorized},
		{models.RoleDirector, http.MethodGet, "/api/dashboard", http.StatusOK},
		{models.RoleDirector, http.MethodGet, "/api/records", http.StatusOK},
		{models.RoleDirector, http.MethodPost, "/api/records", http.StatusForbidden},
		{models.RoleDirector, http.MethodGet, "/api/visitors", http.StatusForbidden},
		{models.RoleDirector, http.MethodGet, "/api/reports/summary", http.StatusOK},
		{models.RoleDirector, http.MethodGet, "/api/users", http.StatusForbidden},
		{models.RoleAgent, http.MethodGet, "/api/visitors", http.StatusOK},
		{models.RoleAgent, http.MethodGet, "/api/visits", http.StatusOK},
		{models.RoleAgent, http.MethodGet, "/api/reports/summary", http.StatusForbidden},
		{models.RoleAgent, http.MethodGet, "/api/users", http.StatusForbidden},
		{models.RoleAgent, http.MethodGet, "/api/system/host", http.StatusForbidden},
		{models.RoleAdmin, http.MethodGet, "/api/users", http.StatusOK},
		{models.RoleAdmin, http.MethodGet, "/api/reports/movements", http.StatusOK},
		{models.RoleAdmin, http.MethodGet, "/api/visitors", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(string(tc.role)+" "+tc.method+" "+tc.path, func(t *testing.T) {
			var body interface{}
			if tc.method == http.MethodPost {
				body = recordBody()
			}
			rec := api.do(t, tc.role, tc.method, tc.path, body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRecordEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, models.RoleAgent, http.MethodPost, "/api/records", recordBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Record](t, rec)
	assert.Equal(t, 5, created.SentenceYears)
	require.Len(t, created.History, 1)

	bad := recordBody()
	bad["sentence"] = "101"
	bad["birthDate"] = ""
	rec = api.do(t, models.RoleAgent, http.MethodPost, "/api/records", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	validation := decode[ValidationResponse](t, rec)
	require.Len(t, validation.Violations, 2)
	assert.Equal(t, "birthDate", validation.Violations[0].Field)
	assert.Equal(t, "sentence", validation.Violations[1].Field)

	rec = api.do(t, models.RoleAgent, http.MethodPut, "/api/records/"+created.ID, map[string]string{"status": "parole"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Record](t, rec)
	assert.Equal(t, models.StatusParole, updated.Status)
	assert.Len(t, updated.History, 2)

	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/records?q=joao", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ListResponse[models.Record]](t, rec).Total)

	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/records?from=2024-02-01&to=2024-01-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, models.RoleAgent, http.MethodDelete, "/api/records/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, models.RoleAgent, http.MethodGet, "/api/records/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVisitorAndVisitEndpoints(t *testing.T) {
	api := newTestAPI(t)
	record := decode[models.Record](t, api.do(t, models.RoleAgent, http.MethodPost, "/api/records", recordBody()))

	visitorBody := map[string]string{"fullName": "Carla", "document": "DOC-9", "relation": "Sister", "recordId": record.ID}
	rec := api.do(t, models.RoleAgent, http.MethodPost, "/api/visitors", visitorBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	visitor := decode[models.Visitor](t, rec)

	rec = api.do(t, models.RoleAgent, http.MethodPost, "/api/visitors", visitorBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, models.RoleAgent, http.MethodPost, "/api/visits", map[string]string{
		"visitorId": visitor.ID, "visitDate": "2024-11-09T10:30", "visitType": "family",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	visit := decode[models.Visit](t, rec)
	assert.Equal(t, api.ids[models.RoleAgent], visit.RegisteredBy)
	assert.Equal(t, record.ID, visit.RecordID)

	rec = api.do(t, models.RoleAgent, http.MethodPut, "/api/visitors/"+visitor.ID+"/active", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, models.RoleAgent, http.MethodGet, "/api/visitors?active=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListResponse[services.VisitorView]](t, rec)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, record.FullName, list.Items[0].RecordName)

	rec = api.do(t, models.RoleAgent, http.MethodGet, "/api/visitors?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, models.RoleAgent, http.MethodGet, "/api/visitors/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJSONBodyLimit(t *testing.T) {
	api := newTestAPI(t)
	body := recordBody()
	body["fullName"] = strings.Repeat("a", maxJSONBytes)
	rec := api.do(t, models.RoleAgent, http.MethodPost, "/api/records", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, "", http.MethodPost, "/api/auth/login", LoginRequest{Email: "agent@khosta.test", Password: strings.Repeat("x", maxJSONBytes)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHidesPasswordHash(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, "", http.MethodPost, "/api/auth/login", LoginRequest{Email: "agent@khosta.test", Password: "password-agent"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "argon2id")

	login := decode[TokenResponse](t, rec)
	assert.Equal(t, models.RoleAgent, login.User.Role)

	rec = api.do(t, "", http.MethodPost, "/api/auth/login", LoginRequest{Email: "agent@khosta.test", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, "", http.MethodPost, "/api/auth/refresh", RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, "", http.MethodPost, "/api/auth/refresh", RefreshRequest{RefreshToken: login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, models.RoleAgent, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "agent@khosta.test", decode[UserDTO](t, rec).Email)
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, models.RoleAdmin, http.MethodPost, "/api/users", UserRequest{
		FullName: "New Agent", Email: "agent@khosta.test", Password: "long-enough", Role: "agent",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, models.RoleAdmin, http.MethodPut, "/api/users/"+api.ids[models.RoleAdmin]+"/active", map[string]bool{"active": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, models.RoleAdmin, http.MethodPut, "/api/users/"+api.ids[models.RoleAgent]+"/active", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, "", http.MethodPost, "/api/auth/login", LoginRequest{Email: "agent@khosta.test", Password: "password-agent"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, models.RoleAdmin, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.Equal(t, 3, decode[ListResponse[UserDTO]](t, rec).Total)
}

func TestReportExportDownload(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, models.RoleAgent, http.MethodPost, "/api/records", recordBody())

	rec := api.do(t, models.RoleDirector, http.MethodGet, "/api/reports/summary/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename=report_summary_"), disposition)
	assert.True(t, strings.HasSuffix(disposition, ".xlsx"), disposition)

	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/reports/movements/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/reports/summary/export?format=csv", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/reports/inmates", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, models.RoleDirector, http.MethodGet, "/api/reports/inmates/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UP", decode[HealthResponse](t, rec).Status)

	rec = api.do(t, "", http.MethodGet, "/health/ready", nil)
	ready := decode[HealthResponse](t, rec)
	assert.Equal(t, "UP", ready.Checks["store"].Status)

	rec = api.do(t, "", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
