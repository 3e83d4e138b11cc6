package security

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-security/internal/middleware"
	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/policy"
	"github.com/jwalitptl/admin-security/internal/repository/memory"
	securitysvc "github.com/jwalitptl/admin-security/internal/service/security"
	"github.com/jwalitptl/admin-security/pkg/security"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Fields  []map[string]string `json:"fields"`
}

func setupRouter(t *testing.T, params map[policy.Key]string) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators(middleware.ValidationConfig{CustomValidators: Validators()}))

	store := memory.NewStore()
	for k, v := range params {
		require.NoError(t, store.Update(context.Background(), string(k), v))
	}
	store.PutAccount(model.Account{ID: 1, Login: "jdoe", Status: model.AccountStatusActive})

	engine := policy.NewEngine(security.NewFormatValidator(), security.NewDigestHasher(),
		policy.WithClock(func() time.Time { return fixedNow }))
	svc := securitysvc.NewService(securitysvc.Dependencies{
		Engine:      engine,
		Parameters:  store,
		History:     store,
		Accounts:    store,
		Connections: store,
		Defaults:    policy.Defaults{policy.KeyMinimumLength: "12"},
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	api := r.Group("/api/v1")
	h := NewHandler(svc)
	h.RegisterRoutes(api)
	h.RegisterUserRoutes(api)
	return r, store
}

func do(r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestGetParameters(t *testing.T) {
	r, _ := setupRouter(t, map[policy.Key]string{policy.KeyMinimumLength: "8"})

	w, env := do(r, http.MethodGet, "/api/v1/security/parameters", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, float64(8), view["password_minimum_length"])
}

func TestUpdateParameters(t *testing.T) {
	r, store := setupRouter(t, nil)

	w, _ := do(r, http.MethodPut, "/api/v1/security/parameters", map[string]interface{}{
		"values": map[string]string{"password_minimum_length": "10", "access_failures_max": "3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	p, err := store.FindByKey(context.Background(), "access_failures_max")
	require.NoError(t, err)
	assert.Equal(t, "3", p.Value)
}

func TestUpdateParametersValidation(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w, env := do(r, http.MethodPut, "/api/v1/security/parameters", map[string]interface{}{
		"values": map[string]string{"no_such_parameter": "1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Fields, 1)
	assert.Contains(t, env.Fields[0]["field"], "no_such_parameter")

	w, _ = do(r, http.MethodPut, "/api/v1/security/parameters", `{"values":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodPut, "/api/v1/security/parameters", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvancedToggle(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w, env := do(r, http.MethodPost, "/api/v1/security/advanced", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, true, view["use_advanced_security_parameters"])
	assert.Equal(t, float64(12), view["password_minimum_length"])

	w, env = do(r, http.MethodDelete, "/api/v1/security/advanced", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = nil
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, false, view["use_advanced_security_parameters"])
	assert.NotContains(t, view, "password_history_size")
}

func TestValidateAdminPassword(t *testing.T) {
	r, _ := setupRouter(t, map[policy.Key]string{policy.KeyMinimumLength: "8"})

	w, env := do(r, http.MethodPost, "/api/v1/security/passwords/admin/validate", gin.H{"password": "short"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PasswordCheckResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "password_minimum_length", resp.Outcome)
	assert.False(t, resp.Valid)

	w, _ = do(r, http.MethodPost, "/api/v1/security/passwords/admin/validate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateUserPassword(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w, env := do(r, http.MethodPost, "/api/v1/users/1/password/validate", gin.H{"password": "anything"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.PasswordCheckResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Valid)

	w, _ = do(r, http.MethodPost, "/api/v1/users/abc/password/validate", gin.H{"password": "anything"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePassword(t *testing.T) {
	r, store := setupRouter(t, map[policy.Key]string{
		policy.KeyAdvancedEnabled: "true",
		policy.KeyHistorySize:     "2",
		policy.KeyDurationDays:    "30",
	})

	w, env := do(r, http.MethodPut, "/api/v1/users/1/password", gin.H{"password": "Str0ng!Pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.PasswordChangeResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.PasswordExpiresAt)
	assert.True(t, fixedNow.Add(30*24*time.Hour).Equal(*resp.PasswordExpiresAt))
	assert.Equal(t, "Str0ng!Pass", store.Password(1))

	w, env = do(r, http.MethodPut, "/api/v1/users/1/password", gin.H{"password": "Str0ng!Pass"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp = model.PasswordChangeResponse{}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "password_already_used", resp.Outcome)

	w, _ = do(r, http.MethodPut, "/api/v1/users/99/password", gin.H{"password": "Str0ng!Pass"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetExpiryAndAccess(t *testing.T) {
	r, store := setupRouter(t, map[policy.Key]string{
		policy.KeyAccountLifetimeMonths: "1",
		policy.KeyFailureMax:            "1",
		policy.KeyFailureInterval:       "10",
	})
	store.RecordAttempt("jdoe", false, fixedNow.Add(-time.Minute))

	w, env := do(r, http.MethodGet, "/api/v1/security/expiry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var expiry model.ExpiryResponse
	require.NoError(t, json.Unmarshal(env.Data, &expiry))
	assert.Nil(t, expiry.PasswordExpiresAt)
	require.NotNil(t, expiry.AccountExpiresAt)

	w, env = do(r, http.MethodGet, "/api/v1/security/access/jdoe", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var access model.AccessResponse
	require.NoError(t, json.Unmarshal(env.Data, &access))
	assert.True(t, access.Locked)
}
