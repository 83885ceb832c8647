package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-fixture-service/internal/adapter/gin/handler"
	"user-fixture-service/internal/adapter/repository/memory"
	"user-fixture-service/internal/config"
	"user-fixture-service/internal/usecase/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupRouter(t testing.TB) http.Handler {
	log := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserStore(log), config.NewLoader(""), log)
	return SetupRouter(handler.NewUserHandler(uc, log), nil, "user-fixture-service", log)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := do(setupRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"user-fixture-service"}`, w.Body.String())
}

func TestRouter_UserFlow(t *testing.T) {
	r := setupRouter(t)

	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/users", `{"id":1,"name":"jane doe","email":"jane@example.com"}`).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/users", `{"id":2,"name":"Bob"}`).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/users", `{"id":1,"name":"Shadow"}`).Code)

	w := do(r, http.MethodGet, "/v1/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"jane doe","email":"jane@example.com","display_name":"Jane Doe"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/users/99", "").Code)

	w = do(r, http.MethodGet, "/v1/users?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list handler.ListUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Users, 2)
	assert.Equal(t, "jane doe", list.Users[0].Name)
	assert.Equal(t, "Bob", list.Users[1].Name)
	assert.Equal(t, int64(3), list.Pagination.Total)
	assert.Equal(t, int64(2), list.Pagination.TotalPages)

	w = do(r, http.MethodPost, "/v1/users", `{"id":3,"name":"Eve","email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email")
}

func TestRouter_Helpers(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/v1/emails/validate?address=invalid-email", "")
	assert.JSONEq(t, `{"address":"invalid-email","valid":false}`, w.Body.String())

	w = do(r, http.MethodPost, "/v1/names/format", `{"first":"mary","last":"SMITH"}`)
	assert.JSONEq(t, `{"full_name":"Mary Smith"}`, w.Body.String())

	w = do(r, http.MethodGet, "/v1/config", "")
	assert.JSONEq(t, `{"debug":true,"port":8080}`, w.Body.String())
}

func TestRouter_ListUsers_PageFarBeyondEnd(t *testing.T) {
	r := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/users", `{"id":1,"name":"jane doe"}`).Code)

	w := do(r, http.MethodGet, "/v1/users?page=1000000000000000000&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list handler.ListUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Users)
	assert.Equal(t, int64(1), list.Pagination.Total)
}
