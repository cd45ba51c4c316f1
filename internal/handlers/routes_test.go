package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/models/modelstest"
	"github.com/xavierjeanne/softdesk/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-handlers")
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	cfg := config.DefaultConfig()
	router := gin.New()
	RegisterRoutes(router, Deps{DB: modelstest.NewDB(t), Config: cfg})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// register signs up username and returns its token and user id.
func (a *apiClient) register(username string) (string, uint) {
	a.t.Helper()
	code, env := a.do("POST", "/api/auth/register", "", gin.H{"username": username, "password": "correct horse", "age": 30})
	require.Equal(a.t, http.StatusCreated, code, env.Message)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(a.t, data.Token)
	return data.Token, data.User.ID
}

func decodeID(t *testing.T, env envelope) uint {
	t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v.ID
}

func TestRoutes_MembershipScenario(t *testing.T) {
	api := newAPI(t)
	tokenA, _ := api.register("a")
	tokenC, idC := api.register("c")
	tokenD, _ := api.register("d")

	code, env := api.do("POST", "/api/projects", tokenA, gin.H{"name": "P", "type": "BACK_END"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	project := fmt.Sprintf("/api/projects/%d", decodeID(t, env))

	code, env = api.do("POST", project+"/users", tokenA, gin.H{"user_id": idC})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = api.do("GET", project, tokenD, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do("GET", project, tokenC, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do("PUT", project, tokenC, gin.H{"name": "P2"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do("PUT", project, tokenA, gin.H{"name": "P2"})
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do("POST", project+"/users", tokenA, gin.H{"user_id": idC})
	assert.Equal(t, http.StatusConflict, code, env.Message)
}

func TestRoutes_StatusFamilies(t *testing.T) {
	api := newAPI(t)
	tokenA, idA := api.register("a")
	tokenB, idB := api.register("b")
	_, idOutsider := api.register("outsider")

	code, _ := api.do("GET", "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := api.do("POST", "/api/projects", tokenA, gin.H{"name": "P", "type": "DESKTOP"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "type", env.Field)

	_, env = api.do("POST", "/api/projects", tokenA, gin.H{"name": "P", "type": "IOS"})
	project := fmt.Sprintf("/api/projects/%d", decodeID(t, env))
	code, _ = api.do("POST", project+"/users", tokenA, gin.H{"user_id": idB})
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do("POST", project+"/issues", tokenA, gin.H{"title": "x", "tag": "BUG", "priority": "LOW", "assignee": idOutsider})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "assignee", env.Field)
	assert.Equal(t, fmt.Sprintf("user %d is not a contributor of this project", idOutsider), env.Message)

	code, env = api.do("POST", project+"/issues", tokenA, gin.H{"title": "x", "tag": "BUG", "priority": "LOW", "assignee": idB})
	require.Equal(t, http.StatusCreated, code, env.Message)
	issue := fmt.Sprintf("%s/issues/%d", project, decodeID(t, env))

	code, env = api.do("POST", issue+"/comments", tokenB, gin.H{"description": "b's note"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var comment struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	code, _ = api.do("PUT", issue+"/comments/"+comment.ID, tokenB, gin.H{"description": "edited"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do("PUT", issue+"/comments/"+comment.ID, tokenA, gin.H{"description": "hijack"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do("GET", issue+"/comments/not-a-uuid", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do("GET", project+"/issues/abc", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do("GET", project+"/users", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	var members struct {
		Items []struct {
			ID     uint   `json:"id"`
			UserID uint   `json:"user_id"`
			Role   string `json:"role"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &members))
	require.Len(t, members.Items, 2)
	require.Equal(t, idA, members.Items[0].UserID)

	code, env = api.do("DELETE", fmt.Sprintf("%s/users/%d", project, members.Items[0].ID), tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, code, env.Message)

	code, _ = api.do("DELETE", issue+"/comments/"+comment.ID, tokenB, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = api.do("DELETE", project, tokenA, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = api.do("GET", project, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoutes_RegisterAndProfile(t *testing.T) {
	api := newAPI(t)

	code, env := api.do("POST", "/api/auth/register", "", gin.H{"username": "kid", "password": "correct horse", "age": 14, "can_be_contacted": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "can_be_contacted", env.Field)

	token, id := api.register("alice")
	_, other := api.register("bob")

	code, env = api.do("POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, code, env.Message)

	code, _ = api.do("POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "correct horse"})
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do("GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, decodeID(t, env))

	code, _ = api.do("GET", fmt.Sprintf("/api/users/%d", other), token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do("PUT", fmt.Sprintf("/api/users/%d", other), token, gin.H{"first_name": "Robert"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do("DELETE", fmt.Sprintf("/api/users/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = api.do("GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoutes_Health(t *testing.T) {
	api := newAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
