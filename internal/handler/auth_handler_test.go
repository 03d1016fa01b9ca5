package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/aulavista/horarios-api/internal/middleware"
	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/internal/service"
	"github.com/aulavista/horarios-api/pkg/config"
)

func authRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(config.AuthConfig{
		Enabled:           true,
		OperatorEmail:     "director@colegio.es",
		OperatorPassword:  "secret",
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}, nil, nil)

	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(auth).Login)
	protected := r.Group("", internalmiddleware.JWT(auth, true))
	protected.GET("/secure", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, auth
}

func TestLoginAndProtectedRoute(t *testing.T) {
	router, _ := authRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "director@colegio.es", "password": "secret"})
	login := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(login, req)
	require.Equal(t, http.StatusOK, login.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)

	secure := httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.AccessToken)
	router.ServeHTTP(secure, req)
	assert.Equal(t, http.StatusOK, secure.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router, _ := authRouter(t)

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	router, _ := authRouter(t)

	body, _ := json.Marshal(map[string]string{"email": "director@colegio.es", "password": "wrong"})
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTMiddlewareDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", internalmiddleware.JWT(nil, false), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/open", nil)
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
