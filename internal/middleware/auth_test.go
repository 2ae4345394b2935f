package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shubharvey/brickbook-sub001/config"
	"github.com/Shubharvey/brickbook-sub001/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	config.AppConfig = &config.Config{
		Server: config.ServerConfig{JWTSecret: "test-secret", JWTExpirationHours: 1},
	}

	token, err := utils.GenerateToken(42, "owner")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		roles      []string
		wantStatus int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"not a bearer token", "Basic abc123", nil, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", nil, http.StatusUnauthorized},
		{"valid token", "Bearer " + token, nil, http.StatusOK},
		{"role allowed", "Bearer " + token, []string{"owner"}, http.StatusOK},
		{"role denied", "Bearer " + token, []string{"manager"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	config.AppConfig = &config.Config{
		Server: config.ServerConfig{JWTSecret: "test-secret", JWTExpirationHours: -1},
	}
	token, err := utils.GenerateToken(42, "owner")
	require.NoError(t, err)

	config.AppConfig.Server.JWTExpirationHours = 1
	r := setupRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
