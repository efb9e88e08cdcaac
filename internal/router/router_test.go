package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Decision endpoints sit behind the manager gate; a staff token must be
// rejected before any handler runs.
func TestDecisionRoutesRequireManagerRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("routing-test-secret")

	engine := gin.New()
	Setup(engine, nil)

	token, err := utils.GenerateAccessToken(7, "bob", []string{"waiter"})
	require.NoError(t, err)

	paths := []string{
		"/api/v1/swaps/1/approve",
		"/api/v1/swaps/1/deny",
		"/api/v1/volunteer-cycles/1/approve",
		"/api/v1/volunteer-cycles/1/cancel",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPatch, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestDecisionRoutesRejectMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("routing-test-secret")

	engine := gin.New()
	Setup(engine, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/swaps/1/approve", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
