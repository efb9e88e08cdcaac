package handlers

import (
	"errors"
	"net/http"

	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// currentUserID pulls the authenticated user's ID set by the auth middleware.
// On failure it writes the 401 response and returns ok=false.
func currentUserID(c *gin.Context) (int64, bool) {
	userIDRaw, exists := c.Get("userID")
	if !exists {
		utils.LogError(errors.New("userID not found in context"), "currentUserID: userID not in context")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return 0, false
	}
	userID, ok := userIDRaw.(int64)
	if !ok {
		utils.LogError(errors.New("userID is not of type int64"), "currentUserID: type assertion failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User ID format incorrect.", "Invalid user ID format in context"))
		return 0, false
	}
	return userID, true
}

// currentUserRoles pulls the authenticated user's role set from the context.
func currentUserRoles(c *gin.Context) []string {
	rolesRaw, exists := c.Get("userRoles")
	if !exists {
		return nil
	}
	roles, _ := rolesRaw.([]string)
	return roles
}
