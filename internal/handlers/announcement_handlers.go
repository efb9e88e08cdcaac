package handlers

import (
	"net/http"
	"strconv"

	"staff_rota_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AnnouncementHandler serves the in-app notification feed.
type AnnouncementHandler struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(as services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: as}
}

// GetMyAnnouncements lists announcements addressed to the caller, newest first.
func (h *AnnouncementHandler) GetMyAnnouncements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	announcements, err := h.announcementService.ListForUser(userID, currentUserRoles(c), limit)
	if err != nil {
		respondInternal(c, err, "GetMyAnnouncements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}
