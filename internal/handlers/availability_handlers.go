package handlers

import (
	"errors"
	"net/http"
	"time"

	"staff_rota_backend/internal/services"
	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler holds the availability service.
type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: as}
}

// SubmitAvailability replaces the caller's availability for the upcoming week.
func (h *AvailabilityHandler) SubmitAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SubmitAvailability: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	submissions, err := h.availabilityService.Submit(userID, req, time.Now().UTC())
	if err != nil {
		utils.LogError(err, "SubmitAvailability: Error from availabilityService.Submit")
		if errors.Is(err, services.ErrWindowClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Availability submission window is closed.", err.Error()))
		} else if errors.Is(err, services.ErrOutOfRange) || errors.Is(err, services.ErrInvalidShiftType) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid availability entry.", err.Error()))
		} else {
			respondInternal(c, err, "SubmitAvailability")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// GetMyAvailability returns the caller's submissions for the upcoming week.
func (h *AvailabilityHandler) GetMyAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	submissions, err := h.availabilityService.GetForUpcomingWeek(userID, time.Now().UTC())
	if err != nil {
		respondInternal(c, err, "GetMyAvailability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}
