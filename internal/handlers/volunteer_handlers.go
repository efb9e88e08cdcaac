package handlers

import (
	"net/http"

	"staff_rota_backend/internal/services"
	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// VolunteerHandler holds the volunteering service.
type VolunteerHandler struct {
	volunteerService services.VolunteerService
}

// NewVolunteerHandler creates a new VolunteerHandler.
func NewVolunteerHandler(vs services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: vs}
}

// RelinquishShift opens a volunteer cycle for one of the caller's shifts.
func (h *VolunteerHandler) RelinquishShift(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RelinquishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RelinquishShift: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cycle, err := h.volunteerService.Relinquish(userID, req)
	if err != nil {
		respondWorkflowError(c, err, "RelinquishShift: Error from volunteerService.Relinquish")
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// VolunteerForShift adds the caller to an open cycle's candidate pool.
func (h *VolunteerHandler) VolunteerForShift(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cycleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	cycle, err := h.volunteerService.Volunteer(userID, cycleID)
	if err != nil {
		respondWorkflowError(c, err, "VolunteerForShift: Error from volunteerService.Volunteer")
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// ApproveVolunteer assigns the shift to the chosen volunteer.
func (h *VolunteerHandler) ApproveVolunteer(c *gin.Context) {
	cycleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		VolunteerID int64 `json:"volunteer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ApproveVolunteer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cycle, err := h.volunteerService.Approve(cycleID, req.VolunteerID)
	if err != nil {
		respondWorkflowError(c, err, "ApproveVolunteer: Error from volunteerService.Approve")
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// CancelVolunteerCycle cancels an active cycle; the owner keeps the shift.
func (h *VolunteerHandler) CancelVolunteerCycle(c *gin.Context) {
	cycleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	cycle, err := h.volunteerService.Cancel(cycleID)
	if err != nil {
		respondWorkflowError(c, err, "CancelVolunteerCycle: Error from volunteerService.Cancel")
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// GetOpenCycles lists open cycles the caller could volunteer for.
func (h *VolunteerHandler) GetOpenCycles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cycles, err := h.volunteerService.ListOpen(&userID)
	if err != nil {
		respondInternal(c, err, "GetOpenCycles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer_cycles": cycles})
}

// GetAllActiveCycles lists every actionable cycle for managers.
func (h *VolunteerHandler) GetAllActiveCycles(c *gin.Context) {
	cycles, err := h.volunteerService.ListOpen(nil)
	if err != nil {
		respondInternal(c, err, "GetAllActiveCycles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer_cycles": cycles})
}

// GetMyCycles lists cycles the caller opened.
func (h *VolunteerHandler) GetMyCycles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cycles, err := h.volunteerService.ListForOwner(userID)
	if err != nil {
		respondInternal(c, err, "GetMyCycles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer_cycles": cycles})
}
