package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"staff_rota_backend/internal/services"
	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler holds the schedule and staffing services.
type ScheduleHandler struct {
	scheduleService services.ScheduleService
	staffingService services.StaffingService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(ss services.ScheduleService, sts services.StaffingService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss, staffingService: sts}
}

func respondScheduleError(c *gin.Context, err error, context string) {
	utils.LogError(err, context)
	switch {
	case errors.Is(err, services.ErrUnknownRoleGroup):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown role group.", err.Error()))
	case errors.Is(err, services.ErrInvalidWeekStart),
		errors.Is(err, services.ErrDateOutsideWeek),
		errors.Is(err, services.ErrUnknownShiftType),
		errors.Is(err, services.ErrMissingCustomTime):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid schedule payload.", err.Error()))
	case errors.Is(err, services.ErrUserNotInGroup):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Assignment references a user outside the role group.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", "Internal error"))
	}
}

// SaveWeek replaces a role group's schedule for one week.
func (h *ScheduleHandler) SaveWeek(c *gin.Context) {
	group := c.Param("group")

	var req services.SaveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SaveWeek: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.scheduleService.SaveWeek(group, req); err != nil {
		respondScheduleError(c, err, "SaveWeek: Error from scheduleService.SaveWeek")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule saved.", "published": req.Publish})
}

// GetPublished returns a group's published schedule for one week.
func (h *ScheduleHandler) GetPublished(c *gin.Context) {
	group := c.Param("group")
	weekStart := c.Query("week_start")

	byDate, err := h.scheduleService.ReadPublished(group, weekStart)
	if err != nil {
		respondScheduleError(c, err, "GetPublished: Error from scheduleService.ReadPublished")
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": byDate})
}

// GetAvailabilityGrid returns the scheduler's working view for a group/week.
func (h *ScheduleHandler) GetAvailabilityGrid(c *gin.Context) {
	group := c.Param("group")
	weekStart := c.Query("week_start")

	grid, err := h.scheduleService.GetAvailabilityGrid(group, weekStart)
	if err != nil {
		respondScheduleError(c, err, "GetAvailabilityGrid: Error from scheduleService.GetAvailabilityGrid")
		return
	}
	c.JSON(http.StatusOK, grid)
}

// ExportWeekCSV streams a published week as CSV.
func (h *ScheduleHandler) ExportWeekCSV(c *gin.Context) {
	group := c.Param("group")
	weekStart := c.Query("week_start")

	data, err := h.scheduleService.ExportWeekCSV(group, weekStart)
	if err != nil {
		respondScheduleError(c, err, "ExportWeekCSV: Error from scheduleService.ExportWeekCSV")
		return
	}

	filename := fmt.Sprintf("schedule_%s_%s.csv", group, weekStart)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// GetMySchedule returns the caller's published shifts for the current week.
func (h *ScheduleHandler) GetMySchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.scheduleService.MySchedule(userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
			return
		}
		respondInternal(c, err, "GetMySchedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": entries})
}

// SetStaffingRequirement upserts a per-role, per-date headcount requirement.
func (h *ScheduleHandler) SetStaffingRequirement(c *gin.Context) {
	var req services.SetRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetStaffingRequirement: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	requirement, err := h.staffingService.SetRequirement(req)
	if err != nil {
		utils.LogError(err, "SetStaffingRequirement: Error from staffingService.SetRequirement")
		if errors.Is(err, services.ErrInvalidRequirement) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid staffing requirement.", err.Error()))
		} else {
			respondInternal(c, err, "SetStaffingRequirement")
		}
		return
	}
	c.JSON(http.StatusOK, requirement)
}

// GetStaffingRequirements returns a role's requirements for one week, keyed
// by date.
func (h *ScheduleHandler) GetStaffingRequirements(c *gin.Context) {
	roleName := c.Param("role")

	anchor := time.Now().UTC()
	if raw := c.Query("week_start"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid week_start parameter.", raw))
			return
		}
		anchor = parsed
	}

	reqs, err := h.staffingService.GetRequirementsForWeek(roleName, services.CurrentWeek(anchor))
	if err != nil {
		respondInternal(c, err, "GetStaffingRequirements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": roleName, "requirements": reqs})
}
