package handlers

import (
	"net/http"
	"time"

	"staff_rota_backend/internal/services"
	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static shift catalog and the calendar reads.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetDefinitions returns the ordered shift definitions for a role and weekday.
func (h *CatalogHandler) GetDefinitions(c *gin.Context) {
	role := c.Param("role")
	day := c.Query("day")
	if day == "" {
		day = services.WeekdayName(time.Now().UTC())
	}

	c.JSON(http.StatusOK, gin.H{
		"role":        role,
		"day":         day,
		"definitions": services.DefinitionsFor(role, day),
	})
}

// GetWeeks returns the current and upcoming Monday-anchored weeks.
func (h *CatalogHandler) GetWeeks(c *gin.Context) {
	now := time.Now().UTC()
	current := services.CurrentWeek(now)
	upcoming := services.UpcomingWeek(now)

	c.JSON(http.StatusOK, gin.H{
		"current_week":  weekDates(current),
		"upcoming_week": weekDates(upcoming),
	})
}

func weekDates(w services.WeekWindow) []string {
	out := make([]string, 0, len(w.Days))
	for _, d := range w.Days {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}

// GetWindowStatus reports the availability submission window at this instant.
func (h *CatalogHandler) GetWindowStatus(c *gin.Context) {
	status := services.SubmissionWindowStatus(time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"phase":             status.Phase,
		"opens_at":          status.OpensAt,
		"closes_at":         status.ClosesAt,
		"remaining_seconds": int64(status.Remaining.Seconds()),
		"opens_soon":        status.OpensSoon,
		"closes_soon":       status.ClosesSoon,
	})
}

// GetRoleGroups lists the schedulable role groups.
func (h *CatalogHandler) GetRoleGroups(c *gin.Context) {
	groups := make([]services.RoleGroup, 0)
	for _, name := range services.RoleGroupNames() {
		group, _ := services.RoleGroupByName(name)
		groups = append(groups, group)
	}
	c.JSON(http.StatusOK, gin.H{"role_groups": groups})
}

// helper shared by handlers translating unexpected errors.
func respondInternal(c *gin.Context, err error, context string) {
	utils.LogError(err, context)
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", "Internal error"))
}
