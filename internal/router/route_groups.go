package router

import (
	"staff_rota_backend/internal/handlers"
	"staff_rota_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

var managerRoles = []string{"manager", "general_manager", "system_admin"}

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupCatalogRoutes sets up the shift catalog and calendar routes.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	catalogRoutes := authenticatedGroup.Group("/catalog")
	{
		catalogRoutes.GET("/shift-types/:role", catalogHandler.GetDefinitions)
		catalogRoutes.GET("/weeks", catalogHandler.GetWeeks)
		catalogRoutes.GET("/submission-window", catalogHandler.GetWindowStatus)
		catalogRoutes.GET("/role-groups", catalogHandler.GetRoleGroups)
	}
}

// SetupAvailabilityRoutes sets up the availability submission routes.
func SetupAvailabilityRoutes(authenticatedGroup *gin.RouterGroup, availabilityHandler *handlers.AvailabilityHandler) {
	availabilityRoutes := authenticatedGroup.Group("/availability")
	{
		availabilityRoutes.POST("", availabilityHandler.SubmitAvailability)
		availabilityRoutes.GET("", availabilityHandler.GetMyAvailability)
	}
}

// SetupScheduleRoutes sets up the schedule build and read routes.
// Write operations and the scheduler's working views are manager-only.
func SetupScheduleRoutes(authenticatedGroup *gin.RouterGroup, scheduleHandler *handlers.ScheduleHandler) {
	authenticatedGroup.GET("/my-schedule", scheduleHandler.GetMySchedule)

	scheduleRoutes := authenticatedGroup.Group("/schedule")
	{
		scheduleRoutes.GET("/:group", scheduleHandler.GetPublished)

		managerRoutes := scheduleRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
		{
			managerRoutes.PUT("/:group", scheduleHandler.SaveWeek)
			managerRoutes.GET("/:group/grid", scheduleHandler.GetAvailabilityGrid)
			managerRoutes.GET("/:group/export", scheduleHandler.ExportWeekCSV)
		}
	}

	staffingRoutes := authenticatedGroup.Group("/staffing-requirements")
	staffingRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
	{
		staffingRoutes.PUT("", scheduleHandler.SetStaffingRequirement)
		staffingRoutes.GET("/:role", scheduleHandler.GetStaffingRequirements)
	}
}

// SetupSwapRoutes sets up the shift swap routes. Approving or denying a swap
// is a manager decision.
func SetupSwapRoutes(authenticatedGroup *gin.RouterGroup, swapHandler *handlers.SwapHandler) {
	swapRoutes := authenticatedGroup.Group("/swaps")
	{
		swapRoutes.POST("", swapHandler.RequestSwap)
		swapRoutes.GET("/mine", swapHandler.GetMySwapRequests)
		swapRoutes.GET("/incoming", swapHandler.GetIncomingSwapRequests)

		managerRoutes := swapRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
		{
			managerRoutes.PATCH("/:id/approve", swapHandler.ApproveSwap)
			managerRoutes.PATCH("/:id/deny", swapHandler.DenySwap)
		}
	}
}

// SetupVolunteerRoutes sets up the relinquish/volunteer routes.
// Approving or cancelling a cycle is a manager decision.
func SetupVolunteerRoutes(authenticatedGroup *gin.RouterGroup, volunteerHandler *handlers.VolunteerHandler) {
	volunteerRoutes := authenticatedGroup.Group("/volunteer-cycles")
	{
		volunteerRoutes.POST("", volunteerHandler.RelinquishShift)
		volunteerRoutes.GET("/open", volunteerHandler.GetOpenCycles)
		volunteerRoutes.GET("/mine", volunteerHandler.GetMyCycles)
		volunteerRoutes.POST("/:id/volunteer", volunteerHandler.VolunteerForShift)

		managerRoutes := volunteerRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
		{
			managerRoutes.GET("/active", volunteerHandler.GetAllActiveCycles)
			managerRoutes.PATCH("/:id/approve", volunteerHandler.ApproveVolunteer)
			managerRoutes.PATCH("/:id/cancel", volunteerHandler.CancelVolunteerCycle)
		}
	}
}

// SetupAnnouncementRoutes sets up the notification feed routes.
func SetupAnnouncementRoutes(authenticatedGroup *gin.RouterGroup, announcementHandler *handlers.AnnouncementHandler) {
	announcementRoutes := authenticatedGroup.Group("/announcements")
	{
		announcementRoutes.GET("", announcementHandler.GetMyAnnouncements)
	}
}
