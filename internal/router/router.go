package router

import (
	"database/sql"

	"staff_rota_backend/internal/handlers"
	"staff_rota_backend/internal/middleware"
	"staff_rota_backend/internal/repositories"
	"staff_rota_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	availabilityRepo := repositories.NewAvailabilityRepository(db)
	scheduleRepo := repositories.NewScheduleRepository(db)
	requirementRepo := repositories.NewRequirementRepository(db)
	swapRepo := repositories.NewSwapRepository(db)
	volunteerRepo := repositories.NewVolunteerRepository(db)
	announcementRepo := repositories.NewAnnouncementRepository(db)

	txDB := repositories.NewDatabase(db)

	// Initialize Services
	notifier := services.NewNotifier(announcementRepo)
	authService := services.NewAuthService(userRepo, txDB)
	availabilityService := services.NewAvailabilityService(availabilityRepo, txDB)
	staffingService := services.NewStaffingService(requirementRepo, txDB)
	scheduleService := services.NewScheduleService(
		scheduleRepo, availabilityRepo, userRepo, swapRepo, volunteerRepo,
		staffingService, notifier, txDB,
	)
	swapService := services.NewSwapService(
		swapRepo, volunteerRepo, scheduleRepo, userRepo, notifier, txDB,
	)
	volunteerService := services.NewVolunteerService(
		volunteerRepo, swapRepo, scheduleRepo, userRepo, notifier, txDB,
	)
	announcementService := services.NewAnnouncementService(announcementRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler()
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, staffingService)
	swapHandler := handlers.NewSwapHandler(swapService)
	volunteerHandler := handlers.NewVolunteerHandler(volunteerService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupAuthRoutes(apiV1, authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupAvailabilityRoutes(authenticated, availabilityHandler)
		SetupScheduleRoutes(authenticated, scheduleHandler)
		SetupSwapRoutes(authenticated, swapHandler)
		SetupVolunteerRoutes(authenticated, volunteerHandler)
		SetupAnnouncementRoutes(authenticated, announcementHandler)
	}
}
