package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/jobboard/internal/app/controllers"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/middleware"
	"github.com/yigit/jobboard/internal/pkg/ratelimit"
	"github.com/yigit/jobboard/internal/pkg/validation"
)

// Controllers groups every HTTP handler set mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	Jobs         *controllers.JobController
	Approvals    *controllers.ApprovalController
	Applications *controllers.ApplicationController
	Notify       *controllers.NotificationController
	Admin        *controllers.AdminController
	Realtime     *controllers.RealtimeController
}

// RegisterValidator installs the custom binding rules on gin's validator engine
func RegisterValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
	}
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *ratelimit.Limiter,
) {
	v1 := router.Group("/api/v1")

	// --- Auth ---
	auth := v1.Group("/auth")
	{
		limited := auth.Group("")
		limited.Use(middleware.RateLimit(authLimiter))
		{
			limited.POST("/register", c.Auth.Register)
			limited.POST("/login", c.Auth.Login)
			limited.POST("/google", c.Auth.OAuthLogin(models.ProviderGoogle))
			limited.POST("/linkedin", c.Auth.OAuthLogin(models.ProviderLinkedIn))
		}

		session := auth.Group("")
		session.Use(authMiddleware.Authenticate())
		{
			session.GET("/me", c.Auth.Me)
			session.POST("/refresh", c.Auth.Refresh)
			session.POST("/logout", c.Auth.Logout)
			session.PUT("/profile", c.Auth.UpdateProfile)
			session.PUT("/change-password", c.Auth.ChangePassword)
		}
	}

	// --- Jobs ---
	jobs := v1.Group("/jobs")
	{
		public := jobs.Group("")
		public.Use(authMiddleware.OptionalAuthenticate())
		{
			public.GET("", c.Jobs.List)
			public.GET("/:id", c.Jobs.Get)
		}

		protected := jobs.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/my-jobs", c.Jobs.ListMine)
			protected.GET("/my-applications", c.Applications.ListMine)
			protected.PUT("/:id", c.Jobs.Update)
			protected.DELETE("/:id", c.Jobs.Delete)

			protected.POST("/:id/apply", c.Applications.Apply)
			protected.GET("/:id/applications", c.Applications.ListForJob)
			protected.PATCH("/:id/applications/:applicationId", c.Applications.UpdateStatus)

			posters := protected.Group("")
			posters.Use(authMiddleware.RequireRole(models.RoleEmployer, models.RoleAdmin))
			{
				posters.POST("", c.Jobs.Create)
			}

			moderators := protected.Group("")
			moderators.Use(authMiddleware.RequireRole(models.RoleAdmin))
			{
				moderators.GET("/pending/list", c.Approvals.ListPending)
				moderators.POST("/:id/approve", c.Approvals.Approve)
				moderators.POST("/:id/reject", c.Approvals.Reject)
			}
		}
	}

	// --- Notifications ---
	v1.GET("/notifications/ws", authMiddleware.AuthenticateWebSocket(), c.Realtime.Connect)
	notifications := v1.Group("/notifications")
	notifications.Use(authMiddleware.Authenticate())
	{
		notifications.GET("", c.Notify.List)
		notifications.GET("/unread-count", c.Notify.UnreadCount)
		notifications.PUT("/read-all", c.Notify.MarkAllRead)
		notifications.PUT("/:id/read", c.Notify.MarkRead)
		notifications.DELETE("/:id", c.Notify.Delete)
	}

	// --- Admin ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", c.Admin.Dashboard)
		admin.GET("/users", c.Admin.ListUsers)
		admin.PATCH("/users/:id/role", c.Admin.UpdateUserRole)
		admin.DELETE("/users/:id", c.Admin.DeleteUser)
		admin.GET("/jobs", c.Admin.ListJobs)
		admin.PATCH("/jobs/:id/toggle", c.Admin.ToggleJob)
	}

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse("Route not found"))
	})
}
