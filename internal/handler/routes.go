package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/scholarsync/scholarsync-api/internal/middleware"
	"github.com/scholarsync/scholarsync-api/internal/models"
	"github.com/scholarsync/scholarsync-api/internal/service"
)

// Dependencies aggregates the handlers and services the router needs.
type Dependencies struct {
	Auth      *AuthHandler
	Students  *StudentHandler
	Chat      *ChatHandler
	Analytics *AnalyticsHandler
	Uploads   *UploadHandler
	Users     *UserHandler
	Metrics   *MetricsHandler

	AuthService      *service.AuthService
	MetricsService   *service.MetricsService
	AnalyticsEnabled bool
}

const roleSelf = "SELF"

// RegisterRoutes mounts all API routes on the engine.
func RegisterRoutes(r *gin.Engine, apiPrefix string, deps Dependencies) {
	r.Use(middleware.Metrics(deps.MetricsService))

	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Health)
	r.GET("/metrics", deps.Metrics.Prometheus)

	// Signed token downloads carry their own auth.
	r.GET("/files/:token", deps.Uploads.Download)

	api := r.Group(apiPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)

		authed := auth.Group("", middleware.JWT(deps.AuthService))
		authed.POST("/logout", deps.Auth.Logout)
		authed.POST("/change-password", deps.Auth.ChangePassword)
		authed.GET("/me", deps.Auth.Me)
	}

	students := api.Group("/students", middleware.JWT(deps.AuthService))
	{
		students.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent), deps.Students.List)
		students.GET("/:roll", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent), deps.Students.Get)
		students.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), deps.Students.Create)
		students.PUT("/:roll", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), roleSelf), deps.Students.Update)
		students.DELETE("/:roll", middleware.RequireRoles(models.RoleAdmin), deps.Students.Delete)

		students.GET("/:roll/transcript", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), roleSelf), deps.Students.Transcript)
		students.POST("/:roll/photo", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), deps.Uploads.UploadPhoto)
		students.GET("/:roll/photo-url", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), roleSelf), deps.Uploads.PhotoURL)
	}

	exports := api.Group("/exports", middleware.JWT(deps.AuthService), middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		exports.GET("/roster", deps.Students.Roster)
	}

	chat := api.Group("/chat", middleware.JWT(deps.AuthService))
	{
		chat.GET("/messages", deps.Chat.History)
		chat.POST("/messages", deps.Chat.Send)
	}

	if deps.AnalyticsEnabled {
		analytics := api.Group("/analytics", middleware.JWT(deps.AuthService), middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
		{
			analytics.GET("/courses", deps.Analytics.Courses)
			analytics.GET("/semesters", deps.Analytics.Semesters)
			analytics.GET("/attendance", deps.Analytics.Attendance)
			analytics.GET("/system", deps.Analytics.System)
		}
	}

	users := api.Group("/users", middleware.JWT(deps.AuthService))
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), deps.Users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), roleSelf), deps.Users.Get)
	}
}
