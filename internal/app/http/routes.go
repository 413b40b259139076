package routes

import (
	adminapi "guildhall/internal/api/admin"
	authapi "guildhall/internal/api/auth"
	charactersapi "guildhall/internal/api/characters"
	eventsapi "guildhall/internal/api/events"
	guildinvitesapi "guildhall/internal/api/guildinvites"
	staticsapi "guildhall/internal/api/statics"
	subscribesapi "guildhall/internal/api/subscribes"
	"guildhall/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/auth/register", authapi.Register)
	public.POST("/auth/login", authapi.Login)

	// Authenticated
	auth := r.Group("/api/v1")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())

	auth.GET("/events", eventsapi.Index)
	auth.GET("/events/filter_values", eventsapi.FilterValues)
	auth.GET("/events/event_form_values", eventsapi.EventFormValues)
	auth.GET("/events/:id", eventsapi.Show)
	auth.POST("/events", eventsapi.Create)
	auth.GET("/events/:id/edit", eventsapi.Edit)
	auth.PATCH("/events/:id", eventsapi.Update)
	auth.DELETE("/events/:id", eventsapi.Destroy)

	auth.GET("/characters/default_values", charactersapi.DefaultValues)
	auth.GET("/characters/:id", charactersapi.Show)
	auth.POST("/characters", charactersapi.Create)
	auth.PATCH("/characters/:id", charactersapi.Update)

	auth.GET("/statics", staticsapi.Index)
	auth.POST("/statics", staticsapi.Create)
	auth.POST("/statics/:id/members", staticsapi.AddMember)
	auth.DELETE("/statics/:id/members/:member_id", staticsapi.RemoveMember)

	auth.POST("/subscribes", subscribesapi.Create)
	auth.PATCH("/subscribes/:id", subscribesapi.Update)

	auth.GET("/guild_invites", guildinvitesapi.Index)
	auth.POST("/guild_invites", guildinvitesapi.Create)
	auth.DELETE("/guild_invites/:id", guildinvitesapi.Destroy)
	auth.POST("/guild_invites/:id/approve", guildinvitesapi.Approve)
	auth.POST("/guild_invites/:id/decline", guildinvitesapi.Decline)

	// Admin: reference-data management
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"), middleware.SanitizeAndCleanInputMiddleware())

	admin.GET("/stats", adminapi.Stats)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.POST("/worlds", adminapi.CreateWorld)
	admin.POST("/fractions", adminapi.CreateFraction)
	admin.POST("/races", adminapi.CreateRace)
	admin.POST("/dungeons", adminapi.CreateDungeon)
	admin.POST("/roles", adminapi.CreateRole)
}
