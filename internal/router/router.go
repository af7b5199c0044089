package router

import (
	"time"

	"github.com/choreboard-dev/choreboard/internal/handlers"
	"github.com/choreboard-dev/choreboard/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *handlers.Handler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/me", middleware.AuthMiddleware(), h.Me)
		}

		buildings := api.Group("/buildings", middleware.AuthMiddleware())
		{
			buildings.GET("", h.ListBuildings)
			buildings.GET("/:code/apartments", h.ListApartments)
		}

		apartments := api.Group("/apartments", middleware.AuthMiddleware())
		{
			apartments.GET("/me", h.MyApartment)
			apartments.GET("/me/members", h.MyMembers)
			apartments.POST("/:apartment_id/join", h.JoinApartment)
			apartments.POST("/:apartment_id/move", h.MoveApartment)
			apartments.DELETE("/me", h.LeaveApartment)
			apartments.DELETE("/me/members/:user_id", h.RemoveMember)
			apartments.GET("/me/task-mode", h.GetTaskMode)
			apartments.PUT("/me/task-mode", h.SetTaskMode)
		}

		schedule := api.Group("/schedule", middleware.AuthMiddleware())
		{
			schedule.GET("", h.ListSchedule)
			schedule.GET("/:day/tasks", h.ApartmentTasksForDay)
			schedule.POST("/:day/take", h.TakeSlot)
			schedule.POST("/:day/release", h.ReleaseSlot)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("/:day", h.TasksForDay)
			tasks.POST("/:task_id/toggle", h.ToggleTask)
		}

		templates := api.Group("/templates", middleware.AuthMiddleware())
		{
			templates.GET("", h.ListTemplates)
			templates.POST("", h.CreateTemplate)
			templates.DELETE("/:template_id", h.DeleteTemplate)
		}
	}

	return r
}
