package router

import (
	"github.com/learnpet/learnpet/handler"
	"github.com/learnpet/learnpet/middleware"
	"github.com/learnpet/learnpet/models"
	metricsgin "github.com/learnpet/learnpet/pkg/metrics/gin"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Class    *handler.ClassHandler
	Material *handler.MaterialHandler
	Task     *handler.TaskHandler
	Points   *handler.PointsHandler
	Pet      *handler.PetHandler
	Storage  *handler.StorageHandler
}

func Setup(jwtSecret string, h Handlers) *gin.Engine {
	r := gin.Default()
	r.Use(metricsgin.PrometheusMiddleware("learnpet"))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.JWTAuth(jwtSecret), h.Auth.Me)
		auth.PUT("/update-profile", middleware.JWTAuth(jwtSecret), h.Auth.UpdateProfile)
	}

	class := api.Group("/class", middleware.JWTAuth(jwtSecret))
	{
		class.POST("/create", middleware.RequireRole(models.RoleTeacher), h.Class.Create)
		class.GET("/teacher", middleware.RequireRole(models.RoleTeacher), h.Class.ListMine)
		class.GET("/available", middleware.RequireRole(models.RoleStudent), h.Class.ListAvailable)
		class.POST("/join", middleware.RequireRole(models.RoleStudent), h.Class.Join)
		class.GET("/student", middleware.RequireRole(models.RoleStudent), h.Class.ListJoined)
		class.GET("/:classId", h.Class.Detail)
		class.DELETE("/:classId/member/:studentId", middleware.RequireRole(models.RoleTeacher), h.Class.RemoveMember)
		class.GET("/:classId/rankings", h.Class.Rankings)
	}

	materials := api.Group("/materials", middleware.JWTAuth(jwtSecret))
	{
		materials.POST("/upload", middleware.RequireRole(models.RoleTeacher), h.Material.Upload)
		materials.GET("", h.Material.List)
		materials.GET("/teacher/my-materials", middleware.RequireRole(models.RoleTeacher), h.Material.ListMine)
		materials.GET("/:id", h.Material.Get)
		materials.DELETE("/batch/delete", middleware.RequireRole(models.RoleTeacher), h.Material.BatchDelete)
		materials.DELETE("/:id", middleware.RequireRole(models.RoleTeacher), h.Material.Delete)
	}

	tasks := api.Group("/tasks", middleware.JWTAuth(jwtSecret))
	{
		tasks.POST("/publish", middleware.RequireRole(models.RoleTeacher), h.Task.Publish)
		tasks.GET("/class/:classId", h.Task.ListByClass)
		tasks.GET("/:id", h.Task.Get)
		tasks.POST("/:id/submit", middleware.RequireRole(models.RoleStudent), h.Task.Submit)
		tasks.GET("/:id/submissions", middleware.RequireRole(models.RoleTeacher), h.Task.ListSubmissions)
		tasks.GET("/:id/my-submission", middleware.RequireRole(models.RoleStudent), h.Task.MySubmission)
	}

	points := api.Group("/points", middleware.JWTAuth(jwtSecret))
	{
		points.GET("/class/:classId", middleware.RequireRole(models.RoleStudent), h.Points.Get)
	}

	pets := api.Group("/pets", middleware.JWTAuth(jwtSecret), middleware.RequireRole(models.RoleStudent))
	{
		pets.POST("/adopt", h.Pet.Adopt)
		pets.GET("/class/:classId", h.Pet.GetByClass)
		pets.GET("/my-pets", h.Pet.ListMine)
		pets.POST("/:petId/feed", h.Pet.Feed)
		pets.GET("/:petId/advice", h.Pet.Advice)
	}

	storage := api.Group("/storage", middleware.JWTAuth(jwtSecret))
	{
		storage.POST("/upload-url", h.Storage.GetUploadURL)
		storage.POST("/confirm-upload", h.Storage.ConfirmUpload)
	}

	// 对象下载：公开对象允许匿名访问，带 token 时按身份鉴权
	r.GET("/objects/*path", middleware.OptionalAuth(jwtSecret), h.Storage.Download)

	return r
}
