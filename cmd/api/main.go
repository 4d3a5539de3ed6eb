package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/avatars"
	"github.com/Abalmaz/course-creator/courses"
	"github.com/Abalmaz/course-creator/internal/platform"
	"github.com/Abalmaz/course-creator/models"
	modulehandlers "github.com/Abalmaz/course-creator/modules"
	"github.com/Abalmaz/course-creator/pexels"
	"github.com/Abalmaz/course-creator/pipeline"
	"github.com/Abalmaz/course-creator/processing"
	"github.com/Abalmaz/course-creator/visuals"
)

type Server struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
}

func NewServer() (*Server, error) {
	// Use the shared connection initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Objective{},
		&models.Module{},
		&models.Scene{},
		&models.KnowledgeCheck{},
		&models.Question{},
		&models.Option{},
		&models.Avatar{},
		&models.CourseAvatar{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	router := gin.Default()

	// Add CORS middleware for the frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("FRONTEND_URL"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		DB:     db,
		Redis:  rdb,
		Router: router,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	})

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Course Creator API v1"})
	})

	ai := newAIClient()
	pipe := newPipeline(s.DB, ai)
	heygen := newHeyGenClient()

	courseHandler := courses.NewHandler(s.DB, ai, pipe)
	moduleHandler := modulehandlers.NewHandler(s.DB, s.Redis, ai)
	avatarHandler := avatars.NewHandler(s.DB, heygen)

	courseRoutes := s.Router.Group("/courses")
	{
		courseRoutes.POST("", courseHandler.CreateCourse)
		courseRoutes.GET("", courseHandler.GetCourses)
		courseRoutes.GET("/:id", courseHandler.GetCourse)
		courseRoutes.PATCH("/:id/objectives", courseHandler.SelectObjectives)
		courseRoutes.POST("/:id/generate-modules", courseHandler.GenerateModules)
		courseRoutes.GET("/:id/avatar", avatarHandler.GetCourseAvatar)
		courseRoutes.PUT("/:id/avatar", avatarHandler.SetCourseAvatar)
	}

	moduleRoutes := s.Router.Group("/modules")
	{
		moduleRoutes.POST("/:id/knowledge-check", moduleHandler.GenerateKnowledgeCheck)
		moduleRoutes.POST("/:id/render", moduleHandler.RenderModule)
	}

	sceneRoutes := s.Router.Group("/scenes")
	{
		sceneRoutes.POST("/:id/render", moduleHandler.RenderScene)
	}

	avatarRoutes := s.Router.Group("/avatars")
	{
		avatarRoutes.POST("", avatarHandler.CreateAvatar)
		avatarRoutes.GET("", avatarHandler.ListAvatars)
		avatarRoutes.GET("/:id/training", avatarHandler.TrainingStatus)
	}
}

// newAIClient builds the OpenAI-backed processing client, or returns nil when
// no API key is configured. Handlers treat a nil client as a 503.
func newAIClient() *processing.Client {
	ai, err := processing.NewClient(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		log.Printf("Processing client disabled: %v", err)
		return nil
	}
	return ai
}

// newPipeline wires the module generation pipeline. Background selection is
// only enabled when a Pexels key is present; generation still works without
// it, scenes just come back with no background.
func newPipeline(db *gorm.DB, ai *processing.Client) *pipeline.Pipeline {
	if ai == nil {
		log.Println("Module generation disabled: no processing client")
		return nil
	}

	var selector pipeline.Selector
	px, err := pexels.NewClient(os.Getenv("PEXELS_API_KEY"))
	if err != nil {
		log.Printf("Background selection disabled: %v", err)
	} else {
		scorer := visuals.NewScorer(ai, ai)
		selector = visuals.NewSelector(visuals.NewPexelsProvider(px), scorer)
	}

	return pipeline.New(db, ai, ai, selector, platform.MediaDir())
}

func newHeyGenClient() *avatars.HeyGenClient {
	heygen, err := avatars.NewHeyGenClient(os.Getenv("HEYGEN_API_KEY"))
	if err != nil {
		log.Printf("Avatar provider disabled: %v", err)
		return nil
	}
	return heygen
}

func (s *Server) Run() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	return s.Router.Run(":" + port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
