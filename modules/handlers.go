package modules

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/processing"
	"github.com/Abalmaz/course-creator/tasks"
)

type Handler struct {
	DB    *gorm.DB
	Redis *redis.Client
	AI    *processing.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client, ai *processing.Client) *Handler {
	return &Handler{DB: db, Redis: rdb, AI: ai}
}

// GenerateKnowledgeCheck generates and persists the quiz for one module.
// A module gets at most one knowledge check.
func (h *Handler) GenerateKnowledgeCheck(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID"})
		return
	}

	var module models.Module
	if err := h.DB.First(&module, "id = ?", moduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	var existing models.KnowledgeCheck
	if err := h.DB.First(&existing, "module_id = ?", module.ID).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Knowledge check already exists for this module."})
		return
	}

	var course models.Course
	if err := h.DB.First(&course, "id = ?", module.CourseID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if h.AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Quiz generation is not configured."})
		return
	}
	quiz, err := h.AI.KnowledgeCheck(c.Request.Context(), module.Description, course.Context())
	if err != nil {
		log.Printf("Knowledge check generation failed for module %s: %v", module.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate knowledge check."})
		return
	}

	check := models.KnowledgeCheck{
		ModuleID: module.ID,
		Title:    "Knowledge Check for " + module.Title,
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&check).Error; err != nil {
			return err
		}
		for i, q := range quiz.Questions {
			question := models.Question{
				KnowledgeCheckID: check.ID,
				QuestionText:     q.Question,
				Explanation:      q.Explanation,
				Order:            i,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			correct := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
			for j, optText := range q.Options {
				letter := string(rune('A' + j))
				option := models.Option{
					QuestionID: question.ID,
					Text:       stripLetterPrefix(optText),
					IsCorrect:  letter == correct,
					Order:      j,
				}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save knowledge check."})
		return
	}

	if err := h.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" asc")
	}).Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" asc")
	}).First(&check, "id = ?", check.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, check)
}

// RenderScene validates a scene's assets and queues it for compositing.
func (h *Handler) RenderScene(c *gin.Context) {
	sceneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scene ID"})
		return
	}

	var scene models.Scene
	if err := h.DB.First(&scene, "id = ?", sceneID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scene not found"})
		return
	}
	if scene.VoiceoverAudioPath == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scene has no voiceover audio file"})
		return
	}
	if scene.BackgroundVideoURL == nil && scene.AvatarVideoURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scene has no background video or avatar video"})
		return
	}

	if err := h.enqueue(c, tasks.QueueSceneRender, tasks.SceneRenderPayload{SceneID: scene.ID}); err != nil {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "rendering", "scene_id": scene.ID})
}

// RenderModule queues concatenation of a module's rendered scene videos.
func (h *Handler) RenderModule(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid module ID"})
		return
	}

	var module models.Module
	if err := h.DB.First(&module, "id = ?", moduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	var rendered int64
	h.DB.Model(&models.Scene{}).
		Where("module_id = ? AND rendered_video_path IS NOT NULL", module.ID).
		Count(&rendered)
	if rendered == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Module has no rendered scenes to concatenate"})
		return
	}

	if err := h.enqueue(c, tasks.QueueModuleRender, tasks.ModuleRenderPayload{ModuleID: module.ID}); err != nil {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "rendering", "module_id": module.ID})
}

func (h *Handler) enqueue(c *gin.Context, queue string, payload interface{}) error {
	body, err := tasks.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue task"})
		return err
	}
	if err := h.Redis.LPush(c.Request.Context(), queue, body).Err(); err != nil {
		log.Printf("Error pushing to queue %s: %v", queue, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue task"})
		return err
	}
	return nil
}

// stripLetterPrefix drops a leading "A." style option label when present.
func stripLetterPrefix(option string) string {
	trimmed := strings.TrimSpace(option)
	if len(trimmed) > 2 && trimmed[1] == '.' {
		return strings.TrimSpace(trimmed[2:])
	}
	return trimmed
}
