package courses

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/pipeline"
	"github.com/Abalmaz/course-creator/processing"
)

type Handler struct {
	DB   *gorm.DB
	AI   *processing.Client
	Pipe *pipeline.Pipeline
}

func NewHandler(db *gorm.DB, ai *processing.Client, pipe *pipeline.Pipeline) *Handler {
	return &Handler{DB: db, AI: ai, Pipe: pipe}
}

type CreateCourseRequest struct {
	Name           string `json:"name" binding:"required"`
	Language       string `json:"language"`
	TargetAudience string `json:"target_audience"`
	ContentStyle   string `json:"content_style"`
	Documents      string `json:"documents"`
}

// CreateCourse handles course intake: the course row is created and its
// learning objectives are generated and stored in bulk. Objective
// generation failing leaves the course without objectives; the response
// still succeeds so the caller can retry later.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := models.Course{
		Name:           req.Name,
		Language:       req.Language,
		TargetAudience: req.TargetAudience,
		ContentStyle:   req.ContentStyle,
		Documents:      req.Documents,
	}
	if course.Language == "" {
		course.Language = "en"
	}
	if course.ContentStyle == "" {
		course.ContentStyle = "conversational"
	}

	if err := h.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	if h.AI == nil {
		log.Printf("Objectives skipped for course %s: generator not configured", course.ID)
	} else if texts, err := h.AI.CourseObjectives(c.Request.Context(), course); err != nil {
		log.Printf("Objective generation failed for course %s: %v", course.ID, err)
	} else {
		for i, text := range texts {
			objective := models.Objective{CourseID: course.ID, Text: text, Order: i}
			if err := h.DB.Create(&objective).Error; err != nil {
				log.Printf("Objective create failed for course %s: %v", course.ID, err)
				continue
			}
			course.Objectives = append(course.Objectives, objective)
		}
	}

	c.JSON(http.StatusCreated, course)
}

func (h *Handler) GetCourses(c *gin.Context) {
	var courses []models.Course
	if err := h.DB.Preload("Objectives").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve courses"})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, ok := h.loadCourse(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, course)
}

type ObjectiveUpdate struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Selected *bool     `json:"selected" binding:"required"`
}

// SelectObjectives flips the selected flag on a course's objectives.
// The selected flag is the only objective field that is ever mutated.
func (h *Handler) SelectObjectives(c *gin.Context) {
	course, ok := h.loadCourse(c)
	if !ok {
		return
	}

	var updates []ObjectiveUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected a list of objective updates."})
		return
	}

	details := gin.H{}
	for _, update := range updates {
		result := h.DB.Model(&models.Objective{}).
			Where("id = ? AND course_id = ?", update.ID, course.ID).
			Update("selected", *update.Selected)
		if result.Error != nil {
			details[update.ID.String()] = result.Error.Error()
		} else if result.RowsAffected == 0 {
			details[update.ID.String()] = "Objective not found for this course."
		}
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Some objectives could not be updated.", "details": details})
		return
	}

	course, ok = h.loadCourse(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, course)
}

// GenerateModules runs module generation for the course's selected
// objectives and returns the updated course together with per-objective
// outcomes. Partial failures inside the pipeline do not fail the request;
// only missing preconditions do.
func (h *Handler) GenerateModules(c *gin.Context) {
	course, ok := h.loadCourse(c)
	if !ok {
		return
	}
	if h.Pipe == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Module generation is not configured."})
		return
	}

	var selected []models.Objective
	if err := h.DB.Where("course_id = ? AND selected = ?", course.ID, true).
		Order("\"order\" asc").Find(&selected).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load objectives"})
		return
	}
	if len(selected) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No objectives selected for module generation."})
		return
	}

	outcomes := h.Pipe.Generate(c.Request.Context(), course, selected)

	course, ok = h.loadCourse(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course, "outcomes": outcomes})
}

// loadCourse fetches the course in the :id param with its objectives,
// modules and scenes; it writes the error response itself on failure.
func (h *Handler) loadCourse(c *gin.Context) (*models.Course, bool) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return nil, false
	}

	var course models.Course
	err = h.DB.Preload("Objectives", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" asc")
	}).Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" asc")
	}).Preload("Modules.Scenes", func(db *gorm.DB) *gorm.DB {
		return db.Order("scene_number asc")
	}).First(&course, "id = ?", courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return nil, false
	}
	return &course, true
}
