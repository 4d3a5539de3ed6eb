package avatars

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/models"
)

type Handler struct {
	DB     *gorm.DB
	HeyGen *HeyGenClient
}

func NewHandler(db *gorm.DB, heygen *HeyGenClient) *Handler {
	return &Handler{DB: db, HeyGen: heygen}
}

type CreateAvatarRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url" binding:"required"`
}

// CreateAvatar registers a photo avatar with the provider and stores it.
func (h *Handler) CreateAvatar(c *gin.Context) {
	if h.HeyGen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Avatar provider is not configured."})
		return
	}

	var req CreateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refID, err := h.HeyGen.CreatePhotoAvatar(c.Request.Context(), req.ImageURL, req.Name)
	if err != nil {
		log.Printf("Avatar creation failed for %q: %v", req.Name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create avatar with provider."})
		return
	}

	avatar := models.Avatar{Name: req.Name, ImageURL: req.ImageURL, APIReferenceID: refID}
	if err := h.DB.Create(&avatar).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
		return
	}
	c.JSON(http.StatusCreated, avatar)
}

func (h *Handler) ListAvatars(c *gin.Context) {
	var avatars []models.Avatar
	if err := h.DB.Find(&avatars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve avatars"})
		return
	}
	c.JSON(http.StatusOK, avatars)
}

// TrainingStatus proxies the provider's training state for one avatar.
func (h *Handler) TrainingStatus(c *gin.Context) {
	if h.HeyGen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Avatar provider is not configured."})
		return
	}

	avatarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid avatar ID"})
		return
	}

	var avatar models.Avatar
	if err := h.DB.First(&avatar, "id = ?", avatarID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
		return
	}
	if avatar.APIReferenceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar has no provider reference"})
		return
	}

	status, err := h.HeyGen.TrainingStatus(c.Request.Context(), avatar.APIReferenceID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to check training status."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_id": avatar.ID, "status": status})
}

type SetCourseAvatarRequest struct {
	AvatarID  *uuid.UUID `json:"avatar_id"`
	UseAvatar bool       `json:"use_avatar"`
}

// GetCourseAvatar returns (creating if needed) the course's avatar binding.
func (h *Handler) GetCourseAvatar(c *gin.Context) {
	ca, ok := h.loadCourseAvatar(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ca)
}

// SetCourseAvatar updates which avatar a course renders with.
func (h *Handler) SetCourseAvatar(c *gin.Context) {
	ca, ok := h.loadCourseAvatar(c)
	if !ok {
		return
	}

	var req SetCourseAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.AvatarID != nil {
		var avatar models.Avatar
		if err := h.DB.First(&avatar, "id = ?", req.AvatarID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar not found"})
			return
		}
	}

	ca.AvatarID = req.AvatarID
	ca.UseAvatar = req.UseAvatar
	if err := h.DB.Save(ca).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course avatar"})
		return
	}
	c.JSON(http.StatusOK, ca)
}

func (h *Handler) loadCourseAvatar(c *gin.Context) (*models.CourseAvatar, bool) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return nil, false
	}

	var course models.Course
	if err := h.DB.First(&course, "id = ?", courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, false
	}

	var ca models.CourseAvatar
	err = h.DB.Preload("Avatar").First(&ca, "course_id = ?", course.ID).Error
	if err == gorm.ErrRecordNotFound {
		ca = models.CourseAvatar{CourseID: course.ID}
		if err := h.DB.Create(&ca).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course avatar"})
			return nil, false
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	return &ca, true
}
