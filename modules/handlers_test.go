package modules

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abalmaz/course-creator/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{}, &models.Module{}, &models.Scene{},
		&models.KnowledgeCheck{}, &models.Question{}, &models.Option{},
	))
	return db
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/modules/:id/knowledge-check", h.GenerateKnowledgeCheck)
	r.POST("/modules/:id/render", h.RenderModule)
	r.POST("/scenes/:id/render", h.RenderScene)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedModule(t *testing.T, db *gorm.DB) models.Module {
	t.Helper()
	course := models.Course{Name: "Course"}
	require.NoError(t, db.Create(&course).Error)
	module := models.Module{CourseID: course.ID, ObjectiveID: course.ID, Title: "Module 1: intro", Description: "d"}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func TestGenerateKnowledgeCheckRejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	module := seedModule(t, db)
	require.NoError(t, db.Create(&models.KnowledgeCheck{ModuleID: module.ID, Title: "existing"}).Error)

	r := newRouter(NewHandler(db, nil, nil))
	w := do(t, r, http.MethodPost, "/modules/"+module.ID.String()+"/knowledge-check")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestGenerateKnowledgeCheckRequiresGenerator(t *testing.T) {
	db := openTestDB(t)
	module := seedModule(t, db)

	r := newRouter(NewHandler(db, nil, nil))
	w := do(t, r, http.MethodPost, "/modules/"+module.ID.String()+"/knowledge-check")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateKnowledgeCheckModuleNotFound(t *testing.T) {
	db := openTestDB(t)
	r := newRouter(NewHandler(db, nil, nil))

	w := do(t, r, http.MethodPost, "/modules/6f1e2a3b-0000-0000-0000-000000000000/knowledge-check")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/modules/not-a-uuid/knowledge-check")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderSceneRequiresAssets(t *testing.T) {
	db := openTestDB(t)
	module := seedModule(t, db)
	r := newRouter(NewHandler(db, nil, nil))

	// No voiceover audio yet.
	scene := models.Scene{ModuleID: module.ID, SceneNumber: 1, VoiceoverText: "hello"}
	require.NoError(t, db.Create(&scene).Error)
	w := do(t, r, http.MethodPost, "/scenes/"+scene.ID.String()+"/render")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "voiceover audio")

	// Audio present but neither background nor avatar footage.
	audio := "voiceovers/scene_x_voiceover.mp3"
	require.NoError(t, db.Model(&scene).Update("voiceover_audio_path", audio).Error)
	w = do(t, r, http.MethodPost, "/scenes/"+scene.ID.String()+"/render")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "background video or avatar")
}

func TestRenderSceneNotFound(t *testing.T) {
	db := openTestDB(t)
	r := newRouter(NewHandler(db, nil, nil))

	w := do(t, r, http.MethodPost, "/scenes/6f1e2a3b-0000-0000-0000-000000000000/render")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderModuleRequiresRenderedScenes(t *testing.T) {
	db := openTestDB(t)
	module := seedModule(t, db)
	scene := models.Scene{ModuleID: module.ID, SceneNumber: 1}
	require.NoError(t, db.Create(&scene).Error)

	r := newRouter(NewHandler(db, nil, nil))
	w := do(t, r, http.MethodPost, "/modules/"+module.ID.String()+"/render")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no rendered scenes")
}

func TestStripLetterPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A. Photosynthesis", "Photosynthesis"},
		{"b. lowercase works too", "lowercase works too"},
		{"  C. padded  ", "padded"},
		{"No prefix here", "No prefix here"},
		{"A.", "A."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripLetterPrefix(tt.in), "input %q", tt.in)
	}
}
