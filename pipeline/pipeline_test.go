package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/visuals"
)

// fakeGenerator returns canned artifacts. Error fields override the canned
// value for the matching stage.
type fakeGenerator struct {
	description    string
	descriptionErr error
	script         string
	scriptErr      error
	query          string
	queryErr       error
	voiceover      string
	voiceoverErr   error
}

func (g *fakeGenerator) ModuleDescription(ctx context.Context, objective string, course models.CourseContext) (string, error) {
	if g.descriptionErr != nil {
		return "", g.descriptionErr
	}
	return g.description, nil
}

func (g *fakeGenerator) VideoScript(ctx context.Context, description string, course models.CourseContext) (string, error) {
	if g.scriptErr != nil {
		return "", g.scriptErr
	}
	return g.script, nil
}

func (g *fakeGenerator) SearchQuery(ctx context.Context, sceneText, visualDescription string) (string, error) {
	if g.queryErr != nil {
		return "", g.queryErr
	}
	return g.query, nil
}

func (g *fakeGenerator) VoiceoverText(ctx context.Context, sceneText, language string) (string, error) {
	if g.voiceoverErr != nil {
		return "", g.voiceoverErr
	}
	return g.voiceover, nil
}

type fakeTTS struct {
	audio []byte
	err   error
}

func (t *fakeTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return t.audio, t.err
}

// sequenceSelector hands out distinct references in order and records the
// exclusion sets it saw.
type sequenceSelector struct {
	next     int
	usedSeen []int
}

func (s *sequenceSelector) SelectBest(ctx context.Context, query, sceneText string, used map[string]struct{}, limits visuals.Limits) (string, bool) {
	s.usedSeen = append(s.usedSeen, len(used))
	s.next++
	return fmt.Sprintf("https://cdn.example/bg-%d.mp4", s.next), true
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Objective{}, &models.Module{}, &models.Scene{}))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, objectiveTexts ...string) (*models.Course, []models.Objective) {
	t.Helper()
	course := models.Course{Name: "Intro to Gardening", Language: "en", ContentStyle: "conversational"}
	require.NoError(t, db.Create(&course).Error)

	objectives := make([]models.Objective, 0, len(objectiveTexts))
	for i, text := range objectiveTexts {
		obj := models.Objective{CourseID: course.ID, Text: text, Selected: true, Order: i}
		require.NoError(t, db.Create(&obj).Error)
		objectives = append(objectives, obj)
	}
	return &course, objectives
}

const threeSceneScript = `SCENE 1:
VISUAL: A garden bed in morning light
TEXT: Why soil matters
VOICEOVER: Healthy soil is where everything begins.

SCENE 2:
VISUAL: Hands planting a seedling
TEXT: Planting basics
VOICEOVER: Plant at the right depth and spacing.

SCENE 3:
VISUAL: A watering can over young plants
TEXT: Watering
VOICEOVER: Water deeply but not too often.

SCENE 4:
VISUAL: A broken scene with no narration
TEXT: This one is malformed`

func newTestPipeline(t *testing.T, db *gorm.DB, gen *fakeGenerator, selector Selector) *Pipeline {
	t.Helper()
	return New(db, gen, &fakeTTS{audio: []byte("mp3-bytes")}, selector, t.TempDir())
}

func TestGenerateCreatesModulesAndScenes(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "Understand soil preparation")

	gen := &fakeGenerator{
		description: "A hands-on look at soil preparation.",
		script:      threeSceneScript,
		query:       "garden soil",
		voiceover:   "Optimized narration.",
	}
	selector := &sequenceSelector{}
	p := newTestPipeline(t, db, gen, selector)

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 1)
	require.Empty(t, outcomes[0].Error)
	require.NotNil(t, outcomes[0].ModuleID)
	// The malformed fourth block is dropped by the parser.
	assert.Equal(t, 3, outcomes[0].SceneCount)

	var module models.Module
	require.NoError(t, db.Where("objective_id = ?", objectives[0].ID).First(&module).Error)
	assert.Equal(t, "Module 1: Understand soil preparation", module.Title)
	assert.Equal(t, "A hands-on look at soil preparation.", module.Description)

	var scenes []models.Scene
	require.NoError(t, db.Where("module_id = ?", module.ID).Order("scene_number asc").Find(&scenes).Error)
	require.Len(t, scenes, 3)

	// Each scene gets a distinct background and the exclusion set grows
	// by one per scene.
	seen := map[string]bool{}
	for _, scene := range scenes {
		require.NotNil(t, scene.BackgroundVideoURL)
		assert.False(t, seen[*scene.BackgroundVideoURL], "background reused: %s", *scene.BackgroundVideoURL)
		seen[*scene.BackgroundVideoURL] = true

		assert.Equal(t, "Optimized narration.", scene.VoiceoverText)
		require.NotNil(t, scene.VoiceoverAudioPath)
		assert.True(t, strings.HasSuffix(*scene.VoiceoverAudioPath, "_voiceover.mp3"))
	}
	assert.Equal(t, []int{0, 1, 2}, selector.usedSeen)
}

func TestGenerateTruncatesLongObjectiveInTitle(t *testing.T) {
	db := openTestDB(t)
	long := strings.Repeat("soil ", 20) // 100 chars
	course, objectives := seedCourse(t, db, long)

	gen := &fakeGenerator{description: "d", script: threeSceneScript, query: "q", voiceover: "v"}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	p.Generate(context.Background(), course, objectives)

	var module models.Module
	require.NoError(t, db.Where("objective_id = ?", objectives[0].ID).First(&module).Error)
	assert.Equal(t, "Module 1: "+long[:50]+"...", module.Title)
}

func TestGenerateIsIdempotentPerObjective(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "Understand soil preparation")

	gen := &fakeGenerator{description: "first description", script: threeSceneScript, query: "q", voiceover: "v"}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	p.Generate(context.Background(), course, objectives)
	gen.description = "second description"
	p.Generate(context.Background(), course, objectives)

	var modules []models.Module
	require.NoError(t, db.Find(&modules).Error)
	require.Len(t, modules, 1)
	assert.Equal(t, "second description", modules[0].Description)

	var count int64
	require.NoError(t, db.Model(&models.Scene{}).Where("module_id = ?", modules[0].ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestGenerateDescriptionFailureSkipsObjective(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective", "Second objective")

	gen := &fakeGenerator{descriptionErr: errors.New("model unavailable")}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, "module description generation failed", outcome.Error)
		assert.Nil(t, outcome.ModuleID)
	}

	var count int64
	require.NoError(t, db.Model(&models.Module{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateDescriptionSentinelSkipsObjective(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{description: "Error: content policy"}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "module description generation failed", outcomes[0].Error)
}

func TestGenerateScriptFailureKeepsModule(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{description: "a good description", scriptErr: errors.New("model unavailable")}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "script generation failed", outcomes[0].Error)
	require.NotNil(t, outcomes[0].ModuleID)

	var module models.Module
	require.NoError(t, db.First(&module, "id = ?", outcomes[0].ModuleID).Error)
	assert.Equal(t, "a good description", module.Description)

	var count int64
	require.NoError(t, db.Model(&models.Scene{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateQueryFailureLeavesSceneWithoutBackground(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{
		description: "d",
		script:      threeSceneScript,
		queryErr:    errors.New("model unavailable"),
		voiceover:   "v",
	}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 3, outcomes[0].SceneCount)

	var scenes []models.Scene
	require.NoError(t, db.Find(&scenes).Error)
	require.Len(t, scenes, 3)
	for _, scene := range scenes {
		assert.Nil(t, scene.BackgroundVideoURL)
	}
}

func TestGenerateNilSelectorStillCreatesScenes(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{description: "d", script: threeSceneScript, query: "q", voiceover: "v"}
	p := newTestPipeline(t, db, gen, nil)

	outcomes := p.Generate(context.Background(), course, objectives)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 3, outcomes[0].SceneCount)

	var scenes []models.Scene
	require.NoError(t, db.Find(&scenes).Error)
	for _, scene := range scenes {
		assert.Nil(t, scene.BackgroundVideoURL)
	}
}

func TestGenerateVoiceoverOptimizationFailureKeepsOriginalText(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{
		description:  "d",
		script:       threeSceneScript,
		query:        "q",
		voiceoverErr: errors.New("model unavailable"),
	}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	p.Generate(context.Background(), course, objectives)

	var scene models.Scene
	require.NoError(t, db.Where("scene_number = ?", 1).First(&scene).Error)
	assert.Equal(t, "Healthy soil is where everything begins.", scene.VoiceoverText)
	// Synthesis still ran against the original text.
	require.NotNil(t, scene.VoiceoverAudioPath)
}

func TestGenerateTTSFailureLeavesAudioUnset(t *testing.T) {
	db := openTestDB(t)
	course, objectives := seedCourse(t, db, "First objective")

	gen := &fakeGenerator{description: "d", script: threeSceneScript, query: "q", voiceover: "v"}
	p := New(db, gen, &fakeTTS{err: errors.New("tts down")}, &sequenceSelector{}, t.TempDir())

	outcomes := p.Generate(context.Background(), course, objectives)
	assert.Equal(t, 3, outcomes[0].SceneCount)

	var scenes []models.Scene
	require.NoError(t, db.Find(&scenes).Error)
	for _, scene := range scenes {
		assert.Nil(t, scene.VoiceoverAudioPath)
	}
}

func TestGenerateProcessesObjectivesInOrder(t *testing.T) {
	db := openTestDB(t)
	course := &models.Course{Name: "Course", Language: "en"}
	require.NoError(t, db.Create(course).Error)

	// Created out of order on purpose.
	second := models.Objective{CourseID: course.ID, Text: "second", Selected: true, Order: 1}
	first := models.Objective{CourseID: course.ID, Text: "first", Selected: true, Order: 0}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	gen := &fakeGenerator{description: "d", script: threeSceneScript, query: "q", voiceover: "v"}
	p := newTestPipeline(t, db, gen, &sequenceSelector{})

	outcomes := p.Generate(context.Background(), course, []models.Objective{second, first})
	require.Len(t, outcomes, 2)
	assert.Equal(t, first.ID, outcomes[0].ObjectiveID)
	assert.Equal(t, second.ID, outcomes[1].ObjectiveID)

	var modules []models.Module
	require.NoError(t, db.Order("\"order\" asc").Find(&modules).Error)
	require.Len(t, modules, 2)
	assert.Equal(t, "Module 1: first", modules[0].Title)
	assert.Equal(t, "Module 2: second", modules[1].Title)
}
