// Package pipeline drives module generation for the selected objectives of
// a course: description, script, per-scene background selection and
// voiceover synthesis. Every stage is best-effort; a failure is logged and
// the affected objective or scene is left incomplete rather than aborting
// the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/processing"
	"github.com/Abalmaz/course-creator/visuals"
)

// errorSentinel is the failure prefix text-returning generators may use
// instead of an error value. The pipeline checks both.
const errorSentinel = "Error:"

// Generator produces the text artifacts of module generation.
type Generator interface {
	ModuleDescription(ctx context.Context, objective string, course models.CourseContext) (string, error)
	VideoScript(ctx context.Context, description string, course models.CourseContext) (string, error)
	SearchQuery(ctx context.Context, sceneText, visualDescription string) (string, error)
	VoiceoverText(ctx context.Context, sceneText, language string) (string, error)
}

// Synthesizer turns voiceover text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Selector picks a background video reference for one scene, excluding the
// references already used within the module.
type Selector interface {
	SelectBest(ctx context.Context, query, sceneText string, used map[string]struct{}, limits visuals.Limits) (string, bool)
}

// Pipeline holds the collaborators for one deployment. Collaborators are
// explicit fields so tests can substitute fakes.
type Pipeline struct {
	DB       *gorm.DB
	Gen      Generator
	TTS      Synthesizer
	Selector Selector
	Limits   visuals.Limits
	MediaDir string
	Voice    string
}

func New(db *gorm.DB, gen Generator, tts Synthesizer, selector Selector, mediaDir string) *Pipeline {
	return &Pipeline{
		DB:       db,
		Gen:      gen,
		TTS:      tts,
		Selector: selector,
		Limits:   visuals.DefaultLimits(),
		MediaDir: mediaDir,
		Voice:    processing.DefaultVoice,
	}
}

// ObjectiveOutcome reports what happened for one selected objective.
type ObjectiveOutcome struct {
	ObjectiveID uuid.UUID  `json:"objective_id"`
	ModuleID    *uuid.UUID `json:"module_id,omitempty"`
	SceneCount  int        `json:"scene_count"`
	Error       string     `json:"error,omitempty"`
}

// Generate processes the selected objectives in ascending order and returns
// one outcome per objective. Modules are upserted keyed by objective;
// scenes are replaced wholesale on every pass.
func (p *Pipeline) Generate(ctx context.Context, course *models.Course, objectives []models.Objective) []ObjectiveOutcome {
	sorted := make([]models.Objective, len(objectives))
	copy(sorted, objectives)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	courseCtx := course.Context()
	outcomes := make([]ObjectiveOutcome, 0, len(sorted))

	for i, objective := range sorted {
		outcome := ObjectiveOutcome{ObjectiveID: objective.ID}

		description, err := p.Gen.ModuleDescription(ctx, objective.Text, courseCtx)
		if err != nil || strings.HasPrefix(description, errorSentinel) {
			log.Printf("Description generation failed for objective %s: %v %s", objective.ID, err, description)
			outcome.Error = "module description generation failed"
			outcomes = append(outcomes, outcome)
			continue
		}

		module, err := p.upsertModule(course, objective, description, i)
		if err != nil {
			log.Printf("Module upsert failed for objective %s: %v", objective.ID, err)
			outcome.Error = "module upsert failed"
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.ModuleID = &module.ID

		scriptText, err := p.Gen.VideoScript(ctx, module.Description, courseCtx)
		if err != nil || strings.HasPrefix(scriptText, errorSentinel) {
			// The module and its description are kept; only scene creation
			// is skipped for this pass.
			log.Printf("Script generation failed for module %s: %v %s", module.ID, err, scriptText)
			outcome.Error = "script generation failed"
			outcomes = append(outcomes, outcome)
			continue
		}

		count, err := p.rebuildScenes(ctx, course, module, scriptText)
		if err != nil {
			log.Printf("Scene rebuild failed for module %s: %v", module.ID, err)
			outcome.Error = "scene creation failed"
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.SceneCount = count
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// upsertModule creates or overwrites the module tied to an objective,
// keeping the module/objective relationship 1:1.
func (p *Pipeline) upsertModule(course *models.Course, objective models.Objective, description string, position int) (*models.Module, error) {
	title := fmt.Sprintf("Module %d: %s", position+1, truncate(objective.Text, 50))

	var module models.Module
	err := p.DB.Where("objective_id = ?", objective.ID).First(&module).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		module = models.Module{
			CourseID:    course.ID,
			ObjectiveID: objective.ID,
			Title:       title,
			Description: description,
			Order:       objective.Order,
		}
		if err := p.DB.Create(&module).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		module.Title = title
		module.Description = description
		module.Order = objective.Order
		if err := p.DB.Save(&module).Error; err != nil {
			return nil, err
		}
	}
	return &module, nil
}

// rebuildScenes deletes the module's existing scenes and recreates them from
// the freshly generated script. The used-references set lives only for this
// pass and only for this module, which is what enforces background
// uniqueness across the module's scenes.
func (p *Pipeline) rebuildScenes(ctx context.Context, course *models.Course, module *models.Module, scriptText string) (int, error) {
	if err := p.DB.Where("module_id = ?", module.ID).Delete(&models.Scene{}).Error; err != nil {
		return 0, err
	}

	used := make(map[string]struct{})
	stubs := processing.ParseScript(scriptText)

	created := 0
	for _, stub := range stubs {
		scene := models.Scene{
			ModuleID:          module.ID,
			SceneNumber:       stub.SceneNumber,
			VisualDescription: stub.Visual,
			OnScreenText:      stub.Text,
			VoiceoverText:     stub.Voiceover,
		}

		if reference, ok := p.selectBackground(ctx, stub, used); ok {
			used[reference] = struct{}{}
			scene.BackgroundVideoURL = &reference
		}

		if err := p.DB.Create(&scene).Error; err != nil {
			log.Printf("Scene create failed for module %s scene %d: %v", module.ID, stub.SceneNumber, err)
			continue
		}
		created++

		p.synthesizeVoiceover(ctx, course, &scene)
	}

	return created, nil
}

// selectBackground derives a search query for the stub and asks the selector
// for an unused background reference. Any failure leaves the scene without a
// background; the scene is still created.
func (p *Pipeline) selectBackground(ctx context.Context, stub processing.SceneStub, used map[string]struct{}) (string, bool) {
	if p.Selector == nil {
		return "", false
	}

	sceneText := stub.Voiceover
	if sceneText == "" {
		sceneText = stub.Text
	}

	query, err := p.Gen.SearchQuery(ctx, sceneText, stub.Visual)
	if err != nil || query == "" || strings.HasPrefix(query, errorSentinel) {
		log.Printf("Search query generation failed for scene %d: %v %s", stub.SceneNumber, err, query)
		return "", false
	}

	return p.Selector.SelectBest(ctx, query, sceneText, used, p.Limits)
}

// synthesizeVoiceover optionally rewrites the voiceover text for TTS
// delivery, synthesizes it, and stores the audio under MediaDir. Failures
// are logged and leave the audio unset; the retry sweep picks it up later.
func (p *Pipeline) synthesizeVoiceover(ctx context.Context, course *models.Course, scene *models.Scene) {
	text := scene.VoiceoverText
	optimized, err := p.Gen.VoiceoverText(ctx, text, course.Language)
	if err != nil || optimized == "" || strings.HasPrefix(optimized, errorSentinel) {
		log.Printf("Voiceover optimization failed for scene %s, keeping original text: %v", scene.ID, err)
	} else {
		text = optimized
		scene.VoiceoverText = optimized
		if err := p.DB.Model(scene).Update("voiceover_text", optimized).Error; err != nil {
			log.Printf("Voiceover text update failed for scene %s: %v", scene.ID, err)
		}
	}

	audio, err := p.TTS.Synthesize(ctx, text, p.Voice)
	if err != nil {
		log.Printf("Voiceover synthesis failed for scene %s: %v", scene.ID, err)
		return
	}

	relPath, err := SaveVoiceover(p.MediaDir, scene.ID, audio)
	if err != nil {
		log.Printf("Voiceover save failed for scene %s: %v", scene.ID, err)
		return
	}
	if err := p.DB.Model(scene).Update("voiceover_audio_path", relPath).Error; err != nil {
		log.Printf("Voiceover path update failed for scene %s: %v", scene.ID, err)
		return
	}
	scene.VoiceoverAudioPath = &relPath
}

// SaveVoiceover writes synthesized audio under mediaDir and returns the
// path relative to it. The worker's retry handler shares this layout.
func SaveVoiceover(mediaDir string, sceneID uuid.UUID, audio []byte) (string, error) {
	relPath := filepath.Join("voiceovers", fmt.Sprintf("scene_%s_voiceover.mp3", sceneID))
	fullPath := filepath.Join(mediaDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, audio, 0o644); err != nil {
		return "", err
	}
	return relPath, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
