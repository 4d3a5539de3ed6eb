package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/pipeline"
	"github.com/Abalmaz/course-creator/renderer"
	"github.com/Abalmaz/course-creator/tasks"
)

// HandleSceneVoiceover retries voiceover synthesis for a scene whose audio
// is still missing. Already-voiced scenes are skipped so the sweep can
// enqueue generously.
func (p *Processor) HandleSceneVoiceover(ctx context.Context, payload string) error {
	var task tasks.SceneVoiceoverPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	var scene models.Scene
	if err := p.DB.First(&scene, "id = ?", task.SceneID).Error; err != nil {
		return fmt.Errorf("scene %s not found: %w", task.SceneID, err)
	}
	if scene.VoiceoverAudioPath != nil {
		log.Printf("Scene %s already has voiceover audio, skipping", scene.ID)
		return nil
	}
	if scene.VoiceoverText == "" {
		log.Printf("Scene %s has no voiceover text, skipping", scene.ID)
		return nil
	}
	if p.AI == nil {
		return fmt.Errorf("voiceover synthesis not configured")
	}

	audio, err := p.AI.Synthesize(ctx, scene.VoiceoverText, p.Voice)
	if err != nil {
		return fmt.Errorf("synthesis failed for scene %s: %w", scene.ID, err)
	}

	relPath, err := pipeline.SaveVoiceover(p.MediaDir, scene.ID, audio)
	if err != nil {
		return fmt.Errorf("saving voiceover for scene %s: %w", scene.ID, err)
	}
	if err := p.DB.Model(&scene).Update("voiceover_audio_path", relPath).Error; err != nil {
		return err
	}

	log.Printf("Voiceover synthesized for scene %s: %s", scene.ID, relPath)
	return nil
}

// HandleSceneRender composites one scene video. For avatar-enabled courses
// an avatar presenter video is requested first and used in place of the
// stock background.
func (p *Processor) HandleSceneRender(ctx context.Context, payload string) error {
	var task tasks.SceneRenderPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	var scene models.Scene
	if err := p.DB.First(&scene, "id = ?", task.SceneID).Error; err != nil {
		return fmt.Errorf("scene %s not found: %w", task.SceneID, err)
	}
	var module models.Module
	if err := p.DB.First(&module, "id = ?", scene.ModuleID).Error; err != nil {
		return fmt.Errorf("module %s not found: %w", scene.ModuleID, err)
	}

	if scene.VoiceoverAudioPath == nil {
		return fmt.Errorf("scene %s has no voiceover audio", scene.ID)
	}
	if p.Render == nil {
		return fmt.Errorf("render service not configured")
	}

	if err := p.ensureAvatarVideo(ctx, &scene, module.CourseID); err != nil {
		// The avatar path failing falls back to the stock background.
		log.Printf("Avatar video unavailable for scene %s: %v", scene.ID, err)
	}
	if scene.BackgroundVideoURL == nil && scene.AvatarVideoURL == nil {
		return fmt.Errorf("scene %s has no background or avatar video", scene.ID)
	}

	job := renderer.SceneJob{
		SceneID:            scene.ID.String(),
		VoiceoverAudioPath: *scene.VoiceoverAudioPath,
		OnScreenText:       scene.OnScreenText,
	}
	if scene.AvatarVideoURL != nil {
		job.AvatarVideoURL = *scene.AvatarVideoURL
	} else {
		job.BackgroundVideoURL = *scene.BackgroundVideoURL
	}

	videoPath, err := p.Render.ComposeScene(ctx, job)
	if err != nil {
		return err
	}
	if err := p.DB.Model(&scene).Update("rendered_video_path", videoPath).Error; err != nil {
		return err
	}

	log.Printf("Rendered scene %s: %s", scene.ID, videoPath)
	return nil
}

// ensureAvatarVideo requests an avatar presenter video for the scene when
// its course renders with an avatar and none has been generated yet. The
// provider renders asynchronously, so the video id is polled until done.
func (p *Processor) ensureAvatarVideo(ctx context.Context, scene *models.Scene, courseID uuid.UUID) error {
	if scene.AvatarVideoURL != nil {
		return nil
	}

	var ca models.CourseAvatar
	err := p.DB.Preload("Avatar").First(&ca, "course_id = ?", courseID).Error
	if err != nil || !ca.UseAvatar || ca.Avatar == nil || ca.Avatar.APIReferenceID == "" {
		return nil // course does not render with an avatar
	}
	if p.Avatars == nil {
		return fmt.Errorf("avatar provider not configured")
	}

	videoID, err := p.Avatars.CreateAvatarVideo(ctx, ca.Avatar.APIReferenceID, p.AvatarVoice, scene.VoiceoverText)
	if err != nil {
		return err
	}

	for {
		status, videoURL, err := p.Avatars.VideoStatus(ctx, videoID)
		if err != nil {
			return err
		}
		switch status {
		case "completed":
			if videoURL == "" {
				return fmt.Errorf("avatar video %s completed without a URL", videoID)
			}
			if err := p.DB.Model(scene).Update("avatar_video_url", videoURL).Error; err != nil {
				return err
			}
			scene.AvatarVideoURL = &videoURL
			return nil
		case "failed":
			return fmt.Errorf("avatar video %s failed", videoID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

// HandleModuleRender concatenates a module's rendered scene videos, in
// scene order, into the final module video.
func (p *Processor) HandleModuleRender(ctx context.Context, payload string) error {
	var task tasks.ModuleRenderPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	var module models.Module
	if err := p.DB.First(&module, "id = ?", task.ModuleID).Error; err != nil {
		return fmt.Errorf("module %s not found: %w", task.ModuleID, err)
	}

	var scenes []models.Scene
	if err := p.DB.
		Where("module_id = ? AND rendered_video_path IS NOT NULL", module.ID).
		Order("scene_number asc").
		Find(&scenes).Error; err != nil {
		return err
	}
	if len(scenes) == 0 {
		return fmt.Errorf("module %s has no rendered scenes", module.ID)
	}
	if p.Render == nil {
		return fmt.Errorf("render service not configured")
	}

	paths := make([]string, 0, len(scenes))
	for _, scene := range scenes {
		paths = append(paths, *scene.RenderedVideoPath)
	}

	videoPath, err := p.Render.ConcatenateModule(ctx, module.ID.String(), paths)
	if err != nil {
		return err
	}
	if err := p.DB.Model(&module).Update("final_video_path", videoPath).Error; err != nil {
		return err
	}

	log.Printf("Rendered module %s from %d scenes: %s", module.ID, len(scenes), videoPath)
	return nil
}
