package main

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/internal/platform"
	"github.com/Abalmaz/course-creator/models"
	"github.com/Abalmaz/course-creator/tasks"
)

func main() {
	// Use the shared initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()
	ctx := context.Background()

	c := cron.New()

	// Sweep for scenes whose voiceover synthesis failed or was interrupted
	// and requeue them. BRPop on the worker side dedupes across instances,
	// but only one scheduler should run to avoid duplicate sweeps.
	_, err := c.AddFunc("@every 10m", func() {
		sweepMissingVoiceovers(ctx, db, rdb)
	})
	if err != nil {
		log.Fatalf("Error scheduling voiceover sweep: %v", err)
	}

	c.Start()
	defer c.Stop()

	log.Println("Scheduler started, sweeping every 10 minutes...")
	select {}
}

// sweepMissingVoiceovers finds scenes that have voiceover text but no audio
// file yet and queues them for synthesis.
func sweepMissingVoiceovers(ctx context.Context, db *gorm.DB, rdb *redis.Client) {
	var scenes []models.Scene
	if err := db.Where("voiceover_text != '' AND voiceover_audio_path IS NULL").Find(&scenes).Error; err != nil {
		log.Printf("Error querying scenes for voiceover sweep: %v", err)
		return
	}

	if len(scenes) == 0 {
		return
	}

	log.Printf("Voiceover sweep: queuing %d scenes", len(scenes))

	for _, scene := range scenes {
		payload, err := tasks.Marshal(tasks.SceneVoiceoverPayload{SceneID: scene.ID})
		if err != nil {
			log.Printf("Error marshalling voiceover task for scene %s: %v", scene.ID, err)
			continue
		}

		if err := rdb.LPush(ctx, tasks.QueueSceneVoiceover, payload).Err(); err != nil {
			log.Printf("Error pushing voiceover task to queue %s: %v", tasks.QueueSceneVoiceover, err)
		}
	}
}
