package main

import (
	"context"
	"log"
	"os"

	"github.com/Abalmaz/course-creator/avatars"
	"github.com/Abalmaz/course-creator/internal/platform"
	"github.com/Abalmaz/course-creator/processing"
	"github.com/Abalmaz/course-creator/renderer"
	"github.com/Abalmaz/course-creator/tasks"
	"github.com/Abalmaz/course-creator/worker"
)

func main() {
	// Use the shared initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	ai, err := processing.NewClient(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		log.Fatalf("Processing client required for worker: %v", err)
	}

	render, err := renderer.NewClient(os.Getenv("RENDER_SERVICE_URL"))
	if err != nil {
		log.Printf("Render service disabled: %v", err)
		render = nil
	}

	heygen, err := avatars.NewHeyGenClient(os.Getenv("HEYGEN_API_KEY"))
	if err != nil {
		log.Printf("Avatar provider disabled: %v", err)
		heygen = nil
	}

	processor := worker.NewProcessor(db, rdb, ai, render, heygen, platform.MediaDir())

	processor.Register(tasks.QueueSceneVoiceover, processor.HandleSceneVoiceover)
	processor.Register(tasks.QueueSceneRender, processor.HandleSceneRender)
	processor.Register(tasks.QueueModuleRender, processor.HandleModuleRender)

	log.Println("Worker started, waiting for queue tasks...")
	processor.Listen(context.Background(), tasks.QueueSceneVoiceover, tasks.QueueSceneRender, tasks.QueueModuleRender)
}
