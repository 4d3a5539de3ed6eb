package worker

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Abalmaz/course-creator/avatars"
	"github.com/Abalmaz/course-creator/processing"
	"github.com/Abalmaz/course-creator/renderer"
	"github.com/Abalmaz/course-creator/tasks"
)

// taskTimeout bounds a single task, render jobs included. Hitting it is
// treated like any other task failure.
const taskTimeout = 10 * time.Minute

// TaskHandler is a function that processes a task payload.
type TaskHandler func(ctx context.Context, payload string) error

// Processor holds the worker's collaborators and its registered handlers.
// Render and Avatars may be nil when those providers are not configured;
// the handlers that need them fail their tasks with a logged error.
type Processor struct {
	DB       *gorm.DB
	RDB      *redis.Client
	AI       *processing.Client
	Render   *renderer.Client
	Avatars  *avatars.HeyGenClient
	MediaDir string
	Voice    string
	// AvatarVoice is the provider-side voice id for avatar videos.
	AvatarVoice string

	handlers map[string]TaskHandler
}

func NewProcessor(db *gorm.DB, rdb *redis.Client, ai *processing.Client, render *renderer.Client, heygen *avatars.HeyGenClient, mediaDir string) *Processor {
	return &Processor{
		DB:          db,
		RDB:         rdb,
		AI:          ai,
		Render:      render,
		Avatars:     heygen,
		MediaDir:    mediaDir,
		Voice:       processing.DefaultVoice,
		AvatarVoice: os.Getenv("HEYGEN_VOICE_ID"),
		handlers:    make(map[string]TaskHandler),
	}
}

// Register maps a queue name to a handler function.
func (p *Processor) Register(queueName string, handler TaskHandler) {
	p.handlers[queueName] = handler
	log.Printf("Registered handler for queue: %s", queueName)
}

// Enqueue adds a new task to a queue.
func (p *Processor) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	body, err := tasks.Marshal(payload)
	if err != nil {
		return err
	}
	return p.RDB.LPush(ctx, queueName, body).Err()
}

// Listen blocks forever, popping tasks from the registered queues.
// BRPop pops atomically, so running multiple worker instances is safe.
func (p *Processor) Listen(ctx context.Context, queueNames ...string) {
	log.Printf("Worker listening on %d queues: %v", len(queueNames), queueNames)

	for {
		result, err := p.RDB.BRPop(ctx, 0, queueNames...).Result()
		if err != nil {
			log.Printf("Error popping from queue: %v", err)
			time.Sleep(time.Second)
			continue
		}

		queueName, payload := result[0], result[1]
		handler, ok := p.handlers[queueName]
		if !ok {
			log.Printf("Error: No handler registered for queue %s", queueName)
			continue
		}

		log.Printf("Received task from queue %s", queueName)

		taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
		if err := handler(taskCtx, payload); err != nil {
			log.Printf("Error processing task from %s: %v", queueName, err)
		}
		cancel()
	}
}
