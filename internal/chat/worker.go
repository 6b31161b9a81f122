package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"life-coach-chat/internal/db"
)

const (
	defaultQueueSize  = 64
	extractionTimeout = 30 * time.Second
)

type extractionTask struct {
	userID  int64
	content string
}

// ExtractorWorker runs challenge extraction off the critical path of
// message sending. Tasks are queued and processed by a single
// background goroutine; every failure in this branch is logged and
// swallowed, never surfaced to the chat caller.
type ExtractorWorker struct {
	db        *db.DB
	generator Generator
	tasks     chan extractionTask
	quit      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewExtractorWorker creates a worker; call Start before enqueueing
func NewExtractorWorker(database *db.DB, generator Generator) *ExtractorWorker {
	return &ExtractorWorker{
		db:        database,
		generator: generator,
		tasks:     make(chan extractionTask, defaultQueueSize),
		quit:      make(chan struct{}),
	}
}

// Start launches the background processing goroutine
func (w *ExtractorWorker) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(1)
		go w.run()
		log.Printf("[Extractor] Worker started queue_size=%d", cap(w.tasks))
	})
}

// Enqueue hands a user message to the worker. Never blocks: when the
// queue is full the task is dropped, because extraction is best-effort.
func (w *ExtractorWorker) Enqueue(userID int64, content string) {
	select {
	case w.tasks <- extractionTask{userID: userID, content: content}:
	default:
		log.Printf("[Extractor] Queue full, dropping task user_id=%d", userID)
	}
}

// Shutdown stops the worker and waits for it to exit. Tasks already
// queued are processed before the worker returns; a call in flight
// runs to completion under its own timeout.
func (w *ExtractorWorker) Shutdown() {
	w.stopOnce.Do(func() { close(w.quit) })
	w.wg.Wait()
	log.Printf("[Extractor] Worker stopped")
}

func (w *ExtractorWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			w.drain()
			return
		case task := <-w.tasks:
			w.process(task)
		}
	}
}

// drain processes whatever is still queued when the quit signal lands
func (w *ExtractorWorker) drain() {
	for {
		select {
		case task := <-w.tasks:
			w.process(task)
		default:
			return
		}
	}
}

func (w *ExtractorWorker) process(task extractionTask) {
	// Detached from the quit signal so a call in flight is not
	// cancelled mid-extraction; the timeout still bounds it
	ctx, cancel := context.WithTimeout(context.Background(), extractionTimeout)
	defer cancel()

	detection, err := w.generator.DetectChallenge(ctx, task.content)
	if err != nil {
		log.Printf("[Extractor] Detection failed user_id=%d err=%v", task.userID, err)
		return
	}

	if !detection.Detected || detection.Title == "" {
		return
	}

	challenge, err := w.db.CreateChallenge(task.userID, detection.Title, detection.Description, true)
	if err != nil {
		log.Printf("[Extractor] Failed to save detected challenge user_id=%d err=%v", task.userID, err)
		return
	}

	log.Printf("[Extractor] Challenge detected from chat user_id=%d challenge_id=%d title=%q",
		task.userID, challenge.ID, challenge.Title)
}
