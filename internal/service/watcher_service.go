package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/pkg/logger"
)

// IWatcherService watches the docs directory and nudges the consumer over
// the event bus when metadata files change.
type IWatcherService interface {
	Start(ctx context.Context) error
	Stop() error
}

type watcherService struct {
	docsDir          string
	debounce         time.Duration
	publisherService IPublisherService
	logger           logger.ILogger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewWatcherService(docsDir string, debounceSeconds int, publisherService IPublisherService, log logger.ILogger) IWatcherService {
	if debounceSeconds <= 0 {
		debounceSeconds = 5
	}
	return &watcherService{
		docsDir:          docsDir,
		debounce:         time.Duration(debounceSeconds) * time.Second,
		publisherService: publisherService,
		logger:           log,
		done:             make(chan struct{}),
	}
}

func (ws *watcherService) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(ws.docsDir); err != nil {
		watcher.Close()
		return err
	}
	ws.watcher = watcher

	ws.logger.Info("WATCHER", "Watching docs directory", map[string]interface{}{
		"dir":         ws.docsDir,
		"debounce_ms": ws.debounce.Milliseconds(),
	})

	go ws.run(ctx)
	return nil
}

func (ws *watcherService) Stop() error {
	close(ws.done)
	if ws.watcher != nil {
		return ws.watcher.Close()
	}
	return nil
}

// run coalesces bursts of filesystem events into one notification. Editors
// fire several Write events per save; the debounce timer resets on each one
// and only the last event of a burst is published.
func (ws *watcherService) run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending fsnotify.Event
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ws.done:
			return
		case event, ok := <-ws.watcher.Events:
			if !ok {
				return
			}
			if !ws.relevant(event) {
				continue
			}
			pending = event
			if timer == nil {
				timer = time.NewTimer(ws.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(ws.debounce)
			}
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return
			}
			ws.logger.Warn("WATCHER", "Watch error", map[string]interface{}{
				"error": err.Error(),
			})
		case <-timerC:
			ws.notify(ctx, pending)
			timer = nil
			timerC = nil
		}
	}
}

// relevant keeps create/write/rename events on the document extensions and
// drops everything else (chmod noise, temp files, directories).
func (ws *watcherService) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".txt", ".md", ".json":
		return true
	}
	return false
}

func (ws *watcherService) notify(ctx context.Context, event fsnotify.Event) {
	payload, err := json.Marshal(dto.PublishCorpusUpdatedMessage{
		Path: event.Name,
		Op:   event.Op.String(),
		At:   time.Now(),
	})
	if err != nil {
		ws.logger.Error("WATCHER", "Failed to marshal change notification", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ws.publisherService.Publish(ctx, payload); err != nil {
		ws.logger.Error("WATCHER", "Failed to publish change notification", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ws.logger.Info("WATCHER", "Corpus change published", map[string]interface{}{
		"path": event.Name,
		"op":   event.Op.String(),
	})
}
