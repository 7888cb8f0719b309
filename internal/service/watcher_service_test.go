package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fsnotify/fsnotify"

	"ai-docs-assistant-be/internal/dto"
)

func TestWatcherRelevantEvents(t *testing.T) {
	ws := &watcherService{}

	tests := []struct {
		name     string
		event    fsnotify.Event
		relevant bool
	}{
		{
			name:     "txt write",
			event:    fsnotify.Event{Name: "docs/bucket_metadata.txt", Op: fsnotify.Write},
			relevant: true,
		},
		{
			name:     "md create",
			event:    fsnotify.Event{Name: "docs/runbook.md", Op: fsnotify.Create},
			relevant: true,
		},
		{
			name:     "json rename",
			event:    fsnotify.Event{Name: "docs/buckets.json", Op: fsnotify.Rename},
			relevant: true,
		},
		{
			name:     "uppercase extension",
			event:    fsnotify.Event{Name: "docs/NOTES.TXT", Op: fsnotify.Write},
			relevant: true,
		},
		{
			name:     "chmod ignored",
			event:    fsnotify.Event{Name: "docs/bucket_metadata.txt", Op: fsnotify.Chmod},
			relevant: false,
		},
		{
			name:     "remove ignored",
			event:    fsnotify.Event{Name: "docs/bucket_metadata.txt", Op: fsnotify.Remove},
			relevant: false,
		},
		{
			name:     "other extension",
			event:    fsnotify.Event{Name: "docs/archive.zip", Op: fsnotify.Write},
			relevant: false,
		},
		{
			name:     "no extension",
			event:    fsnotify.Event{Name: "docs/Makefile", Op: fsnotify.Write},
			relevant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ws.relevant(tt.event); got != tt.relevant {
				t.Errorf("relevant(%v %s) = %v, want %v", tt.event.Op, tt.event.Name, got, tt.relevant)
			}
		})
	}
}

func TestPublisherServiceDeliversToSubscriber(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	ctx := context.Background()
	messages, err := pubSub.Subscribe(ctx, TopicCorpusUpdated)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	ps := NewPublisherService(TopicCorpusUpdated, pubSub)
	payload, err := json.Marshal(dto.PublishCorpusUpdatedMessage{
		Path: "docs/bucket_metadata.txt",
		Op:   "WRITE",
		At:   time.Now(),
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := ps.Publish(ctx, payload); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-messages:
		var got dto.PublishCorpusUpdatedMessage
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got.Path != "docs/bucket_metadata.txt" || got.Op != "WRITE" {
			t.Errorf("unexpected payload: %+v", got)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered on the corpus.updated topic")
	}
}
