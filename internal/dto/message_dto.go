package dto

import "time"

// PublishCorpusUpdatedMessage rides the in-process event bus from the
// watcher to the consumer.
type PublishCorpusUpdatedMessage struct {
	Path string    `json:"path"`
	Op   string    `json:"op"`
	At   time.Time `json:"at"`
}
