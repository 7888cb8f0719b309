package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/pkg/mailer"
	adminEvents "ai-docs-assistant-be/pkg/admin/events"
	"ai-docs-assistant-be/pkg/resolver"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	resolver       *resolver.Resolver
	eventPublisher adminEvents.Publisher
	emailService   mailer.IEmailService
	logger         logger.ILogger

	metadataPath      string
	docsDir           string
	autoRebuildVector bool
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	res *resolver.Resolver,
	eventPublisher adminEvents.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
	metadataPath, docsDir string,
	autoRebuildVector bool,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		resolver:          res,
		eventPublisher:    eventPublisher,
		emailService:      emailService,
		logger:            log,
		metadataPath:      metadataPath,
		docsDir:           docsDir,
		autoRebuildVector: autoRebuildVector,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage refreshes every tier that reads from disk. Each step fails
// independently: a broken metadata file must not stop the corpus reload,
// and vice versa. Messages are always acked; redelivering a rebuild that
// failed on bad input would just fail again.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishCorpusUpdatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal change notification", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	cs.logger.Info("CONSUMER", "Corpus change received", map[string]interface{}{
		"path": payload.Path,
		"op":   payload.Op,
	})

	// 1. Structured metadata index.
	if err := cs.resolver.RebuildStructuredIndex(cs.metadataPath); err != nil {
		cs.alert("structured index", err)
	} else {
		stats := cs.resolver.IndexStats()
		cs.eventPublisher.PublishIndexRebuilt(ctx, cs.metadataPath, stats.Lines, stats.LastBuildDuration)
	}

	// 2. Full-text corpus.
	snap := cs.resolver.ReloadCorpus()
	if snap.Loaded {
		cs.eventPublisher.PublishCorpusReloaded(ctx, snap.Path, len(snap.Text))
	} else {
		cs.alert("corpus", errors.New("no corpus file could be loaded"))
	}

	// 3. Vector index. Re-embedding is expensive, so it only runs when
	// opted in; otherwise the retriever just drops its in-memory copy.
	if !cs.autoRebuildVector {
		cs.resolver.ResetRetriever()
		return
	}

	result, err := cs.resolver.RebuildVectorIndex(ctx, cs.docsDir)
	if err != nil {
		cs.eventPublisher.PublishVectorRebuildFailed(ctx, cs.docsDir, err.Error())
		cs.alert("vector index", err)
		return
	}
	cs.eventPublisher.PublishVectorRebuilt(ctx, cs.docsDir, result.Documents, result.Chunks, result.Duration)
}

func (cs *consumerService) alert(component string, err error) {
	cs.logger.Error("CONSUMER", "Rebuild failed", map[string]interface{}{
		"component": component,
		"error":     err.Error(),
	})
	if mailErr := cs.emailService.SendRebuildFailed(component, err.Error()); mailErr != nil {
		cs.logger.Warn("CONSUMER", "Alert mail not sent", map[string]interface{}{
			"error": mailErr.Error(),
		})
	}
}
