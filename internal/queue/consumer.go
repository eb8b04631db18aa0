// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sk-pkg/logger"
	"go.uber.org/zap"
)

// Handler processes one decoded job message. A non-nil error marks the
// message unconsumed in the caller's logging but the offset is still
// committed — the ingestion pipeline's own status fields (status,
// finding_status) are the source of truth for retry, not consumer offsets.
type Handler func(ctx context.Context, ingestionID string) error

// Consumer drives a Sarama consumer group across the process_ingestion and
// analyze_findings topics, dispatching each message to its registered
// Handler.
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string

	processHandler Handler
	analyzeHandler Handler

	processTopic string
	analyzeTopic string

	logger *logger.Manager
}

// NewConsumer creates a Consumer bound to a consumer group over the given
// brokers, ready to run once handlers are registered.
func NewConsumer(brokers []string, groupID, processTopic, analyzeTopic string, logger *logger.Manager) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("queue: new consumer group failed: %w", err)
	}

	return &Consumer{
		group:        group,
		topics:       []string{processTopic, analyzeTopic},
		processTopic: processTopic,
		analyzeTopic: analyzeTopic,
		logger:       logger,
	}, nil
}

// OnProcessIngestion registers the handler run for process_ingestion jobs.
func (c *Consumer) OnProcessIngestion(h Handler) {
	c.processHandler = h
}

// OnAnalyzeFindings registers the handler run for analyze_findings jobs.
func (c *Consumer) OnAnalyzeFindings(h Handler) {
	c.analyzeHandler = h
}

// Run blocks consuming both topics until ctx is cancelled or the group
// reports a fatal error. Sarama rebalances the group internally; Run simply
// re-joins after every session ends, per the consumer-group-loop idiom.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error(ctx, "consumer group error", zap.Error(err))
		}
	}()

	handler := &groupHandler{consumer: c}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			return fmt.Errorf("queue: consume failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close releases the underlying consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for msg := range claim.Messages() {
		h.dispatch(ctx, msg)
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (h *groupHandler) dispatch(ctx context.Context, msg *sarama.ConsumerMessage) {
	var decoded Message
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		h.consumer.logger.Error(ctx, "decode job message failed", zap.String("topic", msg.Topic), zap.Error(err))
		return
	}

	var handler Handler
	switch msg.Topic {
	case h.consumer.processTopic:
		handler = h.consumer.processHandler
	case h.consumer.analyzeTopic:
		handler = h.consumer.analyzeHandler
	}
	if handler == nil {
		return
	}

	if err := runWithRecover(ctx, h.consumer.logger, decoded.Job, func() error {
		return handler(ctx, decoded.IngestionID.String())
	}); err != nil {
		h.consumer.logger.Error(ctx, "job handler failed",
			zap.String("job", decoded.Job),
			zap.String("ingestion_id", decoded.IngestionID.String()),
			zap.Error(err))
	}
}

// runWithRecover guards a job handler against panics, logging and converting
// them into an error rather than crashing the consumer goroutine.
func runWithRecover(ctx context.Context, log *logger.Manager, job string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "job handler panicked", zap.String("job", job), zap.Any("recover", r))
			err = fmt.Errorf("job %s panicked: %v", job, r)
		}
	}()
	return fn()
}
