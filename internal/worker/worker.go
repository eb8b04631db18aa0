// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package worker wires the queue consumer's two job kinds to the ingestion
// coordinator that actually runs them.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sk-pkg/logger"
	"go.uber.org/zap"

	ingestionSvc "github.com/sk-labs/logintel/app/service/ingestion"
	"github.com/sk-labs/logintel/internal/lock"
	"github.com/sk-labs/logintel/internal/metrics"
	"github.com/sk-labs/logintel/internal/queue"
)

// jobLockTTL bounds how long a job may hold its lock before another worker
// is allowed to retry it, in case the holder crashed mid-job.
const jobLockTTL = 10 * time.Minute

// Pool registers the ingestion coordinator's handlers on a queue consumer
// and runs the consumer loop until the context is cancelled.
type Pool struct {
	consumer    *queue.Consumer
	coordinator ingestionSvc.Coordinator
	lock        *lock.Manager
	logger      *logger.Manager
}

// New creates a worker Pool bound to the given consumer and coordinator.
// lock guards each job so that a Kafka rebalance or retry redelivery can't
// run the same ingestion job twice at once across worker processes.
func New(consumer *queue.Consumer, coordinator ingestionSvc.Coordinator, lock *lock.Manager, logger *logger.Manager) *Pool {
	p := &Pool{consumer: consumer, coordinator: coordinator, lock: lock, logger: logger}
	consumer.OnProcessIngestion(p.handleProcessIngestion)
	consumer.OnAnalyzeFindings(p.handleAnalyzeFindings)
	return p
}

// Run blocks consuming jobs until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	return p.consumer.Run(ctx)
}

func (p *Pool) handleProcessIngestion(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("worker: invalid ingestion id %q: %w", rawID, err)
	}

	name := "ingestion:process:" + rawID
	if !p.lock.Acquire(name, jobLockTTL) {
		p.logger.Info(ctx, "process_ingestion already running elsewhere, skipping", zap.String("ingestion_id", rawID))
		return nil
	}
	defer p.lock.Release(ctx, name)

	p.logger.Info(ctx, "process_ingestion started", zap.String("ingestion_id", rawID))
	if err := p.coordinator.ProcessIngestion(ctx, id); err != nil {
		metrics.RecordQueueJob("process_ingestion", "failure")
		return fmt.Errorf("worker: process_ingestion failed: %w", err)
	}
	metrics.RecordQueueJob("process_ingestion", "success")
	p.logger.Info(ctx, "process_ingestion done", zap.String("ingestion_id", rawID))
	return nil
}

func (p *Pool) handleAnalyzeFindings(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("worker: invalid ingestion id %q: %w", rawID, err)
	}

	name := "ingestion:analyze:" + rawID
	if !p.lock.Acquire(name, jobLockTTL) {
		p.logger.Info(ctx, "analyze_findings already running elsewhere, skipping", zap.String("ingestion_id", rawID))
		return nil
	}
	defer p.lock.Release(ctx, name)

	p.logger.Info(ctx, "analyze_findings started", zap.String("ingestion_id", rawID))
	if err := p.coordinator.AnalyzeFindings(ctx, id); err != nil {
		metrics.RecordQueueJob("analyze_findings", "failure")
		return fmt.Errorf("worker: analyze_findings failed: %w", err)
	}
	metrics.RecordQueueJob("analyze_findings", "success")
	p.logger.Info(ctx, "analyze_findings done", zap.String("ingestion_id", rawID))
	return nil
}
