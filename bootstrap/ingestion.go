// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	ingestionRepo "github.com/sk-labs/logintel/app/repository/ingestion"
	ingestionSvc "github.com/sk-labs/logintel/app/service/ingestion"
	"github.com/sk-labs/logintel/internal/blobstore"
	"github.com/sk-labs/logintel/internal/insight"
	"github.com/sk-labs/logintel/internal/lock"
	"github.com/sk-labs/logintel/internal/queue"
	"github.com/sk-labs/logintel/internal/tracing"
	"github.com/sk-labs/logintel/internal/worker"
)

// loadBlobStore initializes the filesystem-backed raw log blob store.
func (a *App) loadBlobStore(ctx context.Context) error {
	store, err := blobstore.New(a.Config.Ingestion.BlobStoreRoot)
	if err != nil {
		return err
	}

	a.BlobStore = store
	a.Logger.Info(ctx, "Blob store loaded successfully")

	return nil
}

// loadQueue initializes the Kafka-backed job producer and consumer.
func (a *App) loadQueue(ctx context.Context) error {
	producer, err := queue.NewProducer(a.Config.Queue.Brokers, a.Config.Queue.ProcessTopic, a.Config.Queue.AnalyzeTopic)
	if err != nil {
		return err
	}
	a.Queue = producer

	consumer, err := queue.NewConsumer(a.Config.Queue.Brokers, a.Config.Queue.ConsumerGroup, a.Config.Queue.ProcessTopic, a.Config.Queue.AnalyzeTopic, a.Logger)
	if err != nil {
		return err
	}
	a.Consumer = consumer

	a.Logger.Info(ctx, "Queue loaded successfully")

	return nil
}

// loadIngestionServices wires the ingestion coordinator and read-side query
// service over the primary database.
func (a *App) loadIngestionServices(ctx context.Context) error {
	db, ok := a.MysqlDB["logintel"]
	if !ok {
		return fmt.Errorf("bootstrap: database %q not configured", "logintel")
	}

	repo := ingestionRepo.NewRepo(db)
	events := ingestionRepo.NewEventRepo(db)

	caps := ingestionSvc.Caps{
		MaxBlobBytes:           a.Config.Ingestion.MaxBlobBytes,
		TopFingerprintLimit:    a.Config.Ingestion.TopFingerprintLimit,
		RecentErrorLimit:       a.Config.Ingestion.RecentErrorLimit,
		EvidenceHeadTail:       a.Config.Ingestion.EvidenceHeadTail,
		MaxEvidencePerRule:     a.Config.Ingestion.MaxEvidencePerRule,
		MaxFingerprintsPerRule: a.Config.Ingestion.MaxFingerprintsPerRule,
	}

	a.Coordinator = ingestionSvc.NewCoordinator(repo, events, a.BlobStore, a.Queue, a.Logger, caps)
	a.Query = ingestionSvc.NewQuery(repo, events, caps)

	a.Logger.Info(ctx, "Ingestion services loaded successfully")

	return nil
}

// loadInsight initializes the optional LLM insight client.
func (a *App) loadInsight(ctx context.Context) error {
	if !a.Config.Insight.Enable {
		return nil
	}

	a.Insight = insight.NewClient(a.Config.Insight.Endpoint, a.Config.Insight.APIKey, a.Config.Insight.Model, a.Config.Insight.Timeout*time.Second)
	a.Logger.Info(ctx, "Insight client loaded successfully")

	return nil
}

// loadTracing initializes the OpenTelemetry tracer provider.
func (a *App) loadTracing(ctx context.Context) error {
	if !a.Config.Tracing.Enable {
		return nil
	}

	provider, err := tracing.New(a.Config.Tracing.ServiceName)
	if err != nil {
		return err
	}

	a.Tracing = provider
	a.Logger.Info(ctx, "Tracing loaded successfully")

	return nil
}

// loadWorker wires the background worker pool onto the job consumer, guarded
// by a Redis advisory lock so a rebalance or retry redelivery can't run the
// same ingestion job twice across worker processes.
func (a *App) loadWorker(ctx context.Context) error {
	redis, ok := a.Redis["logintel"]
	if !ok {
		return fmt.Errorf("bootstrap: redis %q not configured", "logintel")
	}

	jobLock := lock.New(redis, a.Logger)
	a.Worker = worker.New(a.Consumer, a.Coordinator, jobLock, a.Logger)
	a.Logger.Info(ctx, "Worker pool loaded successfully")

	return nil
}

// startWorker runs the worker pool's consumer loop until the process exits,
// replacing the Docker-monitor collector's container log tailing loop —
// ingestion work here arrives as Kafka jobs, not an ongoing event stream.
func (a *App) startWorker(ctx context.Context) {
	if err := a.Worker.Run(ctx); err != nil {
		a.Logger.Error(ctx, "worker pool stopped", zap.Error(err))
	}
}
