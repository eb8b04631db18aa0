// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package ingestion implements the ingestion coordinator and query layer
// service: submitting raw log text, the two background jobs that carry an
// ingestion from pending to done (write path) and finding_status from
// pending to done (findings pass), and the read-side queries backing the
// HTTP API.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sk-pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sk-labs/logintel/internal/blobstore"
	"github.com/sk-labs/logintel/internal/logpipeline/fingerprint"
	"github.com/sk-labs/logintel/internal/logpipeline/findings"
	"github.com/sk-labs/logintel/internal/logpipeline/parser"
	"github.com/sk-labs/logintel/internal/metrics"

	ingestionModel "github.com/sk-labs/logintel/app/model/ingestion"
	ingestionRepo "github.com/sk-labs/logintel/app/repository/ingestion"
)

// Caps mirrors the configured pipeline sizing knobs (app.Config.Ingestion).
type Caps struct {
	MaxBlobBytes           int64
	TopFingerprintLimit    int
	RecentErrorLimit       int
	EvidenceHeadTail       int
	MaxEvidencePerRule     int
	MaxFingerprintsPerRule int
}

// JobEnqueuer dispatches the two background jobs that carry an ingestion
// through the pipeline. Kept as a narrow interface so the coordinator
// doesn't depend on the concrete queue implementation.
type JobEnqueuer interface {
	EnqueueProcessIngestion(ingestionID uuid.UUID) error
	EnqueueAnalyzeFindings(ingestionID uuid.UUID) error
}

type (
	// Coordinator runs the ingestion pipeline's two background jobs and
	// accepts new raw log submissions.
	Coordinator interface {
		Submit(projectID uuid.UUID, sourceType, text string) (*ingestionModel.Ingestion, error)
		ProcessIngestion(ctx context.Context, ingestionID uuid.UUID) error
		AnalyzeFindings(ctx context.Context, ingestionID uuid.UUID) error
	}

	coordinator struct {
		repo   ingestionRepo.Repo
		events ingestionRepo.EventRepo
		blobs  blobstore.Store
		queue  JobEnqueuer
		logger *logger.Manager
		caps   Caps
	}
)

// NewCoordinator creates a Coordinator with its storage and queue dependencies.
func NewCoordinator(repo ingestionRepo.Repo, events ingestionRepo.EventRepo, blobs blobstore.Store, queue JobEnqueuer, logger *logger.Manager, caps Caps) Coordinator {
	return &coordinator{repo: repo, events: events, blobs: blobs, queue: queue, logger: logger, caps: caps}
}

// Submit creates a pending ingestion row, writes its raw text to the blob
// store and enqueues process_ingestion (an enqueue failure is logged, not
// returned). The write path (parsing, fingerprinting, event persistence)
// runs asynchronously when a worker consumes that job.
func (c *coordinator) Submit(projectID uuid.UUID, sourceType, text string) (*ingestionModel.Ingestion, error) {
	if c.caps.MaxBlobBytes > 0 && int64(len(text)) > c.caps.MaxBlobBytes {
		return nil, fmt.Errorf("ingestion: payload of %d bytes exceeds max_blob_bytes %d", len(text), c.caps.MaxBlobBytes)
	}

	ing, err := c.repo.Create(projectID, sourceType)
	if err != nil {
		return nil, fmt.Errorf("ingestion: create failed: %w", err)
	}

	if err := c.blobs.Put(ing.ID, text); err != nil {
		return nil, fmt.Errorf("ingestion: blob write failed: %w", err)
	}

	if err := c.queue.EnqueueProcessIngestion(ing.ID); err != nil {
		c.logger.Error(context.Background(), "enqueue process_ingestion failed", zap.String("ingestion_id", ing.ID.String()), zap.Error(err))
	}

	metrics.IngestionsTotal.WithLabelValues(sourceType).Inc()
	metrics.IngestionStatusTotal.WithLabelValues(ingestionModel.StatusPending).Inc()

	return ing, nil
}

// ProcessIngestion runs the write path: pending -> processing -> done/failed.
// It reads the raw blob, parses it into records, fingerprints each record's
// signature, batch-inserts the resulting events, and on success enqueues
// analyze_findings. On any failure the ingestion is marked failed and the
// error is returned for the job layer's retry/observability handling.
func (c *coordinator) ProcessIngestion(ctx context.Context, ingestionID uuid.UUID) error {
	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{"status": ingestionModel.StatusProcessing}); err != nil {
		return fmt.Errorf("ingestion: mark processing failed: %w", err)
	}
	metrics.IngestionStatusTotal.WithLabelValues(ingestionModel.StatusProcessing).Inc()

	start := time.Now()
	err := c.writeEvents(ingestionID)
	metrics.ObserveStage("write_events", time.Since(start))
	if err != nil {
		c.fail(ctx, ingestionID, err)
		metrics.IngestionStatusTotal.WithLabelValues(ingestionModel.StatusFailed).Inc()
		return err
	}

	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{"status": ingestionModel.StatusDone}); err != nil {
		return fmt.Errorf("ingestion: mark done failed: %w", err)
	}
	metrics.IngestionStatusTotal.WithLabelValues(ingestionModel.StatusDone).Inc()

	if err := c.queue.EnqueueAnalyzeFindings(ingestionID); err != nil {
		c.logger.Error(ctx, "enqueue analyze_findings failed", zap.String("ingestion_id", ingestionID.String()), zap.Error(err))
	}

	return nil
}

func (c *coordinator) writeEvents(ingestionID uuid.UUID) error {
	text, err := c.blobs.Get(ingestionID)
	if err != nil {
		return fmt.Errorf("blob read failed: %w", err)
	}

	records := parser.Parse(text)
	events := make([]ingestionModel.LogEvent, 0, len(records))
	for i, rec := range records {
		attrs, err := json.Marshal(rec.Attrs)
		if err != nil || attrs == nil {
			attrs = []byte("{}")
		}

		ev := ingestionModel.LogEvent{
			IngestionID:     ingestionID,
			Seq:             i + 1,
			TsRaw:           rec.TsRaw,
			Level:           rec.Level,
			Service:         rec.Service,
			Message:         rec.Message,
			Raw:             rec.Raw,
			Attrs:           datatypes.JSON(attrs),
			ParseKind:       rec.ParseKind,
			ParseConfidence: rec.ParseConfidence,
			Fingerprint:     fingerprint.Fingerprint(rec.Signature),
		}
		if rec.Ts != nil {
			ev.Ts.Time = *rec.Ts
			ev.Ts.Valid = true
		}
		events = append(events, ev)
		metrics.EventsParsedTotal.WithLabelValues(ev.Level).Inc()
	}

	return c.events.CreateBatch(events)
}

func (c *coordinator) fail(ctx context.Context, ingestionID uuid.UUID, cause error) {
	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{
		"status": ingestionModel.StatusFailed,
		"error":  cause.Error(),
	}); err != nil {
		c.logger.Error(ctx, "mark ingestion failed errored", zap.String("ingestion_id", ingestionID.String()), zap.Error(err))
	}
}

// AnalyzeFindings runs the two-pass findings engine: pending -> processing
// -> done/failed. Any unhandled error both marks finding_status failed and
// is returned unchanged, mirroring the write path's re-raise behavior.
func (c *coordinator) AnalyzeFindings(ctx context.Context, ingestionID uuid.UUID) error {
	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{"finding_status": ingestionModel.FindingStatusProcessing}); err != nil {
		return fmt.Errorf("findings: mark processing failed: %w", err)
	}

	start := time.Now()
	result, err := c.runFindings(ingestionID)
	metrics.ObserveStage("run_findings", time.Since(start))
	if err != nil {
		c.failFindings(ctx, ingestionID, err)
		return err
	}

	if err := c.repo.ReplaceFindings(ingestionID, result); err != nil {
		c.failFindings(ctx, ingestionID, err)
		return err
	}

	for _, f := range result {
		metrics.FindingsTotal.WithLabelValues(f.RuleID, f.Severity).Inc()
	}

	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{"finding_status": ingestionModel.FindingStatusDone}); err != nil {
		return fmt.Errorf("findings: mark done failed: %w", err)
	}
	return nil
}

func (c *coordinator) runFindings(ingestionID uuid.UUID) ([]ingestionModel.Finding, error) {
	groupRows, err := c.events.TopFingerprintGroups(ingestionID, c.caps.TopFingerprintLimit)
	if err != nil {
		return nil, fmt.Errorf("top fingerprint groups: %w", err)
	}
	groups := make([]findings.Group, 0, len(groupRows))
	for _, g := range groupRows {
		groups = append(groups, findings.Group{Fingerprint: g.Fingerprint, Count: g.Count, LatestMessage: g.LatestMessage})
	}

	errorRows, err := c.events.RecentErrors(ingestionID, []string{"ERROR", "CRITICAL", "FATAL"}, c.caps.RecentErrorLimit)
	if err != nil {
		return nil, fmt.Errorf("recent errors: %w", err)
	}
	errorEvents := make([]findings.ErrorEvent, 0, len(errorRows))
	for _, ev := range errorRows {
		errorEvents = append(errorEvents, findings.ErrorEvent{
			ID:          ev.ID.String(),
			Fingerprint: ev.Fingerprint,
			Level:       ev.Level,
			Message:     ev.Message,
		})
	}

	headTail := c.caps.EvidenceHeadTail
	if headTail <= 0 {
		headTail = 5
	}
	evidenceFor := func(fp string) ([]string, error) {
		return c.events.EvidenceIDs(ingestionID, fp, headTail, headTail)
	}

	caps := findings.Caps{
		MaxEvidencePerRule:       c.caps.MaxEvidencePerRule,
		MaxFingerprintsInSummary: c.caps.MaxFingerprintsPerRule,
	}
	if caps.MaxEvidencePerRule <= 0 {
		caps = findings.DefaultCaps
	}

	computed, err := findings.Run(groups, errorEvents, evidenceFor, caps)
	if err != nil {
		return nil, err
	}

	out := make([]ingestionModel.Finding, 0, len(computed))
	for _, f := range computed {
		fps, err := marshalJSON(f.MatchedFingerprints)
		if err != nil {
			return nil, err
		}
		evidence, err := marshalJSON(f.EvidenceEventIDs)
		if err != nil {
			return nil, err
		}

		out = append(out, ingestionModel.Finding{
			IngestionID:         ingestionID,
			RuleID:              f.RuleID,
			Title:               f.Title,
			Severity:            f.Severity,
			Confidence:          f.Confidence,
			TotalOccurrences:    f.TotalOccurrences,
			MatchedFingerprints: fps,
			EvidenceEventIDs:    evidence,
		})
	}
	return out, nil
}

func (c *coordinator) failFindings(ctx context.Context, ingestionID uuid.UUID, cause error) {
	if err := c.repo.UpdateStatus(ingestionID, map[string]interface{}{"finding_status": ingestionModel.FindingStatusFailed}); err != nil {
		c.logger.Error(ctx, "mark findings failed errored", zap.String("ingestion_id", ingestionID.String()), zap.Error(err))
	}
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal failed: %w", err)
	}
	return datatypes.JSON(b), nil
}
