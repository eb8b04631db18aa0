// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package ingestion implements ingestion-domain repository access methods:
// event batch writes, fingerprint-group/evidence queries backing the
// findings engine, and cursor-paginated event listing for the query layer.
package ingestion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/model/ingestion"
)

// EventFilter narrows ListEvents. Zero-valued fields are not applied.
// Service == "unknown" matches events with an empty service column.
type EventFilter struct {
	Levels      []string
	Service     string
	Fingerprint string
	TsFrom      *time.Time
	TsTo        *time.Time
	Q           string
	Cursor      int
	Limit       int
}

// FingerprintGroup is one fingerprint cluster's event count and most recent
// message, as returned by TopFingerprintGroups.
type FingerprintGroup struct {
	Fingerprint   string `gorm:"column:fingerprint"`
	Count         int    `gorm:"column:fp_count"`
	LatestMessage string `gorm:"column:message"`
}

type (
	// EventRepo defines persistence operations over an ingestion's log events.
	EventRepo interface {
		CreateBatch(events []ingestion.LogEvent) error
		TopFingerprintGroups(ingestionID uuid.UUID, limit int) ([]FingerprintGroup, error)
		EvidenceIDs(ingestionID uuid.UUID, fingerprint string, head, tail int) ([]string, error)
		RecentErrors(ingestionID uuid.UUID, levels []string, limit int) ([]ingestion.LogEvent, error)
		ListEvents(ingestionID uuid.UUID, filter EventFilter) (events []ingestion.LogEvent, hasMore bool, err error)
		ByIDs(ingestionID uuid.UUID, ids []string) ([]ingestion.LogEvent, error)
		GroupOverview(ingestionID uuid.UUID, fingerprint string) (*GroupOverview, error)
		Stats(ingestionID uuid.UUID) (*Stats, error)
	}

	eventRepo struct {
		db *gorm.DB
	}
)

// NewEventRepo creates an EventRepo backed by GORM.
func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepo{db: db}
}

// CreateBatch inserts the parsed events for an ingestion run.
func (r *eventRepo) CreateBatch(events []ingestion.LogEvent) error {
	return ingestion.CreateBatch(r.db, events)
}

// TopFingerprintGroups returns up to limit fingerprint groups for an
// ingestion, ordered by member count descending (tie-break: fingerprint
// ascending), each carrying its most recent event's message. GORM has no
// native window-function support, so this uses a raw subquery built on
// COUNT() OVER (PARTITION BY fingerprint) and ROW_NUMBER() OVER (PARTITION
// BY fingerprint ORDER BY seq DESC).
func (r *eventRepo) TopFingerprintGroups(ingestionID uuid.UUID, limit int) ([]FingerprintGroup, error) {
	const query = `
		SELECT fingerprint, message, fp_count FROM (
			SELECT
				fingerprint,
				message,
				COUNT(*) OVER (PARTITION BY fingerprint) AS fp_count,
				ROW_NUMBER() OVER (PARTITION BY fingerprint ORDER BY seq DESC) AS rn
			FROM log_events
			WHERE ingestion_id = ?
		) ranked
		WHERE rn = 1
		ORDER BY fp_count DESC, fingerprint ASC
		LIMIT ?
	`

	var groups []FingerprintGroup
	err := r.db.Raw(query, ingestionID, limit).Scan(&groups).Error
	return groups, err
}

// EvidenceIDs returns the deduplicated head-N + tail-N event ids for one
// fingerprint within an ingestion, ordered seq ascending then seq
// descending, head entries preceding tail entries.
func (r *eventRepo) EvidenceIDs(ingestionID uuid.UUID, fingerprint string, head, tail int) ([]string, error) {
	var headIDs, tailIDs []uuid.UUID

	base := r.db.Model(&ingestion.LogEvent{}).
		Where("ingestion_id = ? AND fingerprint = ?", ingestionID, fingerprint)

	if err := base.Session(&gorm.Session{}).Order("seq asc").Limit(head).Pluck("id", &headIDs).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Order("seq desc").Limit(tail).Pluck("id", &tailIDs).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(headIDs)+len(tailIDs))
	out := make([]string, 0, len(headIDs)+len(tailIDs))
	for _, id := range append(headIDs, tailIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id.String())
	}
	return out, nil
}

// RecentErrors returns the most recent limit events whose level is one of
// levels, ordered seq descending.
func (r *eventRepo) RecentErrors(ingestionID uuid.UUID, levels []string, limit int) ([]ingestion.LogEvent, error) {
	var events []ingestion.LogEvent
	err := r.db.
		Where("ingestion_id = ? AND level IN ?", ingestionID, levels).
		Order("seq desc").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ListEvents returns up to filter.Limit events past filter.Cursor, applying
// every populated filter field, ordered seq ascending. hasMore is true iff
// a limit+1 probe finds an additional row past the returned page.
func (r *eventRepo) ListEvents(ingestionID uuid.UUID, filter EventFilter) ([]ingestion.LogEvent, bool, error) {
	query := r.db.Model(&ingestion.LogEvent{}).
		Where("ingestion_id = ? AND seq > ?", ingestionID, filter.Cursor)

	if len(filter.Levels) > 0 {
		query = query.Where("level IN ?", filter.Levels)
	}
	if filter.Service != "" {
		if filter.Service == "unknown" {
			query = query.Where("service IS NULL OR service = ''")
		} else {
			query = query.Where("service = ?", filter.Service)
		}
	}
	if filter.Fingerprint != "" {
		query = query.Where("fingerprint = ?", filter.Fingerprint)
	}
	if filter.TsFrom != nil {
		query = query.Where("ts >= ?", *filter.TsFrom)
	}
	if filter.TsTo != nil {
		query = query.Where("ts <= ?", *filter.TsTo)
	}
	if filter.Q != "" {
		query = query.Where("message LIKE ?", "%"+filter.Q+"%")
	}

	var events []ingestion.LogEvent
	if err := query.Order("seq asc").Limit(filter.Limit + 1).Find(&events).Error; err != nil {
		return nil, false, err
	}

	hasMore := len(events) > filter.Limit
	if hasMore {
		events = events[:filter.Limit]
	}
	return events, hasMore, nil
}

// ByIDs returns the events matching ids, ordered seq ascending, scoped to
// ingestionID.
func (r *eventRepo) ByIDs(ingestionID uuid.UUID, ids []string) ([]ingestion.LogEvent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []ingestion.LogEvent
	err := r.db.
		Where("ingestion_id = ? AND id IN ?", ingestionID, ids).
		Order("seq asc").
		Find(&events).Error
	return events, err
}

// GroupOverview is the per-fingerprint detail view: member count, ts
// bounds, level/service histograms, and representative sample/latest rows.
type GroupOverview struct {
	Fingerprint   string
	Count         int64
	FirstTs       *time.Time
	LastTs        *time.Time
	LevelCounts   map[string]int64
	ServiceCounts map[string]int64
	Sample        *ingestion.LogEvent
	Latest        *ingestion.LogEvent
	Samples       []ingestion.LogEvent
}

// maxGroupSamples caps how many representative events a group overview
// carries forward into an insight prompt.
const maxGroupSamples = 12

// GroupOverview summarizes all events sharing one fingerprint within an
// ingestion.
func (r *eventRepo) GroupOverview(ingestionID uuid.UUID, fingerprint string) (*GroupOverview, error) {
	scope := func() *gorm.DB {
		return r.db.Model(&ingestion.LogEvent{}).Where("ingestion_id = ? AND fingerprint = ?", ingestionID, fingerprint)
	}

	var count int64
	if err := scope().Count(&count).Error; err != nil {
		return nil, err
	}

	var bounds struct {
		MinTs *time.Time
		MaxTs *time.Time
	}
	if err := scope().Select("min(ts) as min_ts, max(ts) as max_ts").Scan(&bounds).Error; err != nil {
		return nil, err
	}

	var levelRows []struct {
		Level string
		Count int64
	}
	if err := scope().Select("level, count(*) as count").Group("level").Scan(&levelRows).Error; err != nil {
		return nil, err
	}
	var serviceRows []struct {
		Service string
		Count   int64
	}
	if err := scope().Select("service, count(*) as count").Group("service").Scan(&serviceRows).Error; err != nil {
		return nil, err
	}

	// MySQL has no NULLS LAST; "ts IS NULL" sorts 0 (has a timestamp) before
	// 1 (no timestamp) ascending, which pushes null-ts rows to the end.
	var sample, latest ingestion.LogEvent
	sampleErr := scope().Order("ts IS NULL, ts desc, seq asc").Limit(1).Scan(&sample).Error
	latestErr := scope().Order("ts IS NULL, ts desc, seq desc").Limit(1).Scan(&latest).Error

	overview := &GroupOverview{
		Fingerprint:   fingerprint,
		Count:         count,
		FirstTs:       bounds.MinTs,
		LastTs:        bounds.MaxTs,
		LevelCounts:   make(map[string]int64, len(levelRows)),
		ServiceCounts: make(map[string]int64, len(serviceRows)),
	}
	for _, row := range levelRows {
		level := row.Level
		if level == "" {
			level = "UNKNOWN"
		}
		overview.LevelCounts[level] = row.Count
	}
	for _, row := range serviceRows {
		service := row.Service
		if service == "" {
			service = "unknown"
		}
		overview.ServiceCounts[service] = row.Count
	}
	if sampleErr == nil && sample.ID != uuid.Nil {
		overview.Sample = &sample
	}
	if latestErr == nil && latest.ID != uuid.Nil {
		overview.Latest = &latest
	}

	var samples []ingestion.LogEvent
	if err := scope().Order("seq asc").Limit(maxGroupSamples).Find(&samples).Error; err != nil {
		return nil, err
	}
	overview.Samples = samples

	return overview, nil
}

// Stats is the aggregate event summary for an ingestion's overview view.
type Stats struct {
	TotalEvents       int64
	TotalEventsWithTs int64
	MinTs             *time.Time
	MaxTs             *time.Time
	LevelCounts       map[string]int64
	ServiceCounts     map[string]int64
}

// Stats computes total event count, ts coverage and bounds, plus per-level
// and per-service counts for an ingestion.
func (r *eventRepo) Stats(ingestionID uuid.UUID) (*Stats, error) {
	var total int64
	if err := r.db.Model(&ingestion.LogEvent{}).Where("ingestion_id = ?", ingestionID).Count(&total).Error; err != nil {
		return nil, err
	}

	var base struct {
		WithTs int64
		MinTs  *time.Time
		MaxTs  *time.Time
	}
	if err := r.db.Model(&ingestion.LogEvent{}).
		Select("count(ts) as with_ts, min(ts) as min_ts, max(ts) as max_ts").
		Where("ingestion_id = ?", ingestionID).
		Scan(&base).Error; err != nil {
		return nil, err
	}

	var levelRows []struct {
		Level string
		Count int64
	}
	if err := r.db.Model(&ingestion.LogEvent{}).
		Select("level, count(*) as count").
		Where("ingestion_id = ?", ingestionID).
		Group("level").
		Scan(&levelRows).Error; err != nil {
		return nil, err
	}

	var serviceRows []struct {
		Service string
		Count   int64
	}
	if err := r.db.Model(&ingestion.LogEvent{}).
		Select("service, count(*) as count").
		Where("ingestion_id = ?", ingestionID).
		Group("service").
		Scan(&serviceRows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalEvents:       total,
		TotalEventsWithTs: base.WithTs,
		MinTs:             base.MinTs,
		MaxTs:             base.MaxTs,
		LevelCounts:       make(map[string]int64, len(levelRows)),
		ServiceCounts:     make(map[string]int64, len(serviceRows)),
	}
	for _, row := range levelRows {
		level := row.Level
		if level == "" {
			level = "UNKNOWN"
		}
		stats.LevelCounts[level] = row.Count
	}
	for _, row := range serviceRows {
		service := row.Service
		if service == "" {
			service = "unknown"
		}
		stats.ServiceCounts[service] = row.Count
	}
	return stats, nil
}
