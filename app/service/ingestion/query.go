// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	ingestionModel "github.com/sk-labs/logintel/app/model/ingestion"
	ingestionRepo "github.com/sk-labs/logintel/app/repository/ingestion"
)

// EventPage is one page of events plus cursor-pagination state.
type EventPage struct {
	Items      []ingestionModel.LogEvent
	NextCursor *int
	HasMore    bool
}

// Overview is the ingestion-level summary view: event/ts bounds, level and
// service histograms, top fingerprint groups, and the finding list.
type Overview struct {
	TotalEvents       int64
	TotalEventsWithTs int64
	MinTs             *time.Time
	MaxTs             *time.Time
	LevelCounts       map[string]int64
	ServiceCounts     map[string]int64
	TopFingerprints   []ingestionRepo.FingerprintGroup
	Findings          []ingestionModel.Finding
}

// FingerprintPage is one offset-paginated page of top fingerprint groups.
type FingerprintPage struct {
	Items   []ingestionRepo.FingerprintGroup
	Offset  int
	Limit   int
	HasMore bool
}

// FindingDetail is a finding plus its evidence events: at most the first 20
// of its stored evidence ids, loaded in seq order.
type FindingDetail struct {
	Finding  ingestionModel.Finding
	Evidence []ingestionModel.LogEvent
}

type (
	// Query defines read-side operations over an ingestion's events and
	// findings.
	Query interface {
		ListEvents(ingestionID uuid.UUID, filter ingestionRepo.EventFilter) (*EventPage, error)
		Overview(ingestionID uuid.UUID) (*Overview, error)
		TopFingerprints(ingestionID uuid.UUID, offset, limit int) (*FingerprintPage, error)
		GroupOverview(ingestionID uuid.UUID, fingerprint string) (*ingestionRepo.GroupOverview, error)
		FindingDetail(ingestionID, findingID uuid.UUID) (*FindingDetail, error)
	}

	query struct {
		repo   ingestionRepo.Repo
		events ingestionRepo.EventRepo
		caps   Caps
	}
)

const maxEventPageLimit = 500
const maxFindingEvidence = 20

// NewQuery creates a Query over the ingestion repository.
func NewQuery(repo ingestionRepo.Repo, events ingestionRepo.EventRepo, caps Caps) Query {
	return &query{repo: repo, events: events, caps: caps}
}

// ListEvents returns one page of events, clamping limit to (0, 500].
func (q *query) ListEvents(ingestionID uuid.UUID, filter ingestionRepo.EventFilter) (*EventPage, error) {
	if filter.Limit <= 0 || filter.Limit > maxEventPageLimit {
		filter.Limit = maxEventPageLimit
	}

	items, hasMore, err := q.events.ListEvents(ingestionID, filter)
	if err != nil {
		return nil, fmt.Errorf("list events failed: %w", err)
	}

	page := &EventPage{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		cursor := items[len(items)-1].Seq
		page.NextCursor = &cursor
	}
	return page, nil
}

// NormalizeLevels upper-cases and trims a comma-separated level filter.
func NormalizeLevels(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	levels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			levels = append(levels, p)
		}
	}
	return levels
}

// Overview assembles the ingestion summary view.
func (q *query) Overview(ingestionID uuid.UUID) (*Overview, error) {
	stats, err := q.events.Stats(ingestionID)
	if err != nil {
		return nil, fmt.Errorf("stats failed: %w", err)
	}

	topFingerprintLimit := q.caps.TopFingerprintLimit
	if topFingerprintLimit <= 0 || topFingerprintLimit > 10 {
		topFingerprintLimit = 10
	}
	top, err := q.events.TopFingerprintGroups(ingestionID, topFingerprintLimit)
	if err != nil {
		return nil, fmt.Errorf("top fingerprints failed: %w", err)
	}

	findingsList, err := q.repo.ListFindings(ingestionID)
	if err != nil {
		return nil, fmt.Errorf("list findings failed: %w", err)
	}

	return &Overview{
		TotalEvents:       stats.TotalEvents,
		TotalEventsWithTs: stats.TotalEventsWithTs,
		MinTs:             stats.MinTs,
		MaxTs:             stats.MaxTs,
		LevelCounts:       stats.LevelCounts,
		ServiceCounts:     stats.ServiceCounts,
		TopFingerprints:   top,
		Findings:          findingsList,
	}, nil
}

// TopFingerprints returns one offset-paginated page of fingerprint groups,
// ordered by count desc then fingerprint asc.
func (q *query) TopFingerprints(ingestionID uuid.UUID, offset, limit int) (*FingerprintPage, error) {
	if limit <= 0 {
		limit = 50
	}
	all, err := q.events.TopFingerprintGroups(ingestionID, offset+limit+1)
	if err != nil {
		return nil, fmt.Errorf("top fingerprints failed: %w", err)
	}

	if offset >= len(all) {
		return &FingerprintPage{Items: nil, Offset: offset, Limit: limit}, nil
	}

	end := offset + limit
	hasMore := end < len(all)
	if end > len(all) {
		end = len(all)
	}

	return &FingerprintPage{Items: all[offset:end], Offset: offset, Limit: limit, HasMore: hasMore}, nil
}

// GroupOverview summarizes one fingerprint cluster within an ingestion.
func (q *query) GroupOverview(ingestionID uuid.UUID, fingerprint string) (*ingestionRepo.GroupOverview, error) {
	return q.events.GroupOverview(ingestionID, fingerprint)
}

// FindingDetail returns a finding plus up to 20 of its evidence events.
func (q *query) FindingDetail(ingestionID, findingID uuid.UUID) (*FindingDetail, error) {
	finding, err := q.repo.GetFinding(ingestionID, findingID)
	if err != nil {
		return nil, fmt.Errorf("get finding failed: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(finding.EvidenceEventIDs, &ids); err != nil {
		return nil, fmt.Errorf("decode evidence ids failed: %w", err)
	}
	if len(ids) > maxFindingEvidence {
		ids = ids[:maxFindingEvidence]
	}

	events, err := q.events.ByIDs(ingestionID, ids)
	if err != nil {
		return nil, fmt.Errorf("load evidence events failed: %w", err)
	}

	return &FindingDetail{Finding: *finding, Evidence: events}, nil
}
