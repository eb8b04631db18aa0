// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/model/ingestion"
	"github.com/sk-labs/logintel/app/model/project"
)

type (
	// Repo defines persistence operations over ingestions, their findings,
	// and cached insight analyses.
	Repo interface {
		Create(projectID uuid.UUID, sourceType string) (*ingestion.Ingestion, error)
		GetScoped(ingestionID, projectID, orgID uuid.UUID) (*ingestion.Ingestion, error)
		ListByProject(projectID uuid.UUID) ([]ingestion.Ingestion, error)
		UpdateStatus(ingestionID uuid.UUID, fields map[string]interface{}) error
		Delete(ingestionID uuid.UUID) error

		ReplaceFindings(ingestionID uuid.UUID, findings []ingestion.Finding) error
		ListFindings(ingestionID uuid.UUID) ([]ingestion.Finding, error)
		GetFinding(ingestionID, findingID uuid.UUID) (*ingestion.Finding, error)

		FindCachedAnalysis(ingestionID uuid.UUID, scopeType, scopeID string) (*ingestion.AiAnalysis, error)
		SaveAnalysis(analysis *ingestion.AiAnalysis) (uuid.UUID, error)
	}

	repo struct {
		db *gorm.DB
	}
)

// NewRepo creates a Repo backed by GORM.
func NewRepo(db *gorm.DB) Repo {
	return &repo{db: db}
}

// Create inserts a new ingestion in pending status.
func (r *repo) Create(projectID uuid.UUID, sourceType string) (*ingestion.Ingestion, error) {
	ing := &ingestion.Ingestion{
		ProjectID:     projectID,
		SourceType:    sourceType,
		Status:        ingestion.StatusPending,
		FindingStatus: ingestion.FindingStatusPending,
	}
	if _, err := ing.Create(r.db); err != nil {
		return nil, err
	}
	return ing, nil
}

// GetScoped returns an ingestion only when it belongs to projectID and
// projectID in turn belongs to orgID, preventing cross-tenant lookups.
func (r *repo) GetScoped(ingestionID, projectID, orgID uuid.UUID) (*ingestion.Ingestion, error) {
	proj := &project.Project{ID: projectID, OrgID: orgID}
	if _, err := proj.First(r.db); err != nil {
		return nil, err
	}
	ing := &ingestion.Ingestion{ID: ingestionID, ProjectID: projectID}
	return ing.First(r.db)
}

// ListByProject returns every ingestion belonging to projectID.
func (r *repo) ListByProject(projectID uuid.UUID) ([]ingestion.Ingestion, error) {
	var i ingestion.Ingestion
	return i.ListByProject(r.db, projectID)
}

// UpdateStatus applies a partial column update, typically a status or
// finding_status transition.
func (r *repo) UpdateStatus(ingestionID uuid.UUID, fields map[string]interface{}) error {
	ing := &ingestion.Ingestion{ID: ingestionID}
	return ing.Updates(r.db, fields)
}

// Delete removes an ingestion and cascades to its events/findings/analyses.
func (r *repo) Delete(ingestionID uuid.UUID) error {
	ing := &ingestion.Ingestion{ID: ingestionID}
	return ing.Delete(r.db)
}

// ReplaceFindings atomically swaps an ingestion's finding set.
func (r *repo) ReplaceFindings(ingestionID uuid.UUID, findings []ingestion.Finding) error {
	return ingestion.ReplaceForIngestion(r.db, ingestionID, findings)
}

// ListFindings returns all findings for an ingestion, most severe first.
func (r *repo) ListFindings(ingestionID uuid.UUID) ([]ingestion.Finding, error) {
	return ingestion.ListByIngestion(r.db, ingestionID)
}

// GetFinding returns one finding scoped to its ingestion.
func (r *repo) GetFinding(ingestionID, findingID uuid.UUID) (*ingestion.Finding, error) {
	return ingestion.Get(r.db, ingestionID, findingID)
}

// FindCachedAnalysis returns the most recent cached insight for a
// (scope_type, scope_id) pair, if one exists.
func (r *repo) FindCachedAnalysis(ingestionID uuid.UUID, scopeType, scopeID string) (*ingestion.AiAnalysis, error) {
	return ingestion.FindCached(r.db, ingestionID, scopeType, scopeID)
}

// SaveAnalysis persists a freshly generated insight, replacing any prior
// analysis for the same (ingestion_id, scope_type, scope_id).
func (r *repo) SaveAnalysis(analysis *ingestion.AiAnalysis) (uuid.UUID, error) {
	return analysis.Save(r.db)
}
