// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AiAnalysis caches one generated insight response so repeated requests for
// the same group/finding do not re-invoke the LLM. Regenerating an insight
// replaces the existing row for its (ingestion_id, scope_type, scope_id).
type AiAnalysis struct {
	ID          uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	IngestionID uuid.UUID `gorm:"column:ingestion_id;type:char(36);uniqueIndex:uq_ingestion_scope,priority:1" json:"ingestion_id"`
	ScopeType   string    `gorm:"column:scope_type;uniqueIndex:uq_ingestion_scope,priority:2" json:"scope_type"`
	ScopeID     string    `gorm:"column:scope_id;uniqueIndex:uq_ingestion_scope,priority:3" json:"scope_id"`
	Prompt      string    `gorm:"column:prompt" json:"prompt"`
	Result      string    `gorm:"column:result" json:"result"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name for AiAnalysis.
func (a *AiAnalysis) TableName() string {
	return "ai_analyses"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (a *AiAnalysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Save replaces any existing analysis for the same
// (ingestion_id, scope_type, scope_id) with the current record, inside one
// transaction, matching the findings engine's delete-then-insert
// replace-on-regenerate idiom.
func (a *AiAnalysis) Save(db *gorm.DB) (id uuid.UUID, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingestion_id = ? AND scope_type = ? AND scope_id = ?", a.IngestionID, a.ScopeType, a.ScopeID).
			Delete(&AiAnalysis{}).Error; err != nil {
			return fmt.Errorf("clear prior analysis failed: %w", err)
		}
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

// FindCached returns a previously generated analysis for the same
// ingestion/scope_type/scope_id, if one exists.
func FindCached(db *gorm.DB, ingestionID uuid.UUID, scopeType, scopeID string) (*AiAnalysis, error) {
	var found *AiAnalysis
	err := db.Where("ingestion_id = ? AND scope_type = ? AND scope_id = ?", ingestionID, scopeType, scopeID).
		First(&found).Error
	return found, err
}
