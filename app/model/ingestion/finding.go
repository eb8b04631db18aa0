// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Finding is one rule match aggregated across an ingestion's events, built
// by the two-pass findings engine.
type Finding struct {
	ID                  uuid.UUID      `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	IngestionID         uuid.UUID      `gorm:"column:ingestion_id;type:char(36);index;uniqueIndex:uq_ingestion_rule" json:"ingestion_id"`
	RuleID              string         `gorm:"column:rule_id;uniqueIndex:uq_ingestion_rule" json:"rule_id"`
	Title               string         `gorm:"column:title" json:"title"`
	Severity            string         `gorm:"column:severity" json:"severity"`
	Confidence          float64        `gorm:"column:confidence" json:"confidence"`
	TotalOccurrences    int            `gorm:"column:total_occurrences" json:"total_occurrences"`
	MatchedFingerprints datatypes.JSON `gorm:"column:matched_fingerprints" json:"matched_fingerprints"`
	EvidenceEventIDs    datatypes.JSON `gorm:"column:evidence_event_ids" json:"evidence_event_ids"`
}

// TableName returns the database table name for Finding.
func (f *Finding) TableName() string {
	return "findings"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (f *Finding) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ReplaceForIngestion deletes any prior findings for ingestionID and inserts
// the freshly computed set, inside one transaction. The findings engine is
// expected to run end-to-end and replace its own output rather than merge
// with a previous run's rows.
//
// Parameters:
//   - db: GORM database client.
//   - ingestionID: ingestion the findings belong to.
//   - findings: freshly computed findings to persist.
//
// Returns:
//   - error: transaction error when delete or insert fails.
func ReplaceForIngestion(db *gorm.DB, ingestionID uuid.UUID, findings []Finding) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingestion_id = ?", ingestionID).Delete(&Finding{}).Error; err != nil {
			return fmt.Errorf("clear findings failed: %w", err)
		}
		if len(findings) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(findings, 100).Error; err != nil {
			return fmt.Errorf("insert findings failed: %w", err)
		}
		return nil
	})
}

// severityRankSQL mirrors the findings engine's in-memory severity rank
// (CRIT=4, HIGH=3, MED=2, LOW=1) as a SQL ordering expression.
const severityRankSQL = `CASE severity WHEN 'CRIT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MED' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END`

// ListByIngestion returns all findings for an ingestion, most severe first,
// ties broken by total occurrences descending.
func ListByIngestion(db *gorm.DB, ingestionID uuid.UUID) (findings []Finding, err error) {
	err = db.Where("ingestion_id = ?", ingestionID).
		Order(severityRankSQL + " desc").
		Order("total_occurrences desc").
		Find(&findings).Error
	return
}

// Get returns one finding by its primary key, scoped to ingestionID.
func Get(db *gorm.DB, ingestionID, findingID uuid.UUID) (*Finding, error) {
	var found *Finding
	err := db.Where("ingestion_id = ? AND id = ?", ingestionID, findingID).First(&found).Error
	return found, err
}
