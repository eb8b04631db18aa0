// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogEvent is one parsed record out of an ingestion's raw log text, in
// original document order (seq).
type LogEvent struct {
	ID              uuid.UUID      `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	IngestionID     uuid.UUID      `gorm:"column:ingestion_id;type:char(36);uniqueIndex:uq_ingestion_seq,priority:1" json:"ingestion_id"`
	Seq             int            `gorm:"column:seq;uniqueIndex:uq_ingestion_seq,priority:2" json:"seq"`
	Ts              sql.NullTime   `gorm:"column:ts" json:"ts"`
	TsRaw           string         `gorm:"column:ts_raw" json:"ts_raw"`
	Level           string         `gorm:"column:level;index:idx_ingestion_level" json:"level"`
	Service         string         `gorm:"column:service" json:"service"`
	Message         string         `gorm:"column:message" json:"message"`
	Raw             string         `gorm:"column:raw" json:"raw"`
	Attrs           datatypes.JSON `gorm:"column:attrs" json:"attrs"`
	ParseKind       string         `gorm:"column:parse_kind" json:"parse_kind"`
	ParseConfidence float64        `gorm:"column:parse_confidence" json:"parse_confidence"`
	Fingerprint     string         `gorm:"column:fingerprint;index:idx_ingestion_fingerprint" json:"fingerprint"`
}

// TableName returns the database table name for LogEvent.
func (l *LogEvent) TableName() string {
	return "log_events"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (l *LogEvent) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// CreateBatch inserts a batch of parsed log events in one statement.
//
// Parameters:
//   - db: GORM database client.
//   - events: parsed events to persist, already carrying seq and fingerprint.
//
// Returns:
//   - error: wrapped create error when insertion fails.
func CreateBatch(db *gorm.DB, events []LogEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := db.CreateInBatches(events, 500).Error; err != nil {
		return fmt.Errorf("batch create failed: %w", err)
	}
	return nil
}
