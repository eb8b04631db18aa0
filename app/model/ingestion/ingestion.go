// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package ingestion defines persistence models for the log ingestion pipeline:
// Ingestion, LogEvent, Finding, and AiAnalysis.
package ingestion

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status values an Ingestion moves through: pending -> processing -> done,
// or processing -> failed. ProcessIngestion sets processing without checking
// the current status, so a repeated process_ingestion job also moves a done
// or failed ingestion back to processing.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// FindingStatus values track the second, independent findings-engine pass.
const (
	FindingStatusPending    = "pending"
	FindingStatusProcessing = "processing"
	FindingStatusDone       = "done"
	FindingStatusFailed     = "failed"
)

// SourceType values identify how raw log text reached the blob store.
const (
	SourceTypePaste  = "paste"
	SourceTypeUpload = "upload"
	SourceTypeBundle = "bundle"
)

// Ingestion is one submitted batch of raw log text moving through the
// parse -> fingerprint -> findings pipeline.
type Ingestion struct {
	ID            uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	ProjectID     uuid.UUID `gorm:"column:project_id;type:char(36);index" json:"project_id"`
	SourceType    string    `gorm:"column:source_type" json:"source_type"`
	Status        string    `gorm:"column:status" json:"status"`
	FindingStatus string    `gorm:"column:finding_status" json:"finding_status"`
	Error         string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the database table name for Ingestion.
func (i *Ingestion) TableName() string {
	return "ingestions"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (i *Ingestion) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Create inserts the current Ingestion record into database.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - uuid.UUID: primary key of the inserted record.
//   - error: wrapped create error when insertion fails.
func (i *Ingestion) Create(db *gorm.DB) (id uuid.UUID, err error) {
	if err = db.Create(i).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create failed: %w", err)
	}
	return i.ID, nil
}

// First returns the first ingestion matching non-zero fields of i.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - *Ingestion: first matched record.
//   - error: query error including gorm.ErrRecordNotFound when absent.
func (i *Ingestion) First(db *gorm.DB) (found *Ingestion, err error) {
	err = db.Where(i).First(&found).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return found, err
}

// ListByProject returns ingestions belonging to projectID, newest first.
func (i *Ingestion) ListByProject(db *gorm.DB, projectID uuid.UUID) (ingestions []Ingestion, err error) {
	err = db.Where("project_id = ?", projectID).Order("created_at desc").Find(&ingestions).Error
	return
}

// Updates updates selected fields of the current Ingestion by ID.
//
// Parameters:
//   - db: GORM database client.
//   - m: field-value map to update.
//
// Returns:
//   - error: wrapped update error when operation fails.
func (i *Ingestion) Updates(db *gorm.DB, m map[string]interface{}) (err error) {
	if err = db.Model(&Ingestion{}).Where("id = ?", i.ID).Updates(m).Error; err != nil {
		return fmt.Errorf("updates failed: %w", err)
	}
	return
}

// Delete removes the current Ingestion and cascades to its events, findings,
// and AI analyses. The schema carries no FK-level cascade, so the children
// are deleted explicitly, inside one transaction, before the parent row.
func (i *Ingestion) Delete(db *gorm.DB) (err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingestion_id = ?", i.ID).Delete(&LogEvent{}).Error; err != nil {
			return fmt.Errorf("delete log events failed: %w", err)
		}
		if err := tx.Where("ingestion_id = ?", i.ID).Delete(&Finding{}).Error; err != nil {
			return fmt.Errorf("delete findings failed: %w", err)
		}
		if err := tx.Where("ingestion_id = ?", i.ID).Delete(&AiAnalysis{}).Error; err != nil {
			return fmt.Errorf("delete analyses failed: %w", err)
		}
		if err := tx.Delete(i).Error; err != nil {
			return fmt.Errorf("delete ingestion failed: %w", err)
		}
		return nil
	})
	return
}
