// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package project defines the persistence model for organization projects.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a named ingestion scope owned by one organization.
type Project struct {
	ID        uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:char(36);index" json:"org_id"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name for Project.
func (p *Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Create inserts the current Project record.
func (p *Project) Create(db *gorm.DB) (id uuid.UUID, err error) {
	if err = db.Create(p).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create failed: %w", err)
	}
	return p.ID, nil
}

// First returns the first project matching non-zero fields of p. Scoping
// both project_id and org_id in the same query is how project-in-org
// membership is validated without a separate lookup.
func (p *Project) First(db *gorm.DB) (*Project, error) {
	var found *Project
	err := db.Where(p).First(&found).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return found, err
}

// ListByOrg returns all projects belonging to orgID.
func (p *Project) ListByOrg(db *gorm.DB, orgID uuid.UUID) (projects []Project, err error) {
	err = db.Where("org_id = ?", orgID).Order("created_at desc").Find(&projects).Error
	return
}
