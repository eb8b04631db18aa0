// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package org defines persistence models for organizations and their members.
package org

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// Organization groups projects and members under one tenant.
	Organization struct {
		ID        uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
		Name      string    `gorm:"column:name" json:"name"`
		CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	}

	// Member links a user to an organization with a role.
	Member struct {
		ID        uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
		OrgID     uuid.UUID `gorm:"column:org_id;type:char(36);uniqueIndex:uq_org_user" json:"org_id"`
		UserID    uuid.UUID `gorm:"column:user_id;type:char(36);uniqueIndex:uq_org_user" json:"user_id"`
		Role      string    `gorm:"column:role" json:"role"`
		CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	}
)

// TableName returns the database table name for Organization.
func (o *Organization) TableName() string {
	return "organizations"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Create inserts the current Organization record.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - uuid.UUID: primary key of the inserted record.
//   - error: wrapped create error when insertion fails.
func (o *Organization) Create(db *gorm.DB) (id uuid.UUID, err error) {
	if err = db.Create(o).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create failed: %w", err)
	}
	return o.ID, nil
}

// First returns the first organization matching non-zero fields of o.
func (o *Organization) First(db *gorm.DB) (*Organization, error) {
	var found *Organization
	err := db.Where(o).First(&found).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return found, err
}

// TableName returns the database table name for Member.
func (m *Member) TableName() string {
	return "organization_members"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Create inserts the current Member record.
func (m *Member) Create(db *gorm.DB) (id uuid.UUID, err error) {
	if err = db.Create(m).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create failed: %w", err)
	}
	return m.ID, nil
}

// First returns the first membership matching non-zero fields of m. Used by
// the HTTP layer to check an org_id/user_id pair is a valid membership.
func (m *Member) First(db *gorm.DB) (*Member, error) {
	var found *Member
	err := db.Where(m).First(&found).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return found, err
}
