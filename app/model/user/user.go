// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package user defines persistence models for account identities.
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can belong to one or more organizations.
type User struct {
	ID           uuid.UUID `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Name         string    `gorm:"column:name" json:"name"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the database table name for User.
//
// Returns:
//   - string: physical table name in MySQL.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when one is not already set.
//
// Parameters:
//   - tx: GORM transaction in progress.
//
// Returns:
//   - error: always nil; kept for GORM hook signature compatibility.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// First queries and returns the first user record matching non-zero fields.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - *User: first matched user record.
//   - error: query error including gorm.ErrRecordNotFound when absent.
func (u *User) First(db *gorm.DB) (user *User, err error) {
	err = db.Where(u).First(&user).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return user, err
}

// Create inserts the current User record into database.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - uuid.UUID: primary key of the inserted record.
//   - error: wrapped create error when insertion fails.
func (u *User) Create(db *gorm.DB) (id uuid.UUID, err error) {
	if err = db.Create(u).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create failed: %w", err)
	}

	return u.ID, nil
}
