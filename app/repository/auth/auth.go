// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package auth implements auth-domain repository access methods: user
// lookup/creation and the default organization/membership created for a
// freshly registered user.
package auth

import (
	"github.com/google/uuid"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/model/org"
	"github.com/sk-labs/logintel/app/model/user"
)

type (
	// Repo defines persistence operations for user registration and login.
	Repo interface {
		GetByEmail(email string) (*user.User, error)
		GetByID(id uuid.UUID) (*user.User, error)
		CreateUser(u *user.User) (uuid.UUID, error)
		CreateOrgWithOwner(orgName string, userID uuid.UUID) (*org.Organization, error)
		ListOrgsForUser(userID uuid.UUID) ([]org.Organization, error)
	}

	// repo is a GORM-backed Repo implementation.
	repo struct {
		redis *redis.Manager
		db    *gorm.DB
	}
)

// GetByEmail returns the user with the given email, or gorm.ErrRecordNotFound.
func (r *repo) GetByEmail(email string) (*user.User, error) {
	u := &user.User{Email: email}
	return u.First(r.db)
}

// GetByID returns the user with the given id, or gorm.ErrRecordNotFound.
func (r *repo) GetByID(id uuid.UUID) (*user.User, error) {
	u := &user.User{ID: id}
	return u.First(r.db)
}

// CreateUser persists a new user record.
func (r *repo) CreateUser(u *user.User) (uuid.UUID, error) {
	return u.Create(r.db)
}

// ListOrgsForUser returns every organization userID belongs to, joining
// through organization_members.
func (r *repo) ListOrgsForUser(userID uuid.UUID) ([]org.Organization, error) {
	var orgs []org.Organization
	err := r.db.Joins("JOIN organization_members ON organization_members.org_id = organizations.id").
		Where("organization_members.user_id = ?", userID).
		Order("organizations.created_at desc").
		Find(&orgs).Error
	return orgs, err
}

// CreateOrgWithOwner creates a new organization and adds userID as its admin
// member in one transaction, mirroring the register flow's
// create_organization + add_user_to_organization pairing.
func (r *repo) CreateOrgWithOwner(orgName string, userID uuid.UUID) (*org.Organization, error) {
	o := &org.Organization{Name: orgName}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := o.Create(tx); err != nil {
			return err
		}

		member := &org.Member{OrgID: o.ID, UserID: userID, Role: "admin"}
		_, err := member.Create(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// NewRepo creates a Repo backed by GORM and Redis dependencies.
func NewRepo(db *gorm.DB, redis *redis.Manager) Repo {
	return &repo{redis: redis, db: db}
}
