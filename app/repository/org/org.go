// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package org backs the HTTP org controller: creating organizations and
// checking org membership used to scope project and ingestion access.
package org

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	orgModel "github.com/sk-labs/logintel/app/model/org"
)

type (
	// Repo defines organization persistence operations used by the HTTP layer.
	Repo interface {
		Create(name string, ownerID uuid.UUID) (*orgModel.Organization, error)
		IsMember(orgID, userID uuid.UUID) (bool, error)
	}

	repo struct {
		db *gorm.DB
	}
)

// NewRepo creates a Repo over the given database connection.
func NewRepo(db *gorm.DB) Repo {
	return &repo{db: db}
}

// Create inserts a new organization and adds ownerID as its admin member in
// a single transaction, mirroring auth.Repo.CreateOrgWithOwner's shape for
// orgs created outside of registration.
func (r *repo) Create(name string, ownerID uuid.UUID) (*orgModel.Organization, error) {
	o := &orgModel.Organization{Name: name}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := o.Create(tx); err != nil {
			return err
		}

		member := &orgModel.Member{OrgID: o.ID, UserID: ownerID, Role: "admin"}
		_, err := member.Create(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// IsMember reports whether userID belongs to orgID.
func (r *repo) IsMember(orgID, userID uuid.UUID) (bool, error) {
	m := &orgModel.Member{OrgID: orgID, UserID: userID}

	found, err := m.First(r.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return found != nil, nil
}
