// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package project backs the HTTP project controller: creating and listing
// projects scoped to an organization.
package project

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	projectModel "github.com/sk-labs/logintel/app/model/project"
)

type (
	// Repo defines project persistence operations used by the HTTP layer.
	Repo interface {
		Create(orgID uuid.UUID, name string) (*projectModel.Project, error)
		GetScoped(projectID, orgID uuid.UUID) (*projectModel.Project, error)
		ListByOrg(orgID uuid.UUID) ([]projectModel.Project, error)
	}

	repo struct {
		db *gorm.DB
	}
)

// NewRepo creates a Repo over the given database connection.
func NewRepo(db *gorm.DB) Repo {
	return &repo{db: db}
}

// Create inserts a new project under orgID.
func (r *repo) Create(orgID uuid.UUID, name string) (*projectModel.Project, error) {
	p := &projectModel.Project{OrgID: orgID, Name: name}
	if _, err := p.Create(r.db); err != nil {
		return nil, err
	}
	return p, nil
}

// GetScoped returns the project only if it belongs to orgID, nil otherwise.
func (r *repo) GetScoped(projectID, orgID uuid.UUID) (*projectModel.Project, error) {
	p := &projectModel.Project{ID: projectID, OrgID: orgID}
	return p.First(r.db)
}

// ListByOrg returns every project belonging to orgID.
func (r *repo) ListByOrg(orgID uuid.UUID) ([]projectModel.Project, error) {
	p := &projectModel.Project{}
	return p.ListByOrg(r.db, orgID)
}
