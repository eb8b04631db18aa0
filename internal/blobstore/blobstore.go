// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package blobstore persists raw ingestion log text to the filesystem, one
// file per ingestion.
package blobstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no blob exists for the given id.
var ErrNotFound = errors.New("blobstore: ingestion blob not found")

type (
	// Store saves and retrieves raw ingestion text by ingestion id.
	Store interface {
		// Put writes the raw text for ingestionID, overwriting any prior blob.
		Put(ingestionID uuid.UUID, text string) error
		// Get reads the raw text previously written for ingestionID.
		Get(ingestionID uuid.UUID) (string, error)
		// Delete removes the blob for ingestionID, if present.
		Delete(ingestionID uuid.UUID) error
	}

	// fsStore is a Store backed by one file per ingestion under root.
	fsStore struct {
		root string
	}
)

// New creates a filesystem-backed Store rooted at root. The directory is
// created if it does not already exist.
//
// Parameters:
//   - root: directory that holds one file per ingestion id.
//
// Returns:
//   - Store: initialized blob store.
//   - error: returned when root cannot be created.
func New(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) path(ingestionID uuid.UUID) string {
	return filepath.Join(s.root, ingestionID.String()+".txt")
}

// Put writes text to the blob file for ingestionID.
func (s *fsStore) Put(ingestionID uuid.UUID, text string) error {
	if err := os.WriteFile(s.path(ingestionID), []byte(text), 0o644); err != nil {
		return fmt.Errorf("blobstore: write %s: %w", ingestionID, err)
	}
	return nil
}

// Get reads the blob file for ingestionID, returning ErrNotFound when absent.
func (s *fsStore) Get(ingestionID uuid.UUID) (string, error) {
	data, err := os.ReadFile(s.path(ingestionID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("blobstore: read %s: %w", ingestionID, err)
	}
	return string(data), nil
}

// Delete removes the blob file for ingestionID. Deleting an absent blob is
// not an error, matching the cascading delete semantics of Ingestion.Delete.
func (s *fsStore) Delete(ingestionID uuid.UUID) error {
	if err := os.Remove(s.path(ingestionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete %s: %w", ingestionID, err)
	}
	return nil
}
