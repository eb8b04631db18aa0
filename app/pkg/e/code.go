// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package e defines business and HTTP error codes used in API responses.
package e

const (
	// Generic status codes.
	BUSY          = -1
	SUCCESS       = 0
	ERROR         = 500
	InvalidParams = 400

	// User authentication and session errors.
	Unauthorized         = 10001
	AuthorizationExpired = 10002
	AuthorizationFail    = 10003
	UserNotFound         = 10004
	UserAlreadyExists    = 10005
	InvalidCredentials   = 10006

	// Organization and project scoping errors.
	OrgNotFound        = 11001
	NotOrgMember        = 11002
	ProjectNotFound     = 11003
	ProjectAlreadyExists = 11004

	// Ingestion pipeline errors.
	IngestionNotFound    = 12001
	IngestionNotReady    = 12002
	IngestionConflict    = 12003
	BlobNotFound         = 12004
	BlobTooLarge         = 12005
	FindingNotFound      = 12006
	FingerprintNotFound  = 12007
	InsightUnavailable   = 12008

	// Rate limiting.
	RateLimited = 12900
)
