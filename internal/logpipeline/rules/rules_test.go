// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_MatchesExpectedRule(t *testing.T) {
	cases := []struct {
		message string
		ruleID  string
	}{
		{"psql: connection refused", "db_connection_failure"},
		{"FATAL: password authentication failed for user \"app\"", "db_auth_failure"},
		{"429 Too Many Requests", "http_rate_limited"},
		{"jwt expired at 2024-01-01", "auth_token_expired"},
		{"login failed: wrong password", "invalid_credentials"},
		{"java.lang.OutOfMemoryError: Java heap space", "oom_memory"},
		{"write failed: no space left on device", "disk_full"},
		{"x509: certificate has expired or is not yet valid", "tls_cert_failure"},
		{"504 Gateway Timeout from upstream", "upstream_timeout"},
		{"stripe: charge declined", "payment_failure"},
	}

	for _, tc := range cases {
		t.Run(tc.ruleID, func(t *testing.T) {
			matches := Apply(tc.message)
			var ids []string
			for _, m := range matches {
				ids = append(ids, m.RuleID)
			}
			assert.Contains(t, ids, tc.ruleID)
		})
	}
}

func TestApply_NoMatchForBenignMessage(t *testing.T) {
	assert.Empty(t, Apply("request completed in 12ms"))
}

func TestApply_ReturnsAllMatchingRules(t *testing.T) {
	// "timeout" participates in both upstream_timeout and could overlap with
	// other rules; construct a message matching two distinct catalogue rules.
	matches := Apply("connection timed out, too many requests")
	var ids []string
	for _, m := range matches {
		ids = append(ids, m.RuleID)
	}
	assert.Contains(t, ids, "db_connection_failure")
	assert.Contains(t, ids, "http_rate_limited")
}

func TestApplyGeneric(t *testing.T) {
	assert.True(t, ApplyGeneric("panic: runtime error: index out of range"))
	assert.True(t, ApplyGeneric("unhandled exception in worker"))
	assert.False(t, ApplyGeneric("request completed successfully"))
}
