// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_IgnoresVolatileTokens(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"uuid", "failed for request 123e4567-e89b-12d3-a456-426614174000", "failed for request 99999999-9999-9999-9999-999999999999"},
		{"ipv4", "connection refused 10.0.0.1", "connection refused 10.0.0.2"},
		{"hex", "fault at 0xdeadbeef", "fault at 0xabc12345"},
		{"email", "notify alice@example.com", "notify bob@example.org"},
		{"url", "fetch failed https://example.com/a/b?x=1", "fetch failed https://other.test/path"},
		{"long_token", "session abcdefghijklmnopqrstuvwxyz012345", "session zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"},
		{"iso_timestamp", "event at 2024-01-01T10:00:00Z", "event at 2024-06-15T23:59:59Z"},
		{"long_number", "order 123456789 failed", "order 987654321 failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, Fingerprint(tc.a), Fingerprint(tc.b))
		})
	}
}

func TestFingerprint_DistinctMessagesDiffer(t *testing.T) {
	assert.NotEqual(t, Fingerprint("connection refused"), Fingerprint("disk full"))
}

func TestFingerprint_IsStableLength(t *testing.T) {
	assert.Len(t, Fingerprint("anything"), 40)
}
