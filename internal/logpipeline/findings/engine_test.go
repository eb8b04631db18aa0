// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_GroupsPassAggregatesByRule(t *testing.T) {
	groups := []Group{
		{Fingerprint: "fp-a", Count: 40, LatestMessage: "connection refused to db"},
		{Fingerprint: "fp-b", Count: 10, LatestMessage: "connection timed out"},
		{Fingerprint: "fp-c", Count: 5, LatestMessage: "request completed"},
	}

	evidence := func(fp string) ([]string, error) {
		return []string{fp + "-ev1", fp + "-ev2"}, nil
	}

	out, err := Run(groups, nil, evidence, DefaultCaps)
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	assert.Equal(t, "db_connection_failure", f.RuleID)
	assert.Equal(t, 50, f.TotalOccurrences)
	assert.Len(t, f.MatchedFingerprints, 2)
	assert.Contains(t, f.EvidenceEventIDs, "fp-a-ev1")
	assert.Contains(t, f.EvidenceEventIDs, "fp-b-ev1")
}

func TestRun_ErrorsPassFallsBackToGeneric(t *testing.T) {
	events := []ErrorEvent{
		{ID: "e1", Fingerprint: "fp-x", Level: "CRITICAL", Message: "worker panic: goroutine exited"},
		{ID: "e2", Fingerprint: "fp-y", Level: "ERROR", Message: "nothing interesting happened here"},
	}

	out, err := Run(nil, events, noEvidence, DefaultCaps)
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	assert.Equal(t, "generic_error", f.RuleID)
	assert.Equal(t, "CRIT", f.Severity)
	assert.Equal(t, 1, f.TotalOccurrences)
	assert.Equal(t, []string{"e1"}, f.EvidenceEventIDs)
}

func TestRun_ErrorsPassDedupesFingerprintsAndEvidence(t *testing.T) {
	events := []ErrorEvent{
		{ID: "e1", Fingerprint: "fp-z", Level: "ERROR", Message: "401 unauthorized"},
		{ID: "e2", Fingerprint: "fp-z", Level: "ERROR", Message: "401 unauthorized"},
		{ID: "e3", Fingerprint: "fp-z", Level: "ERROR", Message: "401 unauthorized"},
	}

	out, err := Run(nil, events, noEvidence, DefaultCaps)
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	assert.Equal(t, "invalid_credentials", f.RuleID)
	assert.Equal(t, 3, f.TotalOccurrences)
	assert.Len(t, f.MatchedFingerprints, 1)
	assert.Len(t, f.EvidenceEventIDs, 3)
}

func TestRun_SortsBySeverityThenOccurrences(t *testing.T) {
	groups := []Group{
		{Fingerprint: "fp-1", Count: 100, LatestMessage: "login failed: wrong password"},
		{Fingerprint: "fp-2", Count: 1, LatestMessage: "java.lang.OutOfMemoryError: Java heap space"},
	}

	out, err := Run(groups, nil, noEvidence, DefaultCaps)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "oom_memory", out[0].RuleID)
	assert.Equal(t, "invalid_credentials", out[1].RuleID)
}

func TestRun_RespectsEvidenceCap(t *testing.T) {
	var events []ErrorEvent
	for i := 0; i < 20; i++ {
		events = append(events, ErrorEvent{
			ID:          string(rune('a' + i)),
			Fingerprint: "fp-" + string(rune('a'+i)),
			Level:       "ERROR",
			Message:     "panic: runtime error",
		})
	}

	caps := Caps{MaxEvidencePerRule: 12, MaxFingerprintsInSummary: 10}
	out, err := Run(nil, events, noEvidence, caps)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.LessOrEqual(t, len(out[0].EvidenceEventIDs), 12)
	assert.LessOrEqual(t, len(out[0].MatchedFingerprints), 10)
	assert.Equal(t, 20, out[0].TotalOccurrences)
}

func noEvidence(string) ([]string, error) { return nil, nil }
