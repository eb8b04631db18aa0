// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package insight

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_GroupIncludesHeadingsAndContext(t *testing.T) {
	req := Request{
		Kind:   KindGroup,
		Fields: map[string]interface{}{"fingerprint": "abc123", "count": 42},
		Events: []Event{{Seq: 1, Level: "error", Message: "disk full"}},
	}

	msgs, err := BuildMessages(req)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "## Summary")
	assert.Contains(t, msgs[1].Content, "## Likely causes")
	assert.Contains(t, msgs[1].Content, "abc123")
	assert.Contains(t, msgs[1].Content, "disk full")
}

func TestBuildMessages_FindingIncludesHeadings(t *testing.T) {
	req := Request{
		Kind:   KindFinding,
		Fields: map[string]interface{}{"rule_id": "generic_error"},
		Events: []Event{{Seq: 7, Level: "warn", Message: "retrying"}},
	}

	msgs, err := BuildMessages(req)
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "## What this finding means")
	assert.Contains(t, msgs[1].Content, "## Fix suggestions")
	assert.Contains(t, msgs[1].Content, "generic_error")
}

func TestBuildMessages_UnknownKindErrors(t *testing.T) {
	_, err := BuildMessages(Request{Kind: "bogus"})
	assert.Error(t, err)
}

func TestBuildMessages_FieldsEventsKeyIsIgnoredInFavorOfEvents(t *testing.T) {
	req := Request{
		Kind:   KindGroup,
		Fields: map[string]interface{}{"events": "should not leak through"},
		Events: []Event{{Seq: 1, Level: "info", Message: "real event"}},
	}

	msgs, err := BuildMessages(req)
	require.NoError(t, err)

	// The context embedded in the prompt is JSON; decode and check "events"
	// reflects the structured Events slice, not the Fields override.
	content := msgs[1].Content
	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	require.GreaterOrEqual(t, jsonEnd, jsonStart)

	var decoded struct {
		Events []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(content[jsonStart:jsonEnd+1]), &decoded))
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "real event", decoded.Events[0].Message)
}
