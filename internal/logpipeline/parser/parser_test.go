// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MultilineJavaException(t *testing.T) {
	text := "2024-01-01T10:00:00Z ERROR svc-a Request failed\n" +
		"\tat com.example.Service.call(Service.java:42)\n" +
		"Caused by: java.lang.NullPointerException: user was null\n" +
		"\tat com.example.Repo.find(Repo.java:17)\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ERROR", rec.Level)
	assert.Equal(t, "svc-a", rec.Service)
	assert.Contains(t, rec.Signature, "Caused by: java.lang.NullPointerException")
}

func TestParse_PythonTraceback(t *testing.T) {
	text := "2024-01-01T10:00:01Z ERROR svc-b Traceback (most recent call last):\n" +
		"  File \"app.py\", line 10, in handle\n" +
		"    raise ValueError(\"bad input\")\n" +
		"ValueError: bad input\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ERROR", rec.Level)
	assert.Contains(t, rec.Signature, "ValueError: bad input")
}

func TestParse_JSONLine(t *testing.T) {
	text := `{"ts":"2024-01-01T10:00:00Z","level":"error","service":"svc-c","message":"db timeout"}` + "\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ParseKindJSON, rec.ParseKind)
	assert.InDelta(t, 0.95, rec.ParseConfidence, 0.0001)
	assert.Equal(t, "ERROR", rec.Level)
	assert.Equal(t, "svc-c", rec.Service)
	assert.Equal(t, "db timeout", rec.Message)
	assert.Equal(t, "2024-01-01T10:00:00Z", rec.TsRaw)
	require.NotNil(t, rec.Ts)
}

func TestParse_JSONLineMissingMessageFallsBackToRaw(t *testing.T) {
	text := `{"level":"info","service":"svc-d"}` + "\n"

	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, records[0].Raw, records[0].Message)
}

func TestParse_TextLineExtractsTimestampLevelService(t *testing.T) {
	text := "2024-03-02 08:15:00 WARNING svc-e: disk usage high\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ParseKindText, rec.ParseKind)
	assert.Equal(t, "WARN", rec.Level)
	assert.Equal(t, "svc-e", rec.Service)
	assert.Equal(t, "disk usage high", rec.Message)
	assert.Equal(t, "2024-03-02 08:15:00", rec.TsRaw)
}

func TestParse_BracketTimestampAndServiceTag(t *testing.T) {
	text := "[2024-01-01 00:00:00] [payments] checkout failed\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "payments", rec.Service)
	assert.Equal(t, "checkout failed", rec.Message)
}

func TestParse_UnparseableLineDegradesToLowConfidenceText(t *testing.T) {
	text := "just some unstructured noise with no markers\n"

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ParseKindText, rec.ParseKind)
	assert.Equal(t, "", rec.Level)
	assert.Equal(t, "", rec.Service)
	assert.Less(t, rec.ParseConfidence, 0.5)
}

func TestParse_MultipleIndependentRecords(t *testing.T) {
	text := "2024-01-01T10:00:00Z INFO svc-a started\n" +
		"2024-01-01T10:00:01Z ERROR svc-b crashed\n"

	records := Parse(text)
	require.Len(t, records, 2)
	assert.Equal(t, "INFO", records[0].Level)
	assert.Equal(t, "ERROR", records[1].Level)
}

func TestParse_BlankLinesExtendCurrentRecord(t *testing.T) {
	text := "2024-01-01T10:00:00Z ERROR svc-a failure line one\n" +
		"\n" +
		"still part of the same record\n"

	records := Parse(text)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Raw, "still part of the same record")
}

func TestNormalizeLevel_FoldsWarningOnly(t *testing.T) {
	assert.Equal(t, "WARN", normalizeLevel("warning"))
	assert.Equal(t, "WARN", normalizeLevel("WARN"))
	assert.Equal(t, "FATAL", normalizeLevel("fatal"))
	assert.Equal(t, "TRACE", normalizeLevel("trace"))
}

func TestTruncateMessage_CutsLongMessages(t *testing.T) {
	long := make([]byte, maxMessageLen+50)
	for i := range long {
		long[i] = 'x'
	}
	out := truncateMessage(string(long))
	assert.Less(t, len(out), len(long))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestParse_NeverErrorsOnEmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
}
