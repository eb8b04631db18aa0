// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package parser turns an opaque blob of mixed-format log text into an
// ordered list of records, each carrying best-effort timestamp, service,
// level, message, and a signature string for the fingerprinter. Parsing is
// pure and deterministic: no I/O, no clock reads, never an error return —
// malformed input degrades to a low-confidence text record instead of
// failing the caller.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	ParseKindJSON = "json"
	ParseKindText = "text"

	maxMessageLen = 500
)

// Record is one parsed log line or multi-line group (stack traces, Python
// tracebacks) out of a raw ingestion blob.
type Record struct {
	Raw             string
	TsRaw           string
	Ts              *time.Time
	Service         string
	Level           string
	Message         string
	Attrs           map[string]interface{}
	ParseKind       string
	ParseConfidence float64
	Signature       string
}

var levelTokens = []string{"CRITICAL", "WARNING", "ERROR", "DEBUG", "TRACE", "FATAL", "INFO", "WARN"}

var (
	bracketTimestampRe = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2}[^\]]*)]`)
	isoLeadingRe        = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2}|\s*UTC)?)`)
	levelTokenRe        = regexp.MustCompile(`(?i)^\[?(INFO|WARN|WARNING|ERROR|DEBUG|TRACE|CRITICAL|FATAL)]?\b:?`)
	jsonLineRe          = regexp.MustCompile(`^\s*\{.*}\s*$`)

	serviceKVRe     = regexp.MustCompile(`^service=(\S+)\s*`)
	serviceBracketRe = regexp.MustCompile(`^\[([A-Za-z0-9][A-Za-z0-9_.\-]{0,63})]\s*`)
	servicePrefixRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_.\-]{1,63}):\s*`)
	serviceNextTokenRe = regexp.MustCompile(`^(\S+)\s+`)

	exceptionLineRe = regexp.MustCompile(`\w+(Error|Exception)(:\s.*)?$`)
	causedByRe      = regexp.MustCompile(`(?i)Caused by:`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var jsonTimestampKeys = []string{"ts", "time", "timestamp", "@timestamp", "datetime"}
var jsonLevelKeys = []string{"level", "severity", "log.level"}
var jsonServiceKeys = []string{"service", "service_name", "svc", "app", "component", "logger", "source"}
var jsonMessageKeys = []string{"message", "msg", "event"}

// Parse splits raw ingestion text into records and extracts fields from
// each one. It never returns an error: every line is represented by at
// least a zero-confidence text record.
func Parse(text string) []Record {
	groups := groupIntoRecords(text)

	records := make([]Record, 0, len(groups))
	for _, lines := range groups {
		records = append(records, extractRecord(lines))
	}
	return records
}

// groupIntoRecords partitions raw text into per-record line groups using
// the continuation/new-record predicate pair.
func groupIntoRecords(text string) [][]string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var groups [][]string
	var current []string

	for _, line := range lines {
		switch {
		case len(current) == 0:
			current = append(current, line)
		case isContinuation(line):
			current = append(current, line)
		case isNewRecordStart(line):
			groups = append(groups, current)
			current = []string{line}
		default:
			// Neither a continuation marker nor a new-record start; lines
			// like this (including blank lines) extend the current record.
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// isContinuation reports whether line extends the previous record.
func isContinuation(line string) bool {
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return true
	}
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "at "):
		return true
	case strings.Contains(line, "Caused by:"):
		return true
	case strings.HasPrefix(trimmed, "Traceback"):
		return true
	case strings.HasPrefix(trimmed, `File "`):
		return true
	case strings.HasPrefix(trimmed, "..."):
		return true
	}
	return false
}

// isNewRecordStart reports whether line begins a new record.
func isNewRecordStart(line string) bool {
	if bracketTimestampRe.MatchString(line) {
		return true
	}
	if isoLeadingRe.MatchString(line) {
		return true
	}
	if levelTokenRe.MatchString(line) {
		return true
	}
	if jsonLineRe.MatchString(line) {
		return true
	}
	return false
}

// extractRecord builds one Record out of its grouped raw lines, trying the
// JSON path first and falling back to the text path.
func extractRecord(lines []string) Record {
	raw := strings.Join(lines, "\n")

	if rec, ok := extractJSON(lines, raw); ok {
		return rec
	}

	return extractText(lines, raw)
}

// extractJSON attempts to parse the record (possibly accumulating lines
// until a closing brace) as a single JSON object.
func extractJSON(lines []string, raw string) (Record, bool) {
	firstNonEmpty := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			firstNonEmpty = i
			break
		}
	}
	if firstNonEmpty == -1 {
		return Record{}, false
	}

	var acc strings.Builder
	for i := firstNonEmpty; i < len(lines); i++ {
		if acc.Len() > 0 {
			acc.WriteByte('\n')
		}
		acc.WriteString(lines[i])

		candidate := strings.TrimSpace(acc.String())
		if !strings.HasPrefix(candidate, "{") {
			return Record{}, false
		}

		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return buildJSONRecord(obj, raw), true
		}
	}
	return Record{}, false
}

// buildJSONRecord lifts the recognized field set out of a decoded JSON log
// line, storing the full object in Attrs regardless.
func buildJSONRecord(obj map[string]interface{}, raw string) Record {
	rec := Record{
		Raw:             raw,
		Attrs:           obj,
		ParseKind:       ParseKindJSON,
		ParseConfidence: 0.95,
	}

	if v, ok := lookupAny(obj, jsonTimestampKeys); ok {
		rec.TsRaw = fmt.Sprintf("%v", v)
		rec.Ts = parseTimestamp(rec.TsRaw)
	}
	if v, ok := lookupAny(obj, jsonLevelKeys); ok {
		rec.Level = normalizeLevel(fmt.Sprintf("%v", v))
	}
	if v, ok := lookupAny(obj, jsonServiceKeys); ok {
		rec.Service = fmt.Sprintf("%v", v)
	}
	if v, ok := lookupAny(obj, jsonMessageKeys); ok {
		rec.Message = truncateMessage(fmt.Sprintf("%v", v))
	} else {
		rec.Message = truncateMessage(raw)
	}

	rec.Signature = rec.Message
	if rec.Signature == "" {
		rec.Signature = raw
	}

	return rec
}

// lookupAny returns the first present value among keys, supporting one
// level of dotted-path lookup (e.g. "log.level").
func lookupAny(obj map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			return v, true
		}
		if dot := strings.Index(key, "."); dot > 0 {
			outer, inner := key[:dot], key[dot+1:]
			if nested, ok := obj[outer].(map[string]interface{}); ok {
				if v, ok := nested[inner]; ok {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// extractText peels timestamp, level, and service off the record's header
// line, treating whatever remains as the message.
func extractText(lines []string, raw string) Record {
	header := lines[0]

	tsRaw, tsRemainder, tsConf := extractTimestamp(header)
	level, lvlRemainder, lvlConf := extractLevel(tsRemainder)
	service, svcRemainder, svcConf := extractService(lvlRemainder, tsConf >= 0.85 && lvlConf >= 0.85)

	message := truncateMessage(strings.TrimSpace(svcRemainder))

	rec := Record{
		Raw:             raw,
		TsRaw:           tsRaw,
		Service:         service,
		Level:           level,
		Message:         message,
		ParseKind:       ParseKindText,
		ParseConfidence: 0.45*tsConf + 0.35*lvlConf + 0.20*svcConf,
	}
	if tsRaw != "" {
		rec.Ts = parseTimestamp(tsRaw)
	}
	rec.Signature = buildSignature(&rec, lines)

	return rec
}

// extractTimestamp looks for a bracketed or leading ISO-like timestamp at
// the start of the header line.
func extractTimestamp(header string) (value, remainder string, confidence float64) {
	if m := bracketTimestampRe.FindStringSubmatchIndex(header); m != nil {
		value = header[m[2]:m[3]]
		remainder = strings.TrimSpace(header[m[1]:])
		return value, remainder, 0.9
	}
	if m := isoLeadingRe.FindStringSubmatchIndex(header); m != nil {
		value = header[m[2]:m[3]]
		remainder = strings.TrimSpace(header[m[1]:])
		return value, remainder, 0.9
	}
	return "", header, 0
}

// extractLevel looks for a leading, optionally bracketed level token.
func extractLevel(remainder string) (level, rest string, confidence float64) {
	if m := levelTokenRe.FindStringSubmatchIndex(remainder); m != nil {
		token := remainder[m[2]:m[3]]
		rest = strings.TrimSpace(remainder[m[1]:])
		return normalizeLevel(token), rest, 0.9
	}
	return "", remainder, 0
}

// extractService tries, in order: key=value form, a non-level/date bracket
// tag, a "name: message" prefix, and (only when timestamp and level were
// both found with high confidence) a bare next-token guess.
func extractService(remainder string, tryNextToken bool) (service, rest string, confidence float64) {
	if m := serviceKVRe.FindStringSubmatchIndex(remainder); m != nil {
		return remainder[m[2]:m[3]], strings.TrimSpace(remainder[m[1]:]), 0.85
	}
	if m := serviceBracketRe.FindStringSubmatchIndex(remainder); m != nil {
		tag := remainder[m[2]:m[3]]
		if !looksLikeLevel(tag) && !looksLikeDate(tag) {
			return tag, strings.TrimSpace(remainder[m[1]:]), 0.60
		}
	}
	if m := servicePrefixRe.FindStringSubmatchIndex(remainder); m != nil {
		name := remainder[m[2]:m[3]]
		return name, strings.TrimSpace(remainder[m[1]:]), 0.65
	}
	if tryNextToken {
		if m := serviceNextTokenRe.FindStringSubmatchIndex(remainder); m != nil {
			token := remainder[m[2]:m[3]]
			if !looksLikeLevel(token) && !looksLikeDate(token) && !looksLikeHTTPVerb(token) {
				return token, strings.TrimSpace(remainder[m[1]:]), 0.70
			}
		}
	}
	return "", remainder, 0
}

func looksLikeLevel(s string) bool {
	upper := strings.ToUpper(strings.Trim(s, "[]:"))
	for _, l := range levelTokens {
		if upper == l {
			return true
		}
	}
	return false
}

func looksLikeDate(s string) bool {
	return isoLeadingRe.MatchString(s) || bracketTimestampRe.MatchString("["+s+"]")
}

func looksLikeHTTPVerb(s string) bool {
	switch strings.ToUpper(strings.Trim(s, ":")) {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// normalizeLevel upper-cases a level token and folds WARNING into WARN.
// spec.md states this single special case explicitly; additional foldings
// seen elsewhere (FATAL->CRITICAL, TRACE->DEBUG) are not applied here, see
// DESIGN.md Open Question 1.
func normalizeLevel(level string) string {
	upper := strings.ToUpper(strings.TrimSpace(level))
	if upper == "WARNING" {
		return "WARN"
	}
	return upper
}

// truncateMessage bounds message length, appending an ellipsis when cut.
func truncateMessage(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen-1] + "…"
}

// parseTimestamp tries each supported layout in turn, returning nil on
// total failure — timestamp parsing is never fatal to the parser.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// buildSignature chooses the canonical substring fed to the fingerprinter.
func buildSignature(rec *Record, lines []string) string {
	if len(lines) == 1 {
		if rec.Message != "" {
			return rec.Message
		}
		return strings.TrimSpace(lines[0])
	}

	var causedBy []string
	var lastException string
	isPythonTraceback := false

	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Traceback") {
			isPythonTraceback = true
		}
		if causedByRe.MatchString(trimmed) {
			causedBy = append(causedBy, trimmed)
			continue
		}
		if exceptionLineRe.MatchString(trimmed) {
			lastException = trimmed
		}
	}

	var pieces []string
	if lastException != "" {
		pieces = append(pieces, lastException)
	}
	pieces = append(pieces, causedBy...)

	if isPythonTraceback {
		for i := len(lines) - 1; i >= 0; i-- {
			if t := strings.TrimSpace(lines[i]); t != "" {
				pieces = append(pieces, t)
				break
			}
		}
	}

	if len(pieces) == 0 {
		top := rec.Message
		if top == "" {
			top = strings.TrimSpace(lines[0])
		}
		pieces = append(pieces, top)

		if strings.HasSuffix(top, ":") || len(top) < 18 {
			appended := 0
			for _, l := range lines[1:] {
				if appended >= 2 {
					break
				}
				if (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")) && strings.TrimSpace(l) != "" {
					pieces = append(pieces, strings.TrimSpace(l))
					appended++
				}
			}
		}
	}

	return strings.Join(pieces, " | ")
}
