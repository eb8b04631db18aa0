// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package fingerprint reduces a log record's signature string to a stable
// content hash by stripping volatile tokens before hashing.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// Normalization order matters: token-like runs must be matched before the
// catch-all numeric/token rules would otherwise subsume them.
var substitutions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`), "<uuid>"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "<ip>"},
	{regexp.MustCompile(`(?i)\b0x[0-9a-f]+\b`), "<hex>"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "<email>"},
	{regexp.MustCompile(`(?i)\bhttps?://\S+`), "<url>"},
	{regexp.MustCompile(`\b[A-Za-z0-9]{20,}\b`), "<token>"},
	{regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}[t ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:z|[+-]\d{2}:?\d{2})?\b`), "<timestamp>"},
	{regexp.MustCompile(`\b\d{4,}\b`), "<number>"},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Fingerprint returns the 40-hex-char SHA-1 digest of the normalized form
// of signature.
func Fingerprint(signature string) string {
	sum := sha1.Sum([]byte(normalize(signature)))
	return hex.EncodeToString(sum[:])
}

// Normalize exposes the same substitution pipeline used by Fingerprint for
// redacting free-form text, such as sample event messages embedded in
// outbound LLM prompts, before the raw values leave the service.
func Normalize(text string) string {
	return normalize(text)
}

// normalize applies the ordered substitution pipeline to a lowercased,
// trimmed copy of signature.
func normalize(signature string) string {
	s := strings.TrimSpace(strings.ToLower(signature))
	for _, sub := range substitutions {
		s = sub.pattern.ReplaceAllString(s, sub.replacement)
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
