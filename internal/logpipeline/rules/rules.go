// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package rules holds the static rule catalogue the findings engine matches
// log messages against, plus a secondary generic-error fallback catalogue.
// Every pattern is compiled once at package init and is read-only
// thereafter, per the concurrency model's shared-resource policy.
package rules

import "regexp"

// Severity values a Rule can carry.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MED"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRIT"
)

// GenericErrorRuleID names the synthetic finding produced when an error
// event matches no catalogue rule but does match a generic-error pattern.
const GenericErrorRuleID = "generic_error"

// Rule is one catalogue entry: a static id/title/severity/confidence plus
// the compiled patterns that trigger it.
type Rule struct {
	ID         string
	Title      string
	Severity   string
	Confidence float64
	Patterns   []*regexp.Regexp
}

// Match is one catalogue hit against a message.
type Match struct {
	RuleID     string
	Title      string
	Severity   string
	Confidence float64
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// Catalogue is the static, ordered rule list. Ported from the reference
// Python rule set so rule ids, severities, and confidences line up exactly.
var Catalogue = []Rule{
	{
		ID: "db_connection_failure", Title: "Database connection failures",
		Severity: SeverityHigh, Confidence: 0.85,
		Patterns: compile(
			`\bconnection refused\b`, `\beconnrefused\b`, `\bno route to host\b`,
			`\btimeout acquiring connection\b`, `\bconnection timed out\b`, `\btoo many connections\b`,
		),
	},
	{
		ID: "db_auth_failure", Title: "Database authentication/permission errors",
		Severity: SeverityHigh, Confidence: 0.80,
		Patterns: compile(
			`\bpassword authentication failed\b`, `\bauthentication failed\b`,
			`\baccess denied for user\b`, `\bpermission denied\b`, `\brole .* does not exist\b`,
		),
	},
	{
		ID: "http_rate_limited", Title: "Rate limiting (HTTP 429 / too many requests)",
		Severity: SeverityMedium, Confidence: 0.80,
		Patterns: compile(
			`\b429\b`, `\btoo many requests\b`, `\brate limit(ed|ing)?\b`, `\bthrottl(ed|ing)\b`,
		),
	},
	{
		ID: "auth_token_expired", Title: "Auth token/session expired",
		Severity: SeverityMedium, Confidence: 0.75,
		Patterns: compile(
			`\bjwt expired\b`, `\btoken expired\b`, `\bsession expired\b`, `\bexpired signature\b`,
		),
	},
	{
		ID: "invalid_credentials", Title: "Invalid credentials / login failures",
		Severity: SeverityMedium, Confidence: 0.70,
		Patterns: compile(
			`\binvalid credentials\b`, `\blogin failed\b`, `\bwrong password\b`,
			`\bunauthorized\b`, `\b401\b`,
		),
	},
	{
		ID: "oom_memory", Title: "Out of memory / heap exhaustion",
		Severity: SeverityCritical, Confidence: 0.90,
		Patterns: compile(
			`\bout of memory\b`, `\boomed\b`, `\bjava\.lang\.outofmemoryerror\b`,
			`\bcannot allocate memory\b`, `\bmalloc\(\) failed\b`, `\bheap space\b`,
			`\bkilled process .* out of memory\b`,
		),
	},
	{
		ID: "disk_full", Title: "Disk full / no space left",
		Severity: SeverityHigh, Confidence: 0.85,
		Patterns: compile(
			`\bno space left on device\b`, `\bdisk quota exceeded\b`,
			`\bfilesystem is full\b`, `\benospc\b`,
		),
	},
	{
		ID: "tls_cert_failure", Title: "TLS/SSL handshake or certificate failures",
		Severity: SeverityHigh, Confidence: 0.80,
		Patterns: compile(
			`\bcertificate verify failed\b`, `\bself[- ]signed certificate\b`,
			`\bssl handshake failed\b`, `\btls handshake failed\b`,
			`\bunknown ca\b`, `\bcertificate has expired\b`,
		),
	},
	{
		ID: "upstream_timeout", Title: "Upstream timeouts / gateway errors",
		Severity: SeverityHigh, Confidence: 0.78,
		Patterns: compile(
			`\b504\b`, `\bgateway timeout\b`, `\bupstream timed out\b`,
			`\brequest timeout\b`, `\betimedout\b`,
		),
	},
	{
		ID: "payment_failure", Title: "Payment/charge failures",
		Severity: SeverityHigh, Confidence: 0.70,
		Patterns: compile(
			`\bpayment failed\b`, `\bcharge (declined|failed)\b`,
			`\binsufficient funds\b`, `\bcard declined\b`, `\bdo not honor\b`,
		),
	},
}

// genericErrorPatterns is the fallback catalogue used only for untagged
// error events that matched nothing in Catalogue.
var genericErrorPatterns = compile(
	`\bpanic\b`, `\bfail(ed|ure)?\b`, `\bexception\b`, `\bcritical\b`,
	`\bsegmentation fault\b`, `\bcore dumped\b`, `\bstack trace\b`, `\btraceback\b`,
	`\bunhandled\b`, `\bunexpected\b`, `\bfatal\b`, `\bsegfault\b`, `\bshutdown\b`,
	`\bcrash(es|ed)?\b`, `\bdeadlock\b`, `\btimeout\b`, `\bcorrupted\b`, `\bdata loss\b`,
)

// Apply returns every catalogue rule whose any pattern matches message.
func Apply(message string) []Match {
	var matches []Match
	for _, rule := range Catalogue {
		for _, p := range rule.Patterns {
			if p.MatchString(message) {
				matches = append(matches, Match{
					RuleID:     rule.ID,
					Title:      rule.Title,
					Severity:   rule.Severity,
					Confidence: rule.Confidence,
				})
				break
			}
		}
	}
	return matches
}

// ApplyGeneric reports whether message matches any generic-error pattern.
func ApplyGeneric(message string) bool {
	for _, p := range genericErrorPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}
