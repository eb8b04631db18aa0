// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package findings implements the two-pass findings engine: it turns an
// ingestion's fingerprint groups and recent error events into a ranked list
// of findings, matching each against the rule catalogue. The engine itself
// touches no storage; callers supply groups, error events, and an evidence
// lookup, and get back the finalized finding list to persist.
package findings

import (
	"sort"

	"github.com/sk-labs/logintel/internal/logpipeline/rules"
)

// Caps bounds how much evidence and how many fingerprints a single finding
// can accumulate. Exceeding either is silent: extras are dropped.
type Caps struct {
	MaxEvidencePerRule      int
	MaxFingerprintsInSummary int
}

// DefaultCaps mirrors the engine's reference limits.
var DefaultCaps = Caps{MaxEvidencePerRule: 12, MaxFingerprintsInSummary: 10}

// Group is one fingerprint cluster within an ingestion: its member count and
// the message of its most recent event, the only part pass 1 inspects.
type Group struct {
	Fingerprint   string
	Count         int
	LatestMessage string
}

// ErrorEvent is one individual ERROR/CRITICAL/FATAL event, as pass 2 walks
// them newest-first.
type ErrorEvent struct {
	ID          string
	Fingerprint string
	Level       string
	Message     string
}

// FingerprintCount is one {fingerprint, count} pair inside a finding's
// matched_fingerprints summary.
type FingerprintCount struct {
	Fingerprint string `json:"fingerprint"`
	Count       int    `json:"count"`
}

// Finding is one finalized, ready-to-persist rule match.
type Finding struct {
	RuleID              string
	Title               string
	Severity            string
	Confidence          float64
	TotalOccurrences    int
	MatchedFingerprints []FingerprintCount
	EvidenceEventIDs    []string
}

// EvidenceLookup fetches up to head+tail evidence event ids for one
// fingerprint, ordered by seq, deduplicated, head entries preceding tail.
type EvidenceLookup func(fingerprint string) ([]string, error)

var severityRank = map[string]int{"CRIT": 4, "HIGH": 3, "MED": 2, "LOW": 1}

// accumulator mirrors one in-flight findings_by_rule entry: an ordered
// fingerprint list and evidence list, each paired with a dedup set so
// repeated matches against the same fingerprint/event don't double-count.
type accumulator struct {
	ruleID     string
	title      string
	severity   string
	confidence float64
	total      int

	fpOrder []FingerprintCount
	fpSeen  map[string]bool

	evidenceOrder []string
	evidenceSeen  map[string]bool
}

func newAccumulator(ruleID, title, severity string, confidence float64) *accumulator {
	return &accumulator{
		ruleID:     ruleID,
		title:      title,
		severity:   severity,
		confidence: confidence,
		fpSeen:     make(map[string]bool),
		evidenceSeen: make(map[string]bool),
	}
}

func (a *accumulator) addFingerprint(fp string, count int, caps Caps) {
	if a.fpSeen[fp] {
		return
	}
	if len(a.fpOrder) >= caps.MaxFingerprintsInSummary {
		return
	}
	a.fpOrder = append(a.fpOrder, FingerprintCount{Fingerprint: fp, Count: count})
	a.fpSeen[fp] = true
}

func (a *accumulator) addEvidence(id string, caps Caps) {
	if a.evidenceSeen[id] {
		return
	}
	if len(a.evidenceOrder) >= caps.MaxEvidencePerRule {
		return
	}
	a.evidenceOrder = append(a.evidenceOrder, id)
	a.evidenceSeen[id] = true
}

func (a *accumulator) finding() Finding {
	fps := make([]FingerprintCount, len(a.fpOrder))
	copy(fps, a.fpOrder)
	sort.SliceStable(fps, func(i, j int) bool { return fps[i].Count > fps[j].Count })
	if len(fps) > DefaultCaps.MaxFingerprintsInSummary {
		fps = fps[:DefaultCaps.MaxFingerprintsInSummary]
	}

	return Finding{
		RuleID:               a.ruleID,
		Title:                a.title,
		Severity:             a.severity,
		Confidence:           a.confidence,
		TotalOccurrences:     a.total,
		MatchedFingerprints:  fps,
		EvidenceEventIDs:     append([]string(nil), a.evidenceOrder...),
	}
}

// Run executes both passes over groups and errorEvents and returns the
// finalized, severity-then-volume-sorted finding list.
func Run(groups []Group, errorEvents []ErrorEvent, evidenceFor EvidenceLookup, caps Caps) ([]Finding, error) {
	byRule := make(map[string]*accumulator)

	if err := runGroups(groups, evidenceFor, caps, byRule); err != nil {
		return nil, err
	}
	runErrors(errorEvents, caps, byRule)

	return finalize(byRule), nil
}

// runGroups is pass 1: match each fingerprint group's latest message against
// the catalogue, fetching evidence once per fingerprint regardless of how
// many rules it triggers.
func runGroups(groups []Group, evidenceFor EvidenceLookup, caps Caps, byRule map[string]*accumulator) error {
	for _, g := range groups {
		matches := rules.Apply(g.LatestMessage)
		if len(matches) == 0 {
			continue
		}

		evidence, err := evidenceFor(g.Fingerprint)
		if err != nil {
			return err
		}

		for _, m := range matches {
			acc, ok := byRule[m.RuleID]
			if !ok {
				acc = newAccumulator(m.RuleID, m.Title, m.Severity, m.Confidence)
				byRule[m.RuleID] = acc
			}
			acc.total += g.Count
			acc.addFingerprint(g.Fingerprint, g.Count, caps)
			for _, eid := range evidence {
				acc.addEvidence(eid, caps)
			}
		}
	}
	return nil
}

// runErrors is pass 2: walk the most recent error events directly, catching
// matches that pass 1's top-200-groups cutoff might have missed, falling
// back to the generic-error catalogue and a synthetic generic_error rule.
func runErrors(errorEvents []ErrorEvent, caps Caps, byRule map[string]*accumulator) {
	for _, ev := range errorEvents {
		matches := rules.Apply(ev.Message)
		if len(matches) == 0 {
			if !rules.ApplyGeneric(ev.Message) {
				continue
			}
			severity := "HIGH"
			if ev.Level == "CRITICAL" || ev.Level == "FATAL" {
				severity = "CRIT"
			}
			matches = []rules.Match{{
				RuleID:     rules.GenericErrorRuleID,
				Title:      "Generic error pattern match",
				Severity:   severity,
				Confidence: 0.5,
			}}
		}

		for _, m := range matches {
			acc, ok := byRule[m.RuleID]
			if !ok {
				acc = newAccumulator(m.RuleID, m.Title, m.Severity, m.Confidence)
				byRule[m.RuleID] = acc
			}
			acc.addFingerprint(ev.Fingerprint, 1, caps)
			acc.addEvidence(ev.ID, caps)
			acc.total++
		}
	}
}

// finalize sorts each finding's fingerprint summary and orders the finding
// list by (severityRank, total_occurrences) descending.
func finalize(byRule map[string]*accumulator) []Finding {
	out := make([]Finding, 0, len(byRule))
	for _, acc := range byRule {
		out = append(out, acc.finding())
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := severityRank[out[i].Severity], severityRank[out[j].Severity]
		if ri != rj {
			return ri > rj
		}
		return out[i].TotalOccurrences > out[j].TotalOccurrences
	})
	return out
}
