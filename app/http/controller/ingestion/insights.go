// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ingestionModel "github.com/sk-labs/logintel/app/model/ingestion"
	"github.com/sk-labs/logintel/app/pkg/e"
	"github.com/sk-labs/logintel/internal/insight"
	"github.com/sk-labs/logintel/internal/logpipeline/fingerprint"
	"github.com/sk-labs/logintel/internal/metrics"
)

// InsightReqParams is the request body for generating an insight.
// ScopeType is one of insight.KindGroup ("group") or insight.KindFinding
// ("finding"); Fingerprint is required for the former, FindingID for the
// latter.
type InsightReqParams struct {
	ScopeType   string `json:"scope_type" binding:"required,oneof=group finding"`
	Fingerprint string `json:"fingerprint"`
	FindingID   string `json:"finding_id"`
}

// InsightRepData is the response payload for a generated or cached insight.
type InsightRepData struct {
	Content string `json:"content"`
	Cached  bool   `json:"cached"`
}

// Insights returns a Gin handler generating (or returning a cached) LLM
// analysis for either a fingerprint group or a rule finding, per the
// scope_type request field.
func (h handler) Insights() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.insight == nil {
			h.i18n.JSON(c, e.InsightUnavailable, nil, nil)
			return
		}

		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		var params InsightReqParams
		if err := c.ShouldBindJSON(&params); err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		var scopeID string
		var req insight.Request

		switch params.ScopeType {
		case insight.KindGroup:
			if params.Fingerprint == "" {
				h.i18n.JSON(c, e.InvalidParams, nil, nil)
				return
			}
			scopeID = params.Fingerprint

			group, err := h.query.GroupOverview(ingestionID, params.Fingerprint)
			if err != nil {
				h.i18n.JSON(c, e.FingerprintNotFound, nil, err)
				return
			}

			req = insight.Request{
				Kind: insight.KindGroup,
				Fields: map[string]interface{}{
					"fingerprint":    group.Fingerprint,
					"count":          group.Count,
					"level_counts":   group.LevelCounts,
					"service_counts": group.ServiceCounts,
				},
				Events: toInsightEvents(group.Samples),
			}

		case insight.KindFinding:
			findingID, err := uuid.Parse(params.FindingID)
			if err != nil {
				h.i18n.JSON(c, e.InvalidParams, nil, err)
				return
			}
			scopeID = findingID.String()

			detail, err := h.query.FindingDetail(ingestionID, findingID)
			if err != nil {
				h.i18n.JSON(c, e.FindingNotFound, nil, err)
				return
			}

			req = insight.Request{
				Kind: insight.KindFinding,
				Fields: map[string]interface{}{
					"rule_id":           detail.Finding.RuleID,
					"title":             detail.Finding.Title,
					"severity":          detail.Finding.Severity,
					"confidence":        detail.Finding.Confidence,
					"total_occurrences": detail.Finding.TotalOccurrences,
				},
				Events: toInsightEvents(detail.Evidence),
			}
		}

		cached, err := h.repo.FindCachedAnalysis(ingestionID, params.ScopeType, scopeID)
		if err == nil && cached != nil {
			metrics.RecordInsightRequest(params.ScopeType, "cached")
			h.i18n.JSON(c, e.SUCCESS, &InsightRepData{Content: cached.Result, Cached: true}, nil)
			return
		}

		content, err := h.insight.Generate(h.ctx(c), req)
		if err != nil {
			metrics.RecordInsightRequest(params.ScopeType, "failure")
			h.i18n.JSON(c, e.InsightUnavailable, nil, err)
			return
		}
		metrics.RecordInsightRequest(params.ScopeType, "success")

		analysis := &ingestionModel.AiAnalysis{
			IngestionID: ingestionID,
			ScopeType:   params.ScopeType,
			ScopeID:     scopeID,
			Result:      content,
		}
		if _, err := h.repo.SaveAnalysis(analysis); err != nil {
			h.logger.Warn(h.ctx(c), "insight: failed to cache analysis")
		}

		h.i18n.JSON(c, e.SUCCESS, &InsightRepData{Content: content, Cached: false}, nil)
	}
}

func toInsightEvents(events []ingestionModel.LogEvent) []insight.Event {
	out := make([]insight.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, toInsightEvent(ev))
	}
	return out
}

// toInsightEvent converts a persisted event into the prompt-facing shape,
// re-running the fingerprint normalizer over the message so volatile
// identifiers (ids, ips, tokens, timestamps) never reach the LLM verbatim.
func toInsightEvent(ev ingestionModel.LogEvent) insight.Event {
	var ts string
	if ev.Ts.Valid {
		ts = ev.Ts.Time.Format("2006-01-02T15:04:05Z07:00")
	}
	return insight.Event{Seq: ev.Seq, Ts: ts, Level: ev.Level, Service: ev.Service, Message: fingerprint.Normalize(ev.Message)}
}
