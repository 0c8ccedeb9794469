// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the decision-quality engine as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/internal/observability"
	"github.com/valter-silva-au/decision-quality/internal/storage"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// Services holds the engine services the MCP tools call into. Events,
// Metrics, Alerts and Logger may be nil.
type Services struct {
	Loader     storage.WorkspaceLoader
	Evaluator  core.Evaluator
	Aggregator core.Aggregator
	Gatekeeper core.Gatekeeper
	Events     core.EventLogger
	Metrics    observability.MetricsCalculator
	Alerts     observability.AlertEngine
	Logger     *zap.Logger
}

// Server wraps the engine services and exposes them as MCP tools.
type Server struct {
	server *gomcp.Server
	svc    Services
	logger *zap.Logger
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc Services, version string) *Server {
	if version == "" {
		version = "dev"
	}
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{svc: svc, logger: logger}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "dqe", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type entityOutput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type verdictOutput struct {
	Status              string   `json:"status"`
	Coverage            int      `json:"coverage"`
	CompletedMethods    []string `json:"completed_methods"`
	TopMethodsCompleted bool     `json:"top_methods_completed"`
	MissingTopMethods   []string `json:"missing_top_methods"`
	Recommendation      string   `json:"recommendation"`
	Risk                string   `json:"risk"`
	NextSteps           []string `json:"next_steps"`
}

type evaluatedOutput struct {
	Entity  entityOutput  `json:"entity"`
	Verdict verdictOutput `json:"verdict"`
}

type evaluateEntityInput struct {
	EntityID string `json:"entity_id" jsonschema:"required,the ID of a brand asset, persona or campaign input"`
}

type summarizeInput struct {
	CampaignID string `json:"campaign_id,omitempty" jsonschema:"restrict the summary to the entities backing this campaign"`
}

type summaryOutput struct {
	Scope        string            `json:"scope"`
	Total        int               `json:"total"`
	SafeCount    int               `json:"safe_count"`
	AtRiskCount  int               `json:"at_risk_count"`
	BlockedCount int               `json:"blocked_count"`
	AvgCoverage  int               `json:"avg_coverage"`
	CountsByKind map[string]int    `json:"counts_by_kind"`
	UrgencyQueue []evaluatedOutput `json:"urgency_queue"`
}

type urgencyQueueInput struct {
	CampaignID string `json:"campaign_id,omitempty" jsonschema:"restrict the queue to the entities backing this campaign"`
	Status     string `json:"status,omitempty" jsonschema:"only return entities with this status (decision-at-risk or blocked)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of entries to return; 0 means no limit"`
}

type urgencyQueueOutput struct {
	Entries []evaluatedOutput `json:"entries"`
	Count   int               `json:"count"`
}

type decideGateInput struct {
	Action         string   `json:"action" jsonschema:"required,the strategic action being gated (e.g. generate-campaign)"`
	CampaignID     string   `json:"campaign_id,omitempty" jsonschema:"gate on every entity backing this campaign"`
	EntityIDs      []string `json:"entity_ids,omitempty" jsonschema:"gate on these entities"`
	OverrideReason string   `json:"override_reason,omitempty" jsonschema:"acknowledge a warning with this reason; blocked actions cannot be overridden"`
}

type decideGateOutput struct {
	Action         string            `json:"action"`
	Outcome        string            `json:"outcome"`
	Allowed        bool              `json:"allowed"`
	Acknowledged   bool              `json:"acknowledged"`
	OverrideReason string            `json:"override_reason,omitempty"`
	OverrideError  string            `json:"override_error,omitempty"`
	DecidingEntity *entityOutput     `json:"deciding_entity,omitempty"`
	Verdict        verdictOutput     `json:"verdict"`
	Entities       []evaluatedOutput `json:"entities"`
}

type listMethodsInput struct{}

type methodOutput struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

type listMethodsOutput struct {
	Methods []methodOutput `json:"methods"`
	Count   int            `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	GateDecisions     int            `json:"gate_decisions"`
	Proceeded         int            `json:"proceeded"`
	Warned            int            `json:"warned"`
	Blocked           int            `json:"blocked"`
	Overrides         int            `json:"overrides"`
	OverrideRate      float64        `json:"override_rate"`
	DecisionsByAction map[string]int `json:"decisions_by_action"`
	BlockedByAction   map[string]int `json:"blocked_by_action"`
	Evaluations       int            `json:"evaluations"`
	LastAvgCoverage   *int           `json:"last_avg_coverage,omitempty"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "evaluate_entity",
		Description: "Evaluate one brand asset, persona or campaign input. Returns its decision status, research coverage, missing top methods and next steps.",
	}, s.handleEvaluateEntity)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "summarize",
		Description: "Summarize decision safety across the workspace or one campaign: status counts, average coverage and the urgency queue.",
	}, s.handleSummarize)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "urgency_queue",
		Description: "List entities that are not safe to decide on, blocked first, then lowest coverage first.",
	}, s.handleUrgencyQueue)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "decide_gate",
		Description: "Decide whether a strategic action may proceed (proceed, warn or block) based on the research behind its entities.",
	}, s.handleDecideGate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_methods",
		Description: "List the research methods in the catalog ordered by strategic priority.",
	}, s.handleListMethods)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get gate and evaluation metrics from the event log, including outcomes per action and warning overrides.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (blocked entities, low average coverage, frequent warning overrides).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleEvaluateEntity(ctx context.Context, _ *gomcp.CallToolRequest, input evaluateEntityInput) (*gomcp.CallToolResult, evaluatedOutput, error) {
	if input.EntityID == "" {
		return errorResult("entity_id is required"), evaluatedOutput{}, nil
	}

	ws, err := s.svc.Loader.Load(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("loading workspace: %s", err)), evaluatedOutput{}, nil
	}

	subject, ok := ws.FindSubject(input.EntityID)
	if !ok {
		return errorResult(fmt.Sprintf("%s: %s", core.ErrEntityNotFound, input.EntityID)), evaluatedOutput{}, nil
	}

	entry := models.EvaluatedEntity{Ref: subject.Ref(), Verdict: s.svc.Evaluator.Evaluate(subject)}
	return nil, toEvaluatedOutput(entry), nil
}

func (s *Server) handleSummarize(ctx context.Context, _ *gomcp.CallToolRequest, input summarizeInput) (*gomcp.CallToolResult, summaryOutput, error) {
	subjects, scope, err := s.selectScope(ctx, input.CampaignID)
	if err != nil {
		return errorResult(err.Error()), summaryOutput{}, nil
	}

	summary := s.svc.Aggregator.Aggregate(subjects)
	if err := core.RecordSummary(s.svc.Events, scope, summary); err != nil {
		s.logger.Warn("recording summary event", zap.String("scope", scope), zap.Error(err))
	}

	out := summaryOutput{
		Scope:        scope,
		Total:        summary.Total,
		SafeCount:    summary.SafeCount,
		AtRiskCount:  summary.AtRiskCount,
		BlockedCount: summary.BlockedCount,
		AvgCoverage:  summary.AvgCoverage,
		CountsByKind: make(map[string]int, len(summary.CountsByKind)),
		UrgencyQueue: toEvaluatedOutputs(summary.UrgencyQueue),
	}
	for kind, n := range summary.CountsByKind {
		out.CountsByKind[string(kind)] = n
	}
	return nil, out, nil
}

func (s *Server) handleUrgencyQueue(ctx context.Context, _ *gomcp.CallToolRequest, input urgencyQueueInput) (*gomcp.CallToolResult, urgencyQueueOutput, error) {
	if input.Limit < 0 {
		return errorResult(fmt.Sprintf("limit must be non-negative, got %d", input.Limit)), urgencyQueueOutput{}, nil
	}
	var status models.DecisionStatus
	if input.Status != "" {
		parsed, err := core.ParseDecisionStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), urgencyQueueOutput{}, nil
		}
		status = parsed
	}

	subjects, _, err := s.selectScope(ctx, input.CampaignID)
	if err != nil {
		return errorResult(err.Error()), urgencyQueueOutput{}, nil
	}

	queue := s.svc.Aggregator.Aggregate(subjects).UrgencyQueue
	if status != "" {
		filtered := queue[:0:0]
		for _, e := range queue {
			if e.Verdict.Status == status {
				filtered = append(filtered, e)
			}
		}
		queue = filtered
	}
	if input.Limit > 0 && len(queue) > input.Limit {
		queue = queue[:input.Limit]
	}

	out := urgencyQueueOutput{Entries: toEvaluatedOutputs(queue), Count: len(queue)}
	return nil, out, nil
}

func (s *Server) handleDecideGate(ctx context.Context, _ *gomcp.CallToolRequest, input decideGateInput) (*gomcp.CallToolResult, decideGateOutput, error) {
	if input.Action == "" {
		return errorResult("action is required"), decideGateOutput{}, nil
	}
	if input.CampaignID != "" && len(input.EntityIDs) > 0 {
		return errorResult("campaign_id and entity_ids are mutually exclusive"), decideGateOutput{}, nil
	}

	ws, err := s.svc.Loader.Load(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("loading workspace: %s", err)), decideGateOutput{}, nil
	}

	var subjects []models.Subject
	switch {
	case input.CampaignID != "":
		subjects, err = core.SelectCampaign(ws, input.CampaignID)
	case len(input.EntityIDs) > 0:
		subjects, err = core.SelectEntities(ws, input.EntityIDs)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("selecting entities: %s", err)), decideGateOutput{}, nil
	}

	decision := s.svc.Gatekeeper.Guard(input.Action, subjects)

	var overrideErr string
	if input.OverrideReason != "" && decision.Outcome != models.GateProceed {
		overridden, err := s.svc.Gatekeeper.Override(decision, input.OverrideReason)
		if err != nil {
			overrideErr = err.Error()
		} else {
			decision = overridden
		}
	}

	out := decideGateOutput{
		Action:         decision.Action,
		Outcome:        string(decision.Outcome),
		Allowed:        decision.Allowed(),
		Acknowledged:   decision.Acknowledged,
		OverrideReason: decision.OverrideReason,
		OverrideError:  overrideErr,
		Verdict:        toVerdictOutput(decision.Verdict),
		Entities:       toEvaluatedOutputs(decision.Entities),
	}
	if decision.Deciding.ID != "" {
		ref := toEntityOutput(decision.Deciding)
		out.DecidingEntity = &ref
	}
	return nil, out, nil
}

func (s *Server) handleListMethods(_ context.Context, _ *gomcp.CallToolRequest, _ listMethodsInput) (*gomcp.CallToolResult, listMethodsOutput, error) {
	defs := s.svc.Evaluator.Catalog().Definitions()
	out := listMethodsOutput{
		Methods: make([]methodOutput, len(defs)),
		Count:   len(defs),
	}
	for i, d := range defs {
		out.Methods[i] = methodOutput{Type: string(d.Type), Label: d.Label, Rank: d.Rank}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.svc.Metrics == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.svc.Metrics.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		GateDecisions:     metrics.GateDecisions,
		Proceeded:         metrics.Proceeded,
		Warned:            metrics.Warned,
		Blocked:           metrics.Blocked,
		Overrides:         metrics.Overrides,
		OverrideRate:      metrics.OverrideRate(),
		DecisionsByAction: metrics.DecisionsByAction,
		BlockedByAction:   metrics.BlockedByAction,
		Evaluations:       metrics.Evaluations,
		LastAvgCoverage:   metrics.LastAvgCoverage,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.svc.Alerts == nil {
		return errorResult("alert engine not available (event log may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.svc.Alerts.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// selectScope loads the workspace and returns the subjects for a campaign,
// or every subject when campaignID is empty, with the scope name used in
// summary events.
func (s *Server) selectScope(ctx context.Context, campaignID string) ([]models.Subject, string, error) {
	ws, err := s.svc.Loader.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("loading workspace: %w", err)
	}
	if campaignID == "" {
		return ws.Subjects(), "workspace", nil
	}
	subjects, err := core.SelectCampaign(ws, campaignID)
	if err != nil {
		return nil, "", fmt.Errorf("selecting campaign: %w", err)
	}
	return subjects, campaignID, nil
}

func toEntityOutput(ref models.EntityRef) entityOutput {
	return entityOutput{ID: ref.ID, Label: ref.Label, Kind: string(ref.Kind)}
}

func toVerdictOutput(v models.DecisionStatusInfo) verdictOutput {
	return verdictOutput{
		Status:              string(v.Status),
		Coverage:            v.Coverage,
		CompletedMethods:    methodTypeStrings(v.CompletedMethods),
		TopMethodsCompleted: v.TopMethodsCompleted,
		MissingTopMethods:   methodTypeStrings(v.MissingTopMethods),
		Recommendation:      v.Recommendation,
		Risk:                v.Risk,
		NextSteps:           append([]string{}, v.NextSteps...),
	}
}

func toEvaluatedOutput(e models.EvaluatedEntity) evaluatedOutput {
	return evaluatedOutput{Entity: toEntityOutput(e.Ref), Verdict: toVerdictOutput(e.Verdict)}
}

func toEvaluatedOutputs(entries []models.EvaluatedEntity) []evaluatedOutput {
	out := make([]evaluatedOutput, len(entries))
	for i, e := range entries {
		out[i] = toEvaluatedOutput(e)
	}
	return out
}

func methodTypeStrings(types []models.MethodType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		DecisionsByAction: make(map[string]int),
		BlockedByAction:   make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
