package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// ErrCampaignNotFound is returned when a campaign selection names an
// unknown campaign.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrEntityNotFound is returned when an entity ID is not in the workspace.
var ErrEntityNotFound = errors.New("entity not found")

// Aggregator evaluates many entities and summarizes their verdicts.
type Aggregator interface {
	Aggregate(subjects []models.Subject) models.AggregateSummary
}

// summaryAggregator implements Aggregator on top of an Evaluator. Every
// call recomputes from scratch; nothing is cached between calls.
type summaryAggregator struct {
	evaluator Evaluator
}

// NewAggregator creates an Aggregator that evaluates entities with evaluator.
func NewAggregator(evaluator Evaluator) Aggregator {
	return &summaryAggregator{evaluator: evaluator}
}

// Aggregate evaluates every subject, tallies statuses and builds the
// urgency queue. Nil subjects are skipped.
func (a *summaryAggregator) Aggregate(subjects []models.Subject) models.AggregateSummary {
	summary := models.AggregateSummary{
		CountsByKind: make(map[models.EntityKind]int),
		Entries:      make([]models.EvaluatedEntity, 0, len(subjects)),
		UrgencyQueue: make([]models.EvaluatedEntity, 0),
	}

	coverages := make([]int, 0, len(subjects))
	for _, s := range subjects {
		if s == nil {
			continue
		}
		entry := models.EvaluatedEntity{Ref: s.Ref(), Verdict: a.evaluator.Evaluate(s)}
		summary.Entries = append(summary.Entries, entry)
		summary.CountsByKind[entry.Ref.Kind]++
		coverages = append(coverages, entry.Verdict.Coverage)

		switch entry.Verdict.Status {
		case models.StatusSafeToDecide:
			summary.SafeCount++
		case models.StatusDecisionAtRisk:
			summary.AtRiskCount++
		case models.StatusBlocked:
			summary.BlockedCount++
		}
	}

	summary.Total = len(summary.Entries)
	summary.AvgCoverage = roundedMean(coverages)
	summary.UrgencyQueue = UrgencyQueue(summary.Entries)
	return summary
}

// UrgencyQueue returns the non-safe entries ordered blocked first, then by
// ascending coverage. Entries with equal status and coverage keep their
// input order. The input slice is not modified.
func UrgencyQueue(entries []models.EvaluatedEntity) []models.EvaluatedEntity {
	queue := make([]models.EvaluatedEntity, 0, len(entries))
	for _, e := range entries {
		if e.Verdict.Status != models.StatusSafeToDecide {
			queue = append(queue, e)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		si, sj := severity(queue[i].Verdict.Status), severity(queue[j].Verdict.Status)
		if si != sj {
			return si > sj
		}
		return queue[i].Verdict.Coverage < queue[j].Verdict.Coverage
	})
	return queue
}

// severity orders statuses from safest (0) to most severe. Unknown
// statuses rank as blocked so they are never hidden.
func severity(s models.DecisionStatus) int {
	switch s {
	case models.StatusSafeToDecide:
		return 0
	case models.StatusDecisionAtRisk:
		return 1
	default:
		return 2
	}
}

// SelectCampaign returns the subjects backing a campaign: its selected
// assets and personas, in selection order, followed by its own inputs.
// Selected IDs missing from the workspace are reported as an error.
func SelectCampaign(ws *models.Workspace, campaignID string) ([]models.Subject, error) {
	c, ok := ws.FindCampaign(campaignID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, campaignID)
	}

	assets := make(map[string]models.BrandAsset, len(ws.Assets))
	for _, a := range ws.Assets {
		assets[a.ID] = a
	}
	personas := make(map[string]models.Persona, len(ws.Personas))
	for _, p := range ws.Personas {
		personas[p.ID] = p
	}

	subjects := make([]models.Subject, 0, len(c.AssetIDs)+len(c.PersonaIDs)+len(c.Inputs))
	for _, id := range c.AssetIDs {
		a, ok := assets[id]
		if !ok {
			return nil, fmt.Errorf("campaign %s: asset %s: %w", campaignID, id, ErrEntityNotFound)
		}
		subjects = append(subjects, a)
	}
	for _, id := range c.PersonaIDs {
		p, ok := personas[id]
		if !ok {
			return nil, fmt.Errorf("campaign %s: persona %s: %w", campaignID, id, ErrEntityNotFound)
		}
		subjects = append(subjects, p)
	}
	for _, in := range c.Inputs {
		subjects = append(subjects, in)
	}
	return subjects, nil
}

// SelectEntities returns the subjects with the given IDs, in the order given.
func SelectEntities(ws *models.Workspace, ids []string) ([]models.Subject, error) {
	subjects := make([]models.Subject, 0, len(ids))
	for _, id := range ids {
		s, ok := ws.FindSubject(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, id)
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}
