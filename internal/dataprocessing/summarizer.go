package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

// Summarizer aggregates principal by risk stage
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a stage summarizer
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

type stageAccumulator struct {
	sum   decimal.Decimal
	count int
}

// SummarizeByStage returns sum, mean and count of the known principal
// amounts per stage label, ordered by label. Stages whose rows carry no
// principal are reported with a zero sum, zero count and no mean.
func (s *Summarizer) SummarizeByStage(ctx context.Context, table *domain.Table) ([]domain.StageSummary, error) {
	if err := table.Require(domain.ColStageName, domain.ColPrincipal); err != nil {
		return nil, errors.NewSchemaError("enriched dataset cannot be summarized", err)
	}

	groups := make(map[string]*stageAccumulator)
	for i := 0; i < table.Len(); i++ {
		stage, ok := table.Get(i, domain.ColStageName).AsText()
		if !ok {
			continue
		}
		acc, exists := groups[stage]
		if !exists {
			acc = &stageAccumulator{sum: decimal.Zero}
			groups[stage] = acc
		}
		if principal, ok := table.Get(i, domain.ColPrincipal).AsNumber(); ok {
			acc.sum = acc.sum.Add(decimal.NewFromFloat(principal))
			acc.count++
		}
	}

	stages := make([]string, 0, len(groups))
	for stage := range groups {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	summaries := make([]domain.StageSummary, 0, len(stages))
	for _, stage := range stages {
		acc := groups[stage]
		sum, _ := acc.sum.Float64()
		summary := domain.StageSummary{Stage: stage, Sum: sum, Count: acc.count}
		if acc.count > 0 {
			mean, _ := acc.sum.Div(decimal.NewFromInt(int64(acc.count))).Float64()
			summary.Mean = &mean
		}
		summaries = append(summaries, summary)
	}

	s.logger.InfoContext(ctx, "Stage summary computed", slog.Int("stages", len(summaries)))
	for _, summary := range summaries {
		s.logger.DebugContext(ctx, "Stage totals",
			slog.String("stage", summary.Stage),
			slog.Float64("sum", summary.Sum),
			slog.Int("count", summary.Count))
	}

	return summaries, nil
}
