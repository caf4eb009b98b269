package dataprocessing

import (
	"context"
	"log/slog"

	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

// FeatureRequiredColumns must be present in the merged dataset
var FeatureRequiredColumns = []string{
	domain.ColStageCode,
	domain.ColPrincipal,
	domain.ColFacilityAmount,
	domain.ColDaysPastDue,
	domain.ColReportDate,
	domain.ColOriginDate,
	domain.ColMaturityDate,
}

var stageByCode = map[float64]string{
	1: domain.StagePerforming,
	2: domain.StageUnderPerforming,
	3: domain.StageNonPerforming,
}

// FeatureEngineer derives the risk attributes of each merged row
type FeatureEngineer struct {
	logger *slog.Logger
}

// NewFeatureEngineer creates a feature engineer
func NewFeatureEngineer(logger *slog.Logger) *FeatureEngineer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureEngineer{logger: logger.With(slog.String("component", "features"))}
}

// Engineer returns a copy of merged with the derived columns appended.
// Principal and facility amounts are replaced by their numeric form.
func (f *FeatureEngineer) Engineer(ctx context.Context, merged *domain.Table) (*domain.Table, domain.Diagnostics, error) {
	var diag domain.Diagnostics
	f.logger.InfoContext(ctx, "Engineering features", slog.Int("rows", merged.Len()))

	if err := merged.Require(FeatureRequiredColumns...); err != nil {
		return nil, diag, errors.NewSchemaError("merged dataset is missing a feature column", err)
	}

	out := merged.Clone()
	n := out.Len()

	stages := make([]domain.Value, n)
	overdue := make([]domain.Value, n)
	buckets := make([]domain.Value, n)
	principal := make([]domain.Value, n)
	facility := make([]domain.Value, n)
	ratios := make([]domain.Value, n)
	ages := make([]domain.Value, n)
	tenors := make([]domain.Value, n)
	years := make([]domain.Value, n)
	quarters := make([]domain.Value, n)

	for i := 0; i < n; i++ {
		stages[i] = domain.Text(StageLabel(out.Get(i, domain.ColStageCode)))
		if s, _ := stages[i].AsText(); s == domain.StageUnknown {
			diag.UnknownStages++
		}

		dpd, _ := toNumber(out.Get(i, domain.ColDaysPastDue))
		days, known := dpd.AsNumber()
		overdue[i] = domain.Bool(known && days > 0)
		buckets[i] = domain.Null()
		if known {
			if label, ok := BucketFor(days); ok {
				buckets[i] = domain.Text(label)
			} else {
				diag.UnbucketedDPD++
			}
		}

		var ok bool
		if principal[i], ok = toNumber(out.Get(i, domain.ColPrincipal)); !ok {
			diag.AddNumberNulled(domain.ColPrincipal)
		}
		if facility[i], ok = toNumber(out.Get(i, domain.ColFacilityAmount)); !ok {
			diag.AddNumberNulled(domain.ColFacilityAmount)
		}
		ratios[i] = DebtToLimitRatio(principal[i], facility[i])

		report, _ := toDate(out.Get(i, domain.ColReportDate))
		origin, _ := toDate(out.Get(i, domain.ColOriginDate))
		maturity, _ := toDate(out.Get(i, domain.ColMaturityDate))
		ages[i] = DaysBetween(origin, report)
		tenors[i] = DaysBetween(report, maturity)
		years[i], quarters[i] = OriginYearQuarter(origin)
	}

	columns := []struct {
		name   string
		values []domain.Value
	}{
		{domain.ColFacilityAmount, facility},
		{domain.ColPrincipal, principal},
		{domain.ColStageName, stages},
		{domain.ColIsOverdue, overdue},
		{domain.ColDPDBucket, buckets},
		{domain.ColDebtToLimitRatio, ratios},
		{domain.ColLoanAgeDays, ages},
		{domain.ColRemainingTenor, tenors},
		{domain.ColLoanOrigYear, years},
		{domain.ColLoanOrigQuarter, quarters},
	}
	for _, c := range columns {
		if err := out.AddColumn(c.name, c.values); err != nil {
			return nil, diag, err
		}
	}

	f.logger.InfoContext(ctx, "Features engineered",
		slog.Int("rows", n),
		slog.Int("unknown_stages", diag.UnknownStages),
		slog.Int("unbucketed_dpd", diag.UnbucketedDPD))

	return out, diag, nil
}

// StageLabel maps a risk-stage code to its label. Codes other than 1, 2
// and 3, null included, map to the unknown label.
func StageLabel(code domain.Value) string {
	v, _ := toNumber(code)
	f, ok := v.AsNumber()
	if !ok {
		return domain.StageUnknown
	}
	if label, found := stageByCode[f]; found {
		return label
	}
	return domain.StageUnknown
}

// BucketFor returns the DPD bucket containing days. ok is false for
// values at or below -1, which no bucket covers.
func BucketFor(days float64) (string, bool) {
	for _, b := range domain.DPDBuckets {
		if days > b.Lower && days <= b.Upper {
			return b.Label, true
		}
	}
	return "", false
}

// DebtToLimitRatio is principal / facility when facility is positive, else null
func DebtToLimitRatio(principal, facility domain.Value) domain.Value {
	limit, ok := facility.AsNumber()
	if !ok || limit <= 0 {
		return domain.Null()
	}
	debt, ok := principal.AsNumber()
	if !ok {
		return domain.Null()
	}
	return domain.Number(debt / limit)
}

// DaysBetween returns to - from in whole days, null when either is null
func DaysBetween(from, to domain.Value) domain.Value {
	a, ok := from.AsDate()
	if !ok {
		return domain.Null()
	}
	b, ok := to.AsDate()
	if !ok {
		return domain.Null()
	}
	return domain.Number(float64(wholeDays(a, b)))
}

// OriginYearQuarter returns the calendar year and quarter (1-4) of a date
func OriginYearQuarter(origin domain.Value) (domain.Value, domain.Value) {
	t, ok := origin.AsDate()
	if !ok {
		return domain.Null(), domain.Null()
	}
	return domain.Number(float64(t.Year())), domain.Number(float64((int(t.Month())-1)/3 + 1))
}
