package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

// JoinPolicy decides what happens when a transaction matches more than one
// performance row
type JoinPolicy string

const (
	// JoinFanOut emits one merged row per matching performance row
	JoinFanOut JoinPolicy = "fanout"
	// JoinFirst keeps only the first matching performance row
	JoinFirst JoinPolicy = "first"
	// JoinReject fails when the performance keys are not unique
	JoinReject JoinPolicy = "reject"
)

// ParseJoinPolicy parses a policy name; empty selects JoinFanOut
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch p := JoinPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return JoinFanOut, nil
	case JoinFanOut, JoinFirst, JoinReject:
		return p, nil
	default:
		return "", errors.NewAppValidationError(fmt.Sprintf("unknown join policy %q", s))
	}
}

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// Cleaner parses dates, removes duplicate transactions, joins the
// performance data and fills the days-past-due field
type Cleaner struct {
	logger *slog.Logger
	policy JoinPolicy
}

// NewCleaner creates a cleaner using the given join policy
func NewCleaner(logger *slog.Logger, policy JoinPolicy) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = JoinFanOut
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		policy: policy,
	}
}

// Clean returns the merged dataset. The inputs are not modified.
func (c *Cleaner) Clean(ctx context.Context, transactions, performance *domain.Table) (*domain.Table, domain.Diagnostics, error) {
	var diag domain.Diagnostics
	c.logger.InfoContext(ctx, "Cleaning data",
		slog.Int("transactions", transactions.Len()),
		slog.Int("performance", performance.Len()),
		slog.String("join_policy", string(c.policy)))

	tx := transactions.Clone()
	ParseDates(tx, &diag)

	tx, diag.DuplicatesRemoved = Deduplicate(tx)

	merged, err := c.merge(tx, performance, &diag)
	if err != nil {
		return nil, diag, err
	}

	resolveReportDateCollision(merged)

	if err := fillDaysPastDue(merged, &diag); err != nil {
		return nil, diag, err
	}

	c.logger.InfoContext(ctx, "Data cleaned",
		slog.Int("rows", merged.Len()),
		slog.Int("duplicates_removed", diag.DuplicatesRemoved),
		slog.Int("unmatched_transactions", diag.UnmatchedTransactions),
		slog.Int("fan_out_rows", diag.FanOutRows),
		slog.Int("dpd_coerced_to_zero", diag.DPDCoercedToZero),
		slog.Bool("dpd_synthesized", diag.DPDSynthesized))

	return merged, diag, nil
}

// ParseDates replaces the YYYYMMDD date fields of t with dates in place.
// Values that do not parse become null; absent fields are skipped.
func ParseDates(t *domain.Table, diag *domain.Diagnostics) {
	for _, column := range domain.DateColumns {
		if !t.Has(column) {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			v, ok := toDate(t.Get(i, column))
			if !ok && diag != nil {
				diag.AddDateNulled(column)
			}
			_ = t.Set(i, column, v)
		}
	}
}

// Deduplicate returns t without exact duplicate rows, keeping the first
// instance of each, and the number of rows removed
func Deduplicate(t *domain.Table) (*domain.Table, int) {
	seen := make(map[string]struct{}, t.Len())
	out := t.Filter(func(i int) bool {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return out, t.Len() - out.Len()
}

// merge left-joins performance onto tx by FCUSNO = CIF
func (c *Cleaner) merge(tx, performance *domain.Table, diag *domain.Diagnostics) (*domain.Table, error) {
	if !tx.Has(domain.ColCustomerID) {
		return nil, errors.NewSchemaError("transactions have no customer id column", domain.ErrColumnNotFound).
			WithContext("column", domain.ColCustomerID)
	}
	if !performance.Has(domain.ColCIF) {
		return nil, errors.NewSchemaError("performance data has no CIF column", domain.ErrColumnNotFound).
			WithContext("column", domain.ColCIF)
	}

	index, err := c.indexPerformance(performance)
	if err != nil {
		return nil, err
	}

	txColumns := tx.Columns()
	perfColumns := performance.Columns()
	columns := make([]string, 0, len(txColumns)+len(perfColumns))
	for _, name := range txColumns {
		if performance.Has(name) {
			name += leftSuffix
		}
		columns = append(columns, name)
	}
	for _, name := range perfColumns {
		if tx.Has(name) {
			name += rightSuffix
		}
		columns = append(columns, name)
	}

	merged := domain.NewTable(columns)
	nullPerf := make([]domain.Value, len(perfColumns))

	appendRow := func(left, right []domain.Value) error {
		row := make([]domain.Value, 0, len(columns))
		row = append(row, left...)
		row = append(row, right...)
		return merged.AppendRow(row)
	}

	for i := 0; i < tx.Len(); i++ {
		var matches []int
		if key, ok := joinKey(tx.Get(i, domain.ColCustomerID)); ok {
			matches = index[key]
		}

		switch {
		case len(matches) == 0:
			diag.UnmatchedTransactions++
			if err := appendRow(tx.Row(i), nullPerf); err != nil {
				return nil, err
			}
		case c.policy == JoinFirst:
			if err := appendRow(tx.Row(i), performance.Row(matches[0])); err != nil {
				return nil, err
			}
		default:
			diag.FanOutRows += len(matches) - 1
			for _, m := range matches {
				if err := appendRow(tx.Row(i), performance.Row(m)); err != nil {
					return nil, err
				}
			}
		}
	}

	return merged, nil
}

// indexPerformance maps canonical CIF keys to performance row positions
func (c *Cleaner) indexPerformance(performance *domain.Table) (map[string][]int, error) {
	index := make(map[string][]int, performance.Len())
	for i := 0; i < performance.Len(); i++ {
		key, ok := joinKey(performance.Get(i, domain.ColCIF))
		if !ok {
			continue
		}
		if c.policy == JoinReject && len(index[key]) > 0 {
			return nil, errors.NewAppValidationError("performance data has duplicate CIF keys").
				WithContext("cif", key)
		}
		index[key] = append(index[key], i)
	}
	return index, nil
}

// resolveReportDateCollision keeps the transaction report date under its
// original name and drops the performance one
func resolveReportDateCollision(t *domain.Table) {
	left := domain.ColReportDate + leftSuffix
	right := domain.ColReportDate + rightSuffix
	if t.Has(left) {
		_ = t.RenameColumn(left, domain.ColReportDate)
	}
	if t.Has(right) {
		_ = t.DropColumn(right)
	}
}

// fillDaysPastDue coerces FDPDUE00 to a number, replacing anything else with
// zero, or adds it as all zero when absent
func fillDaysPastDue(t *domain.Table, diag *domain.Diagnostics) error {
	values := make([]domain.Value, t.Len())
	if !t.Has(domain.ColDaysPastDue) {
		for i := range values {
			values[i] = domain.Number(0)
		}
		diag.DPDSynthesized = true
		return t.AddColumn(domain.ColDaysPastDue, values)
	}

	for i := range values {
		v, _ := toNumber(t.Get(i, domain.ColDaysPastDue))
		if v.IsNull() {
			v = domain.Number(0)
			diag.DPDCoercedToZero++
		}
		values[i] = v
	}
	return t.AddColumn(domain.ColDaysPastDue, values)
}
