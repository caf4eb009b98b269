package domain

import "sort"

// Diagnostics counts the values that were silently coerced while cleaning
// and engineering features. Nothing is rejected; the counts only make the
// substitutions visible in logs and metrics.
type Diagnostics struct {
	DuplicatesRemoved     int            `json:"duplicates_removed"`
	UnmatchedTransactions int            `json:"unmatched_transactions"`
	FanOutRows            int            `json:"fan_out_rows"`
	DPDCoercedToZero      int            `json:"dpd_coerced_to_zero"`
	DPDSynthesized        bool           `json:"dpd_synthesized"`
	UnknownStages         int            `json:"unknown_stages"`
	UnbucketedDPD         int            `json:"unbucketed_dpd"`
	DatesNulled           map[string]int `json:"dates_nulled,omitempty"`
	NumbersNulled         map[string]int `json:"numbers_nulled,omitempty"`
}

// AddDateNulled records a date value that could not be parsed
func (d *Diagnostics) AddDateNulled(column string) {
	if d.DatesNulled == nil {
		d.DatesNulled = make(map[string]int)
	}
	d.DatesNulled[column]++
}

// AddNumberNulled records a non-numeric value that was replaced by null
func (d *Diagnostics) AddNumberNulled(column string) {
	if d.NumbersNulled == nil {
		d.NumbersNulled = make(map[string]int)
	}
	d.NumbersNulled[column]++
}

// Merge adds the counts of o into d
func (d *Diagnostics) Merge(o Diagnostics) {
	d.DuplicatesRemoved += o.DuplicatesRemoved
	d.UnmatchedTransactions += o.UnmatchedTransactions
	d.FanOutRows += o.FanOutRows
	d.DPDCoercedToZero += o.DPDCoercedToZero
	d.DPDSynthesized = d.DPDSynthesized || o.DPDSynthesized
	d.UnknownStages += o.UnknownStages
	d.UnbucketedDPD += o.UnbucketedDPD
	for c, n := range o.DatesNulled {
		if d.DatesNulled == nil {
			d.DatesNulled = make(map[string]int)
		}
		d.DatesNulled[c] += n
	}
	for c, n := range o.NumbersNulled {
		if d.NumbersNulled == nil {
			d.NumbersNulled = make(map[string]int)
		}
		d.NumbersNulled[c] += n
	}
}

// Rejected returns the total number of values substituted by null or zero
func (d Diagnostics) Rejected() int {
	n := d.DPDCoercedToZero + d.UnbucketedDPD
	for _, c := range sortedKeys(d.DatesNulled) {
		n += d.DatesNulled[c]
	}
	for _, c := range sortedKeys(d.NumbersNulled) {
		n += d.NumbersNulled[c]
	}
	return n
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
