package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"nplreport/pkg/contracts/domain"
)

// naTokens are the cell texts read as missing values
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// cellValue converts raw cell text to a text value, or null for NA tokens
func cellValue(raw string) domain.Value {
	if _, ok := naTokens[strings.TrimSpace(raw)]; ok {
		return domain.Null()
	}
	return domain.Text(raw)
}

// toNumber coerces a value to a number. ok is false when a non-null value
// could not be converted.
func toNumber(v domain.Value) (domain.Value, bool) {
	switch v.Kind() {
	case domain.KindNull:
		return v, true
	case domain.KindNumber:
		return v, true
	case domain.KindBool:
		b, _ := v.AsBool()
		if b {
			return domain.Number(1), true
		}
		return domain.Number(0), true
	case domain.KindText:
		s, _ := v.AsText()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.Null(), false
		}
		return domain.Number(f), true
	default:
		return domain.Null(), false
	}
}

// toDate parses a YYYYMMDD encoded value. ok is false when a non-null value
// is not exactly eight digits forming a valid calendar date.
func toDate(v domain.Value) (domain.Value, bool) {
	var s string
	switch v.Kind() {
	case domain.KindNull:
		return v, true
	case domain.KindDate:
		return v, true
	case domain.KindNumber:
		f, _ := v.AsNumber()
		if f != math.Trunc(f) || f < 0 || f > 99999999 {
			return domain.Null(), false
		}
		s = strconv.FormatInt(int64(f), 10)
	case domain.KindText:
		s, _ = v.AsText()
		s = strings.TrimSpace(s)
	default:
		return domain.Null(), false
	}

	if len(s) != 8 {
		return domain.Null(), false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return domain.Null(), false
		}
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return domain.Null(), false
	}
	return domain.Date(t), true
}

// joinKey canonicalises a join key so that 123, "123.0" and " 123" compare
// equal. Null keys return ok false and never match.
func joinKey(v domain.Value) (string, bool) {
	switch v.Kind() {
	case domain.KindNull:
		return "", false
	case domain.KindNumber:
		f, _ := v.AsNumber()
		return numberKey(f), true
	case domain.KindText:
		s, _ := v.AsText()
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return numberKey(f), true
		}
		return s, true
	default:
		return v.String(), true
	}
}

func numberKey(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// wholeDays returns the number of calendar days from a to b
func wholeDays(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
