package domain

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the layout used when a date cell is rendered as text
const DateLayout = "2006-01-02"

// Kind identifies the dynamic type held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a single nullable cell of a Table.
// The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	date time.Time
	flag bool
}

// Null returns the null value
func Null() Value {
	return Value{}
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value. NaN is stored as null.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Date returns a date value truncated to the calendar day in UTC
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsText returns the text and true when the value is text
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsNumber returns the number and true when the value is numeric
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsDate returns the date and true when the value is a date
func (v Value) AsDate() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// AsBool returns the flag and true when the value is a boolean
func (v Value) AsBool() (bool, bool) {
	return v.flag, v.kind == KindBool
}

// String renders the value the way it is written to CSV; null renders empty
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format(DateLayout)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	case KindBool:
		return v.flag == o.flag
	default:
		return true
	}
}

// key returns an encoding that is equal for equal values
func (v Value) key() string {
	return strconv.Itoa(int(v.kind)) + ":" + v.String()
}
