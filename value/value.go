// Package value defines Value, the tagged field-value scalar that QVD symbol tables and
// records are built from (spec.md §3, §9).
package value

import (
	"fmt"
	"time"
)

// Kind discriminates which variant a Value holds.
type Kind uint8

const (
	// KindNull represents a SQL-style null / absent value.
	KindNull Kind = iota
	// KindInt32 represents a signed 32-bit integer value.
	KindInt32
	// KindFloat64 represents a 64-bit floating point value.
	KindFloat64
	// KindText represents a UTF-8 string value.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt32:
		return "Int32"
	case KindFloat64:
		return "Float64"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Value is a tagged variant holding one of Null, Int32, Float64, or Text.
//
// The "dual" on-disk symbol kinds (DualInt, DualFloat) carry both a textual and a
// numeric representation of the same logical value; per spec.md §4.2 only the text is
// retained as the canonical value once decoded, so a dual symbol materializes as a
// plain KindText Value. DualInt/DualFloat constructors exist for the encoder side,
// which needs the numeric part to choose the on-disk payload.
type Value struct {
	kind Kind
	i32  int32
	f64  float64
	text string
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Int32 returns an Int32 value.
func Int32(v int32) Value { return Value{kind: KindInt32, i32: v} }

// Float64 returns a Float64 value.
func Float64(v float64) Value { return Value{kind: KindFloat64, f64: v} }

// Text returns a Text value.
func Text(v string) Value { return Value{kind: KindText, text: v} }

// DualInt returns a value carrying both an integer and its textual form; decoding and
// materialization treat it as Text (spec.md §4.2), but the integer is retained for
// callers (e.g. the writer) that need the numeric part to pick an on-disk encoding.
func DualInt(text string, n int32) Value {
	return Value{kind: KindText, text: text, i32: n}
}

// DualFloat returns a value carrying both a float and its textual form; see DualInt.
func DualFloat(text string, f float64) Value {
	return Value{kind: KindText, text: text, f64: f}
}

// dateEpoch is the epoch Date and Timestamp symbols are measured against, matching the
// reference writer's "(value - datetime(1900, 1, 1)).days".
var dateEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// DateDays builds the dual symbol for a calendar date column (spec.md §4.5 symbol
// type 5): t's whole days since the 1900-01-01 epoch as the numeric payload, "%Y-%m-%d"
// as the text.
func DateDays(t time.Time) Value {
	t = t.UTC()
	days := int32(t.Sub(dateEpoch).Hours() / 24)

	return DualInt(t.Format("2006-01-02"), days)
}

// TimestampAt builds the dual symbol for a full timestamp column (spec.md §4.5 symbol
// type 66): t's fractional days since the 1900-01-01 epoch as the numeric payload,
// "%Y-%m-%d %H:%M:%S" as the text.
func TimestampAt(t time.Time) Value {
	t = t.UTC()
	days := t.Sub(dateEpoch).Hours() / 24

	return DualFloat(t.Format("2006-01-02 15:04:05"), days)
}

// TimeOfDay builds the dual symbol for a time-of-day column (spec.md §4.5 symbol type
// 6): the fraction of a day elapsed since t's midnight as the numeric payload,
// "%H:%M:%S" as the text.
func TimeOfDay(t time.Time) Value {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	frac := t.Sub(midnight).Hours() / 24

	return DualFloat(t.Format("15:04:05"), frac)
}

// IsNull reports whether v holds the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsInt32 returns the integer payload and whether v holds an Int32 variant.
func (v Value) AsInt32() (int32, bool) {
	return v.i32, v.kind == KindInt32
}

// AsFloat64 returns the float payload and whether v holds a Float64 variant.
func (v Value) AsFloat64() (float64, bool) {
	return v.f64, v.kind == KindFloat64
}

// AsText returns the string payload and whether v holds a Text variant.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// DualInt32 returns the integer part retained alongside a DualInt-constructed Text
// value. Only meaningful for values produced by DualInt.
func (v Value) DualInt32() int32 { return v.i32 }

// DualFloat64 returns the float part retained alongside a DualFloat-constructed Text
// value. Only meaningful for values produced by DualFloat.
func (v Value) DualFloat64() float64 { return v.f64 }

// Any boxes v as an interface{} holding its canonical Go representation: nil, int32,
// float64, or string.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindInt32:
		return v.i32
	case KindFloat64:
		return v.f64
	case KindText:
		return v.text
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "<null>"
	case KindInt32:
		return fmt.Sprintf("%d", v.i32)
	case KindFloat64:
		return fmt.Sprintf("%g", v.f64)
	case KindText:
		return v.text
	default:
		return "<unknown>"
	}
}
