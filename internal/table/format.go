package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type dtypeKind int

const (
	kindAuto dtypeKind = iota
	kindText
	kindInt
	kindFloat
	kindExp
	kindCustom
)

// DType selects how a body cell value is turned into text. The zero value
// is Auto.
type DType struct {
	kind dtypeKind
	fn   func(any) string
}

// Built-in datatypes.
var (
	// Auto renders numbers as integer, fixed-point, or exponential
	// depending on magnitude and integrality, and anything else as text.
	Auto = DType{kind: kindAuto}
	// Text renders the value as is.
	Text = DType{kind: kindText}
	// Int rounds numbers half to even and renders them without a
	// fractional part.
	Int = DType{kind: kindInt}
	// Float renders numbers in fixed-point notation.
	Float = DType{kind: kindFloat}
	// Exp renders numbers in exponential notation.
	Exp = DType{kind: kindExp}
)

// Custom returns a datatype that renders values with fn.
func Custom(fn func(any) string) DType {
	return DType{kind: kindCustom, fn: fn}
}

// autoExpThreshold is the magnitude above which Auto switches to
// exponential notation.
const autoExpThreshold = 1e8

func (d DType) format(v any, precision int) string {
	switch d.kind {
	case kindText:
		return toText(v)
	case kindCustom:
		return d.fn(v)
	}

	f, ok := toFloat(v)
	if !ok {
		return toText(v)
	}
	switch d.kind {
	case kindInt:
		return formatInt(f)
	case kindFloat:
		return formatFixed(f, precision)
	case kindExp:
		return formatExp(f, precision)
	default:
		return formatAuto(f, precision)
	}
}

func formatAuto(f float64, precision int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.Abs(f) > autoExpThreshold:
		return formatExp(f, precision)
	case f == math.Trunc(f):
		return formatInt(f)
	default:
		return formatFixed(f, precision)
	}
}

func formatInt(f float64) string {
	if s, ok := nonFinite(f); ok {
		return s
	}
	r := math.RoundToEven(f)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

func formatFixed(f float64, precision int) string {
	if s, ok := nonFinite(f); ok {
		return s
	}
	return strconv.FormatFloat(f, 'f', precision, 64)
}

func formatExp(f float64, precision int) string {
	if s, ok := nonFinite(f); ok {
		return s
	}
	return strconv.FormatFloat(f, 'e', precision, 64)
}

func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}
	return "", false
}

// toFloat reports whether v is numeric, converting numeric strings as well.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	}
	return fmt.Sprint(v)
}
