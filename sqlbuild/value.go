package sqlbuild

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "null"
	}
}

// Value is a request-supplied scalar: text, number, boolean or null.
// The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
}

func Null() Value           { return Value{} }
func Text(s string) Value    { return Value{kind: KindText, text: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Int(i int64) Value      { return Value{kind: KindNumber, num: float64(i)} }
func Bool(b bool) Value      { return Value{kind: KindBool, flag: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Any returns the value in the form handed to database/sql as a bound
// argument. Integral numbers become int64 so they bind cleanly to integer
// columns; null becomes nil.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		if isIntegral(v.num) {
			return int64(v.num)
		}
		return v.num
	case KindBool:
		return v.flag
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return "null"
	}
}

// number reports the numeric reading of v. Text is accepted when it parses
// as a number, which is how query-string values arrive.
func (v Value) number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (v Value) boolean() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.flag, true
	case KindText:
		b, err := strconv.ParseBool(strings.TrimSpace(v.text))
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON accepts any JSON scalar. Arrays and objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("sqlbuild: empty value")
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("sqlbuild: invalid value %s", data)
		}
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("sqlbuild: invalid boolean: %w", err)
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("sqlbuild: invalid string: %w", err)
		}
		*v = Text(s)
	case '{', '[':
		return fmt.Errorf("sqlbuild: nested values are not supported")
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("sqlbuild: invalid number: %w", err)
		}
		*v = Number(f)
	}
	return nil
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}
