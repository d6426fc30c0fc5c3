package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the scalar type held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single table cell. The zero Value is null.
// Numbers are held as decimals so sums over amounts stay exact.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	b    bool
	t    time.Time
}

// Null is the missing/undefined cell
var Null = Value{}

func NewString(s string) Value { return Value{kind: KindString, str: s} }

func NewNumber(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

func NewInt(n int64) Value { return Value{kind: KindNumber, num: decimal.NewFromInt(n)} }

func NewFloat(f float64) Value { return Value{kind: KindNumber, num: decimal.NewFromFloat(f)} }

func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

func NewTime(t time.Time) Value { return Value{kind: KindTime, t: t} }

// FromScalar converts a decoded JSON/YAML scalar into a Value.
// Unknown types are rendered with fmt and kept as strings.
func FromScalar(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case string:
		return NewString(x)
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return NewString(x.String())
		}
		return NewNumber(d)
	case decimal.Decimal:
		return NewNumber(x)
	case float64:
		return NewFloat(x)
	case float32:
		return NewFloat(float64(x))
	case int:
		return NewInt(int64(x))
	case int32:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case bool:
		return NewBool(x)
	case time.Time:
		return NewTime(x)
	default:
		return NewString(fmt.Sprint(x))
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsDecimal() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// String renders the cell for display and grouping. Null renders empty.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Key returns a kind-qualified identity usable as a map key, so that the
// string "1" and the number 1 never collide.
func (v Value) Key() string {
	return v.kind.String() + ":" + v.String()
}

// Equal reports whether two cells hold the same kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num.Equal(o.num)
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// MarshalJSON writes numbers as bare JSON numbers and times as RFC3339
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}
