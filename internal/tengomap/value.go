// SPDX-License-Identifier: AGPL-3.0-or-later

package tengomap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies which scalar a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is a scalar Tengo map value: a boolean, an integer, a float or a
// string. The zero Value is the empty string. Integers outside the int64
// range are held exactly in n.
type Value struct {
	kind Kind
	b    bool
	i    int64
	n    *big.Int
	f    float64
	s    string
}

func Bool(v bool) Value     { return Value{kind: KindBool, b: v} }
func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// BigInt holds an arbitrary-size integer. Values that fit in int64 become
// plain Int values.
func BigInt(v *big.Int) Value {
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return Value{kind: KindInt, n: new(big.Int).Set(v)}
}
func String(v string) Value    { return Value{kind: KindString, s: v} }
func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// Interface returns the Go value held by v.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		if v.n != nil {
			return new(big.Int).Set(v.n)
		}
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}

func (v Value) bigInt() *big.Int {
	if v.n != nil {
		return v.n
	}
	return big.NewInt(v.i)
}

func (v Value) bigFloat() (*big.Float, bool) {
	if v.kind == KindInt {
		return new(big.Float).SetInt(v.bigInt()), true
	}
	if math.IsNaN(v.f) {
		return nil, false
	}
	return big.NewFloat(v.f), true
}

// Equal compares semantically. Integers and floats compare by numeric value,
// so 10 and 10.0 are equal; every other pairing needs matching kinds.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.bigInt().Cmp(other.bigInt()) == 0
		}
		a, okA := v.bigFloat()
		b, okB := other.bigFloat()
		return okA && okB && a.Cmp(b) == 0
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	default:
		return v.s == other.s
	}
}

// Render formats v as a Tengo literal.
func (v Value) Render() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		if v.n != nil {
			return v.n.String()
		}
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return quote(v.s)
	}
}

func (v Value) String() string {
	if v.kind == KindString {
		return v.s
	}
	return v.Render()
}

// GoString keeps test failure output readable.
func (v Value) GoString() string {
	return fmt.Sprintf("tengomap.%s(%s)", v.kind, v.Render())
}

// formatFloat keeps a decimal point on integral values so a float stays a
// float when the script is read back.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// unquote decodes a JSON string literal. Malformed escapes fall back to the
// text between the quotes.
func unquote(s string) string {
	var out string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return strings.Trim(s, `"`)
	}
	return out
}

func parseBoolLiteral(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseNumber(s string) (Value, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return Int(i), true
	}
	if errors.Is(err, strconv.ErrRange) {
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return BigInt(n), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Value{}, false
}

// ParseLiteral interprets raw text found on the right-hand side of a map
// entry: boolean, then quoted string, then integer, then float, otherwise
// the trimmed text itself.
func ParseLiteral(raw string) Value {
	s := strings.TrimSpace(raw)
	if b, ok := parseBoolLiteral(s); ok {
		return Bool(b)
	}
	if isQuoted(s) {
		return String(unquote(s))
	}
	if v, ok := parseNumber(s); ok {
		return v
	}
	return String(s)
}
