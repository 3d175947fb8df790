// Package value contains the typed scalar used to render JSON-originated data
// as SQL literal text. Rendering never consults a schema catalog: the same
// value always renders the same way whatever the target column type.
package value

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind enumerates the closed set of variants.
type Kind int

const (
	Null Kind = iota
	Text
	Boolean
	Integer
	Float
	Timestamp
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Timestamp:
		return "timestamp"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// TimestampLayout is the zone-less layout used for Timestamp rendering.
const TimestampLayout = "2006-01-02 15:04:05.999999"

// Value is one scalar of a known kind. The zero Value is NULL.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
	t    time.Time
}

func NewText(s string) Value { return Value{kind: Text, s: s} }

func NewBool(b bool) Value { return Value{kind: Boolean, b: b} }

func NewInt(i int64) Value { return Value{kind: Integer, i: i} }

func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

func NewTimestamp(t time.Time) Value { return Value{kind: Timestamp, t: t} }

// NullValue returns the NULL variant.
func NullValue() Value { return Value{kind: Null} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == Null }

// Literal renders v as SQL literal text: Text and Timestamp quoted,
// Boolean, Integer and Float bare, Null as NULL.
func (v Value) Literal() string {
	switch v.kind {
	case Text:
		return quote(v.s)
	case Timestamp:
		return quote(v.t.Format(TimestampLayout))
	case Boolean, Integer, Float:
		return v.Source()
	}
	return "NULL"
}

// Source renders v as a plain value, the way it reads back to a caller.
func (v Value) Source() string {
	switch v.kind {
	case Text:
		return v.s
	case Boolean:
		return strconv.FormatBool(v.b)
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Timestamp:
		return v.t.Format(TimestampLayout)
	}
	return "NULL"
}

func (v Value) String() string { return v.Literal() }

// quote is the single escaping routine for inline literals. Statements are
// still assembled by interpolation, so this only keeps quoted text intact.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// FromJSON converts a decoded JSON scalar into a Value. Numbers are expected
// as json.Number (decoder.UseNumber) so that integers and fractional numbers
// keep their lexical distinction; plain float64 is accepted too. Arrays and
// objects report ok=false.
func FromJSON(raw any) (v Value, ok bool) {
	switch x := raw.(type) {
	case nil:
		return NullValue(), true
	case bool:
		return NewBool(x), true
	case string:
		return NewText(x), true
	case json.Number:
		return fromNumber(x), true
	case float64:
		return NewFloat(x), true
	case int:
		return NewInt(int64(x)), true
	case int64:
		return NewInt(x), true
	}
	return Value{}, false
}

func fromNumber(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return NewInt(i)
		}
	}
	f, err := n.Float64()
	if err != nil {
		// out of range for float64 too; keep the digits verbatim
		return NewText(s)
	}
	return NewFloat(f)
}
