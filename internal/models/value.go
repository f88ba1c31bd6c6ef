package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
	KindList   ValueKind = "list"
	KindObject ValueKind = "object"
)

// Value holds the heterogeneous data carried by rules and candidate
// sources: a scalar, a (possibly nested) list, or an object.
type Value struct {
	Kind   ValueKind
	Str    string
	Num    float64
	Bool   bool
	Items  []Value
	Fields map[string]Value
}

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

func Null() Value { return Value{Kind: KindNull} }

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, Items: items}
}

func StringList(items ...string) Value {
	values := make([]Value, 0, len(items))
	for _, s := range items {
		values = append(values, String(s))
	}
	return List(values...)
}

func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{Kind: KindObject, Fields: fields}
}

// FromAny converts a decoded JSON/YAML value into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return List(items...)
	case []string:
		return StringList(t...)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Object(fields)
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[fmt.Sprint(k)] = FromAny(item)
		}
		return Object(fields)
	default:
		return String(fmt.Sprint(t))
	}
}

func (v Value) IsNull() bool {
	return v.Kind == "" || v.Kind == KindNull
}

// IsEmpty reports whether the value carries no usable data: null, blank
// strings, and lists or objects made only of empty values.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindString:
		return strings.TrimSpace(v.Str) == ""
	case KindNumber, KindBool:
		return false
	case KindList:
		for _, item := range v.Items {
			if !item.IsEmpty() {
				return false
			}
		}
		return true
	case KindObject:
		for _, item := range v.Fields {
			if !item.IsEmpty() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Strings flattens the value into its non-blank scalar texts, in order.
func (v Value) Strings() []string {
	var out []string
	v.collectStrings(&out)
	return out
}

func (v Value) collectStrings(out *[]string) {
	switch v.Kind {
	case KindString:
		if s := strings.TrimSpace(v.Str); s != "" {
			*out = append(*out, s)
		}
	case KindNumber:
		*out = append(*out, strconv.FormatFloat(v.Num, 'f', -1, 64))
	case KindBool:
		*out = append(*out, strconv.FormatBool(v.Bool))
	case KindList:
		for _, item := range v.Items {
			item.collectStrings(out)
		}
	case KindObject:
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v.Fields[k].collectStrings(out)
		}
	}
}

// Text joins every scalar text of the value with single spaces.
func (v Value) Text() string {
	return strings.Join(v.Strings(), " ")
}

// Number returns the numeric reading of the value. Strings yield the first
// number they contain ("6.5 years" -> 6.5); single-item lists unwrap.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		match := numberPattern.FindString(v.Str)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindList:
		if len(v.Items) == 1 {
			return v.Items[0].Number()
		}
	}
	return 0, false
}

// Field returns an object member, or null when absent.
func (v Value) Field(name string) Value {
	if v.Kind != KindObject {
		return Null()
	}
	if f, ok := v.Fields[name]; ok {
		return f
	}
	return Null()
}

// Any converts the value back to plain Go types.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindList:
		out := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, item.Any())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Fields))
		for k, item := range v.Fields {
			out[k] = item.Any()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}

	*v = FromAny(raw)
	return nil
}

func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}
