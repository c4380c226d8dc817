// Package prefs implements the keyboard's typed key-value preference store.
//
// Values are one of six kinds, matching Android SharedPreferences:
// boolean, int (32-bit), long (64-bit), float (32-bit), string and
// string set. Stores are mutated through an Editor and persisted on
// Commit; concurrent writers follow last-write-wins.
package prefs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the type of a preference value.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindLong
	KindFloat
	KindString
	KindStringSet
)

var kindNames = [...]string{"boolean", "int", "long", "float", "string", "set"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a type name ("boolean", "int", ...) into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "boolean", "bool":
		return KindBool, nil
	case "int":
		return KindInt, nil
	case "long":
		return KindLong, nil
	case "float":
		return KindFloat, nil
	case "string", "":
		return KindString, nil
	case "set", "stringset", "string-set":
		return KindStringSet, nil
	}
	return 0, fmt.Errorf("unknown preference type %q (valid: boolean, int, long, float, string, set)", s)
}

// Value is a single typed preference value.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float32
	s    string
	set  []string // sorted, deduplicated
}

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns a 32-bit integer value.
func Int(v int32) Value { return Value{kind: KindInt, i: int64(v)} }

// Long returns a 64-bit integer value.
func Long(v int64) Value { return Value{kind: KindLong, i: v} }

// Float returns a 32-bit float value.
func Float(v float32) Value { return Value{kind: KindFloat, f: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// StringSet returns a string set value. Duplicates are dropped.
func StringSet(v ...string) Value {
	seen := make(map[string]bool, len(v))
	set := make([]string, 0, len(v))
	for _, s := range v {
		if !seen[s] {
			seen[s] = true
			set = append(set, s)
		}
	}
	sort.Strings(set)
	return Value{kind: KindStringSet, set: set}
}

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the int and whether the value is an int.
func (v Value) AsInt() (int32, bool) { return int32(v.i), v.kind == KindInt }

// AsLong returns the long and whether the value is a long.
func (v Value) AsLong() (int64, bool) { return v.i, v.kind == KindLong }

// AsFloat returns the float and whether the value is a float.
func (v Value) AsFloat() (float32, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsStringSet returns a copy of the set and whether the value is a set.
func (v Value) AsStringSet() ([]string, bool) {
	if v.kind != KindStringSet {
		return nil, false
	}
	out := make([]string, len(v.set))
	copy(out, v.set)
	return out, true
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt, KindLong:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindStringSet:
		if len(v.set) != len(o.set) {
			return false
		}
		for i := range v.set {
			if v.set[i] != o.set[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Format renders the value for display.
func (v Value) Format() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt, KindLong:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case KindString:
		return v.s
	case KindStringSet:
		return "[" + strings.Join(v.set, ", ") + "]"
	}
	return ""
}

// ParseValue parses text into a value of the given kind. Set members are
// separated by commas.
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid boolean %q", text)
		}
		return Bool(b), nil
	case KindInt:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int %q", text)
		}
		return Int(int32(n)), nil
	case KindLong:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid long %q", text)
		}
		return Long(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float %q", text)
		}
		return Float(float32(f)), nil
	case KindString:
		return String(text), nil
	case KindStringSet:
		if text == "" {
			return StringSet(), nil
		}
		parts := strings.Split(text, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return StringSet(parts...), nil
	}
	return Value{}, fmt.Errorf("unsupported kind %v", kind)
}
