package mapdata

import (
	"strconv"
)

// ValueKind identifies which member of a Value is populated.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Value is a single typed map object property.
type Value struct {
	kind ValueKind
	b    bool
	i    int
	f    float64
	s    string
}

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindNone }
func (v Value) Equal(o Value) bool { return v == o }

// AsBool converts the value to a bool. Numbers are true when non-zero, strings when non-empty.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != "" && v.s != "false" && v.s != "0"
	}
	return false
}

// AsInt converts the value to an int, truncating floats.
func (v Value) AsInt() int {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt:
		return v.i
	case KindFloat:
		return int(v.f)
	case KindString:
		n, err := strconv.Atoi(v.s)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func (v Value) AsString() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	}
	return ""
}

func (v Value) String() string {
	return v.AsString()
}

// ValueOf converts a plain Go value (as decoded from YAML) into a Value.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(t)
	case int64:
		return IntValue(int(t))
	case float64:
		return FloatValue(t)
	case float32:
		return FloatValue(float64(t))
	case string:
		return StringValue(t)
	case Value:
		return t
	}
	return Value{}
}

// Properties is a bag of named property values.
type Properties map[string]Value

// Clone returns a copy of the property bag.
func (p Properties) Clone() Properties {
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Equal reports whether both bags hold exactly the same properties.
func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Opt is a property value shared across several objects. Mixed is set when the objects
// disagree, Set is false when there were no objects to look at.
type Opt[T comparable] struct {
	Value T
	Set   bool
	Mixed bool
}

func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Set && !o.Mixed
}

func commonOf[T comparable](objs []Object, get func(Object) T) Opt[T] {
	var o Opt[T]
	for _, obj := range objs {
		v := get(obj)
		if !o.Set {
			o.Value = v
			o.Set = true
			continue
		}
		if v != o.Value {
			o.Mixed = true
			return o
		}
	}
	return o
}

func CommonInt(objs []Object, name string) Opt[int] {
	return commonOf(objs, func(o Object) int { return o.IntProp(name) })
}

func CommonFloat(objs []Object, name string) Opt[float64] {
	return commonOf(objs, func(o Object) float64 { return o.FloatProp(name) })
}

func CommonString(objs []Object, name string) Opt[string] {
	return commonOf(objs, func(o Object) string { return o.StringProp(name) })
}

func CommonBool(objs []Object, name string) Opt[bool] {
	return commonOf(objs, func(o Object) bool { return o.BoolProp(name) })
}
