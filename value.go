package jsonfield

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Member is one name/value pair of an Object.
type Member struct {
	Name  string
	Value any
}

// Object is a JSON object that remembers the order in which its members
// were inserted. Decode produces *Object for every JSON object so that
// Encode can reproduce the source order exactly.
//
// Values held by an Object (and by the []any slices Decode produces) are
// nil, bool, json.Number, string, []any or *Object.
type Object struct {
	members []Member
	index   map[string]int

	// marshaling counts MarshalJSON calls in progress on this object.
	marshaling int32
}

// NewObject returns an empty object, optionally seeded with members.
// Duplicate names keep the first position and the last value.
func NewObject(members ...Member) *Object {
	o := &Object{}
	for _, m := range members {
		o.Set(m.Name, m.Value)
	}
	return o
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under name.
func (o *Object) Get(name string) (any, bool) {
	if o == nil || o.index == nil {
		return nil, false
	}
	i, ok := o.index[name]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Set stores value under name. An existing member keeps its position.
func (o *Object) Set(name string, value any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[name]; ok {
		o.members[i].Value = value
		return
	}
	o.index[name] = len(o.members)
	o.members = append(o.members, Member{Name: name, Value: value})
}

// Delete removes name, preserving the order of the remaining members.
func (o *Object) Delete(name string) bool {
	if o == nil || o.index == nil {
		return false
	}
	i, ok := o.index[name]
	if !ok {
		return false
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
	delete(o.index, name)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].Name] = j
	}
	return true
}

// Keys returns member names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Name
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return append([]Member(nil), o.members...)
}

// MarshalJSON encodes o with its members in insertion order.
// A value reaching o again through a type encoding/json marshals, such as
// []*Object, is reported as ErrUnencodable once the re-entries pass maxDepth.
func (o *Object) MarshalJSON() ([]byte, error) {
	defer atomic.AddInt32(&o.marshaling, -1)
	if atomic.AddInt32(&o.marshaling, 1) > maxDepth {
		return nil, fmt.Errorf("jsonfield: %w: object re-entered while marshaling (cyclic value?)", ErrUnencodable)
	}

	var buf bytes.Buffer
	if err := writeCompact(&buf, o, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the members of o with those of the JSON object in
// data, keeping their source order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("jsonfield: cannot unmarshal %T into Object: %w", v, ErrMalformed)
	}
	o.members, o.index = obj.members, obj.index
	return nil
}

// Equal reports whether a and b are structurally equal decoded values.
// Object member order is significant; numbers compare by literal text.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case json.Number:
		y, ok := b.(json.Number)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, m := range x.members {
			n := y.members[i]
			if m.Name != n.Name || !Equal(m.Value, n.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
