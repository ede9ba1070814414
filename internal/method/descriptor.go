// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"context"
	"fmt"
	"math"
	"reflect"
)

// Kind is the value type a positional argument binds to.
type Kind int

// Supported argument kinds.
const (
	KindAny Kind = iota
	KindString
	KindInt
	KindNumber
	KindBool
	KindTable
)

var kindNames = map[Kind]string{
	KindAny:    "any",
	KindString: "string",
	KindInt:    "integer",
	KindNumber: "number",
	KindBool:   "boolean",
	KindTable:  "table",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type source int

const (
	fromArgument source = iota
	fromContext
)

// Param declares how one method parameter is bound.
type Param struct {
	Name     string
	Kind     Kind
	Optional bool

	source   source
	match    func(any) bool
	typeName string
}

// Arg declares a required positional argument.
func Arg(name string, kind Kind) Param {
	return Param{Name: name, Kind: kind}
}

// OptionalArg declares an optional positional argument.
func OptionalArg(name string, kind Kind) Param {
	return Param{Name: name, Kind: kind, Optional: true}
}

// FromContext declares a parameter pulled from the ambient chain: the
// nearest ambient object assignable to V. A method with such a parameter is
// only visible when the ambient chain holds a matching object.
func FromContext[V any](name string) Param {
	return Param{
		Name:     name,
		source:   fromContext,
		match:    func(v any) bool { _, ok := v.(V); return ok },
		typeName: reflect.TypeFor[V]().String(),
	}
}

// IsContext reports whether the parameter is bound from the ambient chain.
func (p Param) IsContext() bool {
	return p.source == fromContext
}

// String renders the parameter for documentation.
func (p Param) String() string {
	if p.source == fromContext {
		return fmt.Sprintf("<%s %s>", p.Name, p.typeName)
	}
	s := p.Name + ": " + p.Kind.String()
	if p.Optional {
		s = "[" + s + "]"
	}
	return s
}

// Descriptor is the metadata of one invocable method on one target type.
type Descriptor struct {
	// Name is the name scripts call the method by.
	Name string
	// Module is the capability module owning the method. Grants are checked
	// against "<Module>.<Name>".
	Module string
	// Mod names the integration that must be installed for the method to be
	// registered. Empty for built-in methods.
	Mod string
	// Requires is an optional semver constraint on the installed Mod version.
	Requires string
	// WorldThread requires the method to run on the world goroutine.
	WorldThread bool
	// Cost is charged against the family's handler on every call.
	Cost int64
	// Doc is the human readable documentation.
	Doc string
	// Params declares argument bindings in call order.
	Params []Param
}

// Capability returns the grant string checked before exposing the method.
func (d *Descriptor) Capability() string {
	if d.Module == "" {
		return d.Name
	}
	return d.Module + "." + d.Name
}

// Signature renders the method with its positional parameters.
func (d *Descriptor) Signature() string {
	s := d.Name + "("
	first := true
	for _, p := range d.Params {
		if p.IsContext() {
			continue
		}
		if !first {
			s += ", "
		}
		s += p.String()
		first = false
	}
	return s + ")"
}

// Arguments are the bound values of one call.
type Arguments struct {
	positional []any
	named      map[string]any
}

// Len returns the number of positional arguments bound, including absent
// optional ones.
func (a Arguments) Len() int {
	return len(a.positional)
}

// Value returns the value bound to the named parameter.
func (a Arguments) Value(name string) (any, bool) {
	v, ok := a.named[name]
	return v, ok && v != nil
}

// String returns positional argument i as a string.
func (a Arguments) String(i int) string {
	s, _ := a.at(i).(string)
	return s
}

// Int returns positional argument i as an integer.
func (a Arguments) Int(i int) int64 {
	n, _ := a.at(i).(int64)
	return n
}

// IntOr returns positional argument i, or def when it was omitted.
func (a Arguments) IntOr(i int, def int64) int64 {
	if n, ok := a.at(i).(int64); ok {
		return n
	}
	return def
}

// Number returns positional argument i as a float.
func (a Arguments) Number(i int) float64 {
	f, _ := a.at(i).(float64)
	return f
}

// Bool returns positional argument i as a boolean.
func (a Arguments) Bool(i int) bool {
	b, _ := a.at(i).(bool)
	return b
}

// Table returns positional argument i as a table.
func (a Arguments) Table(i int) map[any]any {
	t, _ := a.at(i).(map[any]any)
	return t
}

// Any returns positional argument i unconverted.
func (a Arguments) Any(i int) any {
	return a.at(i)
}

func (a Arguments) at(i int) any {
	if i < 0 || i >= len(a.positional) {
		return nil
	}
	return a.positional[i]
}

// Call is what a method implementation receives.
type Call[T any] struct {
	// Context is the freshly baked context the method runs against.
	Context *Context
	// Target is the context's target.
	Target T
	// Args holds the bound arguments.
	Args Arguments
}

// Func implements a method on targets of type T.
type Func[T any] func(ctx context.Context, call *Call[T]) ([]any, error)

// bind converts raw call values into Arguments following the descriptor's
// parameter declarations. Context parameters are pulled from c.
func (d *Descriptor) bind(c Baked, raw []any) (Arguments, error) {
	args := Arguments{named: make(map[string]any, len(d.Params))}
	index := 0
	for _, p := range d.Params {
		if p.IsContext() {
			v, ok := lookupMatch(c, p.match)
			if !ok {
				return Arguments{}, ErrNotApplicable(d.Name)
			}
			args.named[p.Name] = v
			continue
		}

		var value any
		if index < len(raw) {
			value = raw[index]
		}
		converted, err := convert(p.Kind, value)
		switch {
		case value == nil && !p.Optional:
			return Arguments{}, ErrBadArgument(d.Name, index, p.Name, "expected "+p.Kind.String()+", got nil")
		case err != nil:
			return Arguments{}, ErrBadArgument(d.Name, index, p.Name, err.Error())
		}
		args.positional = append(args.positional, converted)
		args.named[p.Name] = converted
		index++
	}
	return args, nil
}

func convert(kind Kind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch kind {
	case KindAny:
		return value, nil
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case KindNumber:
		if f, ok := toFloat(value); ok {
			return f, nil
		}
	case KindInt:
		switch n := value.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
		if f, ok := toFloat(value); ok && f == math.Trunc(f) {
			// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, fmt.Errorf("integer %g out of range", f)
			}
			return int64(f), nil
		}
	case KindTable:
		if t, ok := value.(map[any]any); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, value)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func lookupMatch(c Baked, match func(any) bool) (any, bool) {
	ambient := c.view().ambient
	for i := len(ambient) - 1; i >= 0; i-- {
		if match(ambient[i]) {
			return ambient[i], true
		}
	}
	return nil, false
}
