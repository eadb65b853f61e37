package engine

import (
	"github.com/gcad-lang/gcad/internal/number"
	"github.com/gcad-lang/gcad/internal/value"
)

// ParamSpec declares one parameter of a builtin: its binding name and whether
// a call must resolve it.
type ParamSpec struct {
	Name     string
	Required bool
}

// namedArg is a named call argument, kept in call-site written order.
type namedArg struct {
	name string
	val  value.Value
}

// boundArgs holds the values resolved for a builtin's parameter list, aligned
// with the spec order. A nil slot is an absent optional parameter.
type boundArgs struct {
	builtin string
	vals    []*value.Value
}

// bindArgs resolves a call's positional and named arguments against a
// declared parameter list:
//
//   - a parameter takes the positional argument at its declared index;
//   - a named argument with the parameter's name always overrides it;
//   - an unresolved required parameter is an ArgumentError;
//   - positionals beyond the declared count are an ArityError;
//   - a named argument matching no parameter is an UnknownArgumentError.
func bindArgs(builtin string, specs []ParamSpec, positional []value.Value, named []namedArg) (*boundArgs, error) {
	if len(positional) > len(specs) {
		return nil, scriptErrorf(ArityError, "%s: too many arguments, expected %d, got %d",
			builtin, len(specs), len(positional))
	}

	vals := make([]*value.Value, len(specs))
	used := make([]bool, len(named))
	for i, spec := range specs {
		if i < len(positional) {
			v := positional[i]
			vals[i] = &v
		}
		for j := range named {
			if named[j].name == spec.Name {
				v := named[j].val
				vals[i] = &v
				used[j] = true
			}
		}
		if vals[i] == nil && spec.Required {
			return nil, scriptErrorf(ArgumentError, "%s: %s is required", builtin, spec.Name)
		}
	}

	for j := range named {
		if !used[j] {
			return nil, scriptErrorf(UnknownArgumentError, "%s: unknown named argument %s", builtin, named[j].name)
		}
	}

	return &boundArgs{builtin: builtin, vals: vals}, nil
}

// has reports whether the parameter at index i was resolved.
func (b *boundArgs) has(i int) bool {
	return b.vals[i] != nil
}

// number coerces the parameter at index i to a Number. The binder guarantees
// required parameters are present before coercion runs.
func (b *boundArgs) number(i int) (number.Number, error) {
	n, err := b.vals[i].Number()
	if err != nil {
		return number.Number{}, scriptErrorf(TypeError, "argument %d is not the correct type", i)
	}
	return n, nil
}

// optNumber coerces an optional parameter, returning nil when absent.
func (b *boundArgs) optNumber(i int) (*number.Number, error) {
	if b.vals[i] == nil {
		return nil, nil
	}
	n, err := b.vals[i].Number()
	if err != nil {
		return nil, scriptErrorf(TypeError, "argument %d is not the correct type", i)
	}
	return &n, nil
}

// text coerces the parameter at index i to a string.
func (b *boundArgs) text(i int) (string, error) {
	s, err := b.vals[i].Text()
	if err != nil {
		return "", scriptErrorf(TypeError, "argument %d is not the correct type", i)
	}
	return s, nil
}
