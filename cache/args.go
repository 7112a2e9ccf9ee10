package cache

import (
	"fmt"
	"slices"
	"strings"
)

// KwArg is one named argument.
type KwArg struct {
	Name  string
	Value any
}

// Args holds the arguments of one call. Keyword order is the order the
// caller supplied them in.
type Args struct {
	Positional []any
	Keyword    []KwArg
}

// Positional builds Args from positional values only.
func Positional(values ...any) Args {
	return Args{Positional: values}
}

// Keywords builds Args from alternating name/value pairs.
// It panics when a name is not a string or a value is missing.
func Keywords(pairs ...any) Args {
	if len(pairs)%2 != 0 {
		panic("cache: Keywords requires name/value pairs")
	}
	var a Args
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("cache: keyword name %v is not a string", pairs[i]))
		}
		a.Keyword = append(a.Keyword, KwArg{Name: name, Value: pairs[i+1]})
	}
	return a
}

// With returns a copy of a with an extra keyword argument appended.
func (a Args) With(name string, value any) Args {
	out := a.Clone()
	out.Keyword = append(out.Keyword, KwArg{Name: name, Value: value})
	return out
}

// Clone returns a copy whose slices do not alias a.
func (a Args) Clone() Args {
	return Args{
		Positional: slices.Clone(a.Positional),
		Keyword:    slices.Clone(a.Keyword),
	}
}

// Kwarg returns the value of the named keyword argument.
func (a Args) Kwarg(name string) (any, bool) {
	for _, kw := range a.Keyword {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// Len returns the total number of arguments.
func (a Args) Len() int {
	return len(a.Positional) + len(a.Keyword)
}

func (a Args) String() string {
	parts := make([]string, 0, a.Len())
	for _, v := range a.Positional {
		parts = append(parts, fmt.Sprintf("%#v", v))
	}
	for _, kw := range a.Keyword {
		parts = append(parts, fmt.Sprintf("%s=%#v", kw.Name, kw.Value))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// sortedKeywords returns the keyword arguments ordered by name. The sort is
// stable so repeated names keep their relative order.
func (a Args) sortedKeywords() []KwArg {
	kws := slices.Clone(a.Keyword)
	slices.SortStableFunc(kws, func(x, y KwArg) int {
		return strings.Compare(x.Name, y.Name)
	})
	return kws
}
