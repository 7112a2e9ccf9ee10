package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
)

// kwMark separates positional from keyword arguments inside a composite key.
// It is unexported so no caller-supplied argument can equal it.
type kwMark struct{}

// renderedKey is the fallback key for argument sets holding values that are
// not comparable. Its distinct type keeps it from ever equaling a composite key.
type renderedKey string

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// MakeKey derives the default key for args.
//
// Positional arguments are always ordered. Keyword arguments keep the
// caller's order unless orderIndependent is set, in which case they are sorted
// by name first. When every argument is comparable the key is a fixed-size
// array holding the arguments themselves, so equality is exact. Otherwise the
// whole argument list is rendered with %#v; two distinct arguments with the
// same rendering will collide, and callers with such arguments should supply
// their own KeyMaker.
func MakeKey(args Args, orderIndependent bool) Key {
	kws := args.Keyword
	if orderIndependent && len(kws) > 1 {
		kws = args.sortedKeywords()
	}

	size := len(args.Positional)
	if len(kws) > 0 {
		size += 1 + 2*len(kws)
	}
	parts := make([]any, 0, size)
	parts = append(parts, args.Positional...)
	if len(kws) > 0 {
		parts = append(parts, kwMark{})
		for _, kw := range kws {
			parts = append(parts, kw.Name, kw.Value)
		}
	}

	for _, p := range parts {
		if !isComparable(p) {
			return renderedKey(fmt.Sprintf("%#v", parts))
		}
	}

	arr := reflect.New(reflect.ArrayOf(len(parts), anyType)).Elem()
	for i, p := range parts {
		if p != nil {
			arr.Index(i).Set(reflect.ValueOf(p))
		}
	}
	return arr.Interface()
}

// KeyMakerFor returns the default KeyMaker bound to orderIndependent.
func KeyMakerFor(orderIndependent bool) KeyMaker {
	return func(args Args) (Key, error) {
		return MakeKey(args, orderIndependent), nil
	}
}

// IsRendered reports whether key came from the %#v fallback of MakeKey.
func IsRendered(key Key) bool {
	_, ok := key.(renderedKey)
	return ok
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

// JSONKeyMaker returns a KeyMaker for JSON-shaped arguments. Keys have the
// form "sha256:<hex>", the digest of the call encoded as
//
//	{"args":[...],"kwargs":[[name,value],...]}
//
// encoding/json writes map keys sorted, so map iteration order never reaches
// the digest. Keyword pairs stay a list even when orderIndependent sorts them
// by name, so a repeated name is encoded once per occurrence.
func JSONKeyMaker(orderIndependent bool) KeyMaker {
	return func(args Args) (Key, error) {
		encoded, err := encodeCall(args, orderIndependent)
		if err != nil {
			return nil, fmt.Errorf("cache: failed to canonicalize args: %w", err)
		}
		sum := sha256.Sum256(encoded)
		return "sha256:" + hex.EncodeToString(sum[:]), nil
	}
}

type encodedCall struct {
	Args   []any    `json:"args"`
	Kwargs [][2]any `json:"kwargs"`
}

func encodeCall(args Args, orderIndependent bool) ([]byte, error) {
	kws := args.Keyword
	if orderIndependent && len(kws) > 1 {
		kws = args.sortedKeywords()
	}
	call := encodedCall{
		Args:   make([]any, len(args.Positional)),
		Kwargs: make([][2]any, len(kws)),
	}
	copy(call.Args, args.Positional)
	for i, kw := range kws {
		call.Kwargs[i] = [2]any{kw.Name, kw.Value}
	}
	return json.Marshal(call)
}
