package script

import (
	"fmt"
	"reflect"
	"sort"

	"go.starlark.net/starlark"
)

// ToStarlark converts a Go value to Starlark. Supported: nil, booleans,
// integers, floats, strings, slices and arrays, and maps with string keys,
// nested arbitrarily. Starlark values pass through unchanged.
func ToStarlark(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return x, nil
	case bool:
		return starlark.Bool(x), nil
	case string:
		return starlark.String(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return starlark.Float(rv.Float()), nil
	case reflect.String:
		return starlark.String(rv.String()), nil
	case reflect.Bool:
		return starlark.Bool(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, rv.Len())
		for i := range elems {
			elem, err := ToStarlark(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = elem
		}
		return starlark.NewList(elems), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(keys))
		for _, k := range keys {
			elem, err := ToStarlark(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), elem); err != nil {
				return nil, err
			}
		}
		return dict, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// FromStarlark converts a Starlark value to the Go value the recorder
// compares: None is nil, ints are int (or *big.Int when they overflow
// int64), floats are float64, lists and tuples are []any, dicts are
// map[any]any. Other values are returned as-is.
func FromStarlark(v starlark.Value) any {
	switch x := v.(type) {
	case nil, starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(x)
	case starlark.Int:
		if i, ok := x.Int64(); ok {
			return int(i)
		}
		return x.BigInt()
	case starlark.Float:
		return float64(x)
	case starlark.String:
		return string(x)
	case *starlark.List:
		out := make([]any, x.Len())
		for i := range out {
			out[i] = FromStarlark(x.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = FromStarlark(elem)
		}
		return out
	case *starlark.Dict:
		out := make(map[any]any, x.Len())
		for _, item := range x.Items() {
			out[dictKey(item[0])] = FromStarlark(item[1])
		}
		return out
	}
	return v
}

// dictKey converts a dict key, falling back to its string form when the
// converted value is not a valid Go map key (a tuple, say).
func dictKey(k starlark.Value) any {
	key := FromStarlark(k)
	if key == nil || reflect.TypeOf(key).Comparable() {
		return key
	}
	return k.String()
}
