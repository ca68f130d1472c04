package render

import (
	"reflect"
	"strings"
)

// Values maps lowercase keys to placeholder values or block flags.
type Values map[string]any

// normalized lowercases keys. When two keys differ only in case, the lowercase one wins,
// otherwise the lexically smallest spelling does.
func (v Values) normalized() Values {
	out := make(Values, len(v))
	chosen := make(map[string]string, len(v))
	for key, value := range v {
		lower := strings.ToLower(key)
		if prev, ok := chosen[lower]; ok && (prev == lower || (key != lower && prev < key)) {
			continue
		}
		chosen[lower] = key
		out[lower] = value
	}
	return out
}

// isTruthy treats nil, false, numeric zero, "", "0" and empty collections as disabled.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return isTruthy(rv.Elem().Interface())
	}

	return true
}
