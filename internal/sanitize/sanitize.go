// Package sanitize turns arbitrary Go values into JSON-safe trees of
// map[string]any, []any and scalars. Functions and channels are dropped and
// a reference that points back into its own ancestry is replaced with
// Circular. References shared between siblings are copied, not marked.
package sanitize

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
)

// Circular replaces a reference that closes a cycle.
const Circular = "[Circular]"

// Clean returns a deep, JSON-safe copy of v. The input is never modified.
func Clean(v any) any {
	w := walker{active: make(map[visit]struct{})}
	out, _ := w.value(reflect.ValueOf(v))
	return out
}

// Snapshot cleans a horoscope bundle and removes the back reference to the
// whole chart that the engine attaches to it.
func Snapshot(v any) any {
	out := Clean(v)
	if m, ok := out.(map[string]any); ok {
		delete(m, "astrolabe")
	}
	return out
}

// visit identifies a reference by address and type so that a slice and its
// first element are not confused.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

// walker tracks the references on the current path from the root.
type walker struct {
	active map[visit]struct{}
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// value converts rv. The boolean result is false when the value has no JSON
// form and should be omitted from its parent.
func (w *walker) value(rv reflect.Value) (any, bool) {
	if !rv.IsValid() {
		return nil, true
	}

	if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface && rv.Type().Implements(jsonMarshalerType) {
		return w.marshaled(rv)
	}

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false
	case reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return w.value(rv.Elem())
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, true
		}
		if rv.Type().Implements(jsonMarshalerType) {
			return w.marshaled(rv)
		}
		if !w.enter(rv) {
			return Circular, true
		}
		defer w.leave(rv)
		return w.value(rv.Elem())
	case reflect.Map:
		if rv.IsNil() {
			return nil, true
		}
		if !w.enter(rv) {
			return Circular, true
		}
		defer w.leave(rv)
		return w.mapValue(rv), true
	case reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return w.marshaled(rv)
		}
		if rv.Len() == 0 {
			return []any{}, true
		}
		if !w.enter(rv) {
			return Circular, true
		}
		defer w.leave(rv)
		return w.listValue(rv), true
	case reflect.Array:
		return w.listValue(rv), true
	case reflect.Struct:
		return w.structValue(rv), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

// enter records rv on the current path. It reports false when rv is already
// an ancestor.
func (w *walker) enter(rv reflect.Value) bool {
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if _, ok := w.active[key]; ok {
		return false
	}
	w.active[key] = struct{}{}
	return true
}

func (w *walker) leave(rv reflect.Value) {
	delete(w.active, visit{ptr: rv.Pointer(), typ: rv.Type()})
}

// marshaled round-trips a value with its own JSON encoding into a generic
// tree. Values that fail to encode are omitted.
func (w *walker) marshaled(rv reflect.Value) (any, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (w *walker) mapValue(rv reflect.Value) map[string]any {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, ok := mapKey(iter.Key())
		if !ok {
			continue
		}
		if v, keep := w.value(iter.Value()); keep {
			out[key] = v
		}
	}
	return out
}

func mapKey(k reflect.Value) (string, bool) {
	if k.Kind() == reflect.String {
		return k.String(), true
	}
	if !k.CanInterface() {
		return "", false
	}
	if k.Type().Implements(textMarshalerType) {
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	data, err := json.Marshal(k.Interface())
	if err != nil {
		return "", false
	}
	return strings.Trim(string(data), `"`), true
}

// listValue converts a slice or array. Elements without a JSON form become
// null so positions are preserved.
func (w *walker) listValue(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		if v, keep := w.value(rv.Index(i)); keep {
			out[i] = v
		}
	}
	return out
}

func (w *walker) structValue(rv reflect.Value) map[string]any {
	out := make(map[string]any)
	w.structFields(rv, out)
	return out
}

func (w *walker) structFields(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		name, omitEmpty, skip := fieldName(f)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if f.Anonymous && f.Tag.Get("json") == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				w.structFields(inner, out)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if omitEmpty && fv.IsZero() {
			continue
		}
		if v, keep := w.value(fv); keep {
			out[name] = v
		}
	}
}

func fieldName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}
