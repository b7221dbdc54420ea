// Package docpath reads and rewrites nested Go values addressed by a Path.
//
// Struct fields are addressed by their JSON name, slice and array elements by
// index and string-keyed map entries by key. Set and Reorder never write into
// an existing container: every container on the path from the root to the
// edited location is copied, untouched subtrees are shared. Values produced by
// earlier calls therefore stay valid snapshots.
package docpath

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
)

// Get returns the value addressed by p inside root.
func Get(root any, p Path) (any, error) {
	v, err := resolve("get", reflect.ValueOf(root), p)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Set returns a copy of root in which the location addressed by p holds value.
// Numeric values are converted to the target kind when no precision is lost,
// and JSON-decoded maps and slices are re-decoded into struct and slice targets.
func Set[T any](root T, p Path, value any) (T, error) {
	var zero T
	if len(p) == 0 {
		return zero, pathErr("set", p, -1, "empty path")
	}
	rv := reflect.ValueOf(&root).Elem()
	out, err := rewrite("set", rv, p, 0, func(cur reflect.Value) (reflect.Value, error) {
		nv, err := convert(value, cur.Type())
		if err != nil {
			return reflect.Value{}, pathErr("set", p, len(p)-1, "%v", err)
		}
		return nv, nil
	})
	if err != nil {
		return zero, err
	}
	return out.Interface().(T), nil
}

// Reorder moves the element at oldIndex of the list addressed by p to newIndex.
// Equal or out-of-range indexes leave root untouched and report false.
func Reorder[T any](root T, p Path, oldIndex, newIndex int) (T, bool, error) {
	target, err := resolve("reorder", reflect.ValueOf(root), p)
	if err != nil {
		return root, false, err
	}
	target, err = indirect("reorder", target, p, len(p)-1)
	if err != nil {
		return root, false, err
	}
	if target.Kind() != reflect.Slice {
		return root, false, pathErr("reorder", p, len(p)-1, "%s is not a list", target.Type())
	}
	n := target.Len()
	if oldIndex == newIndex || oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return root, false, nil
	}

	var move func(cur reflect.Value) (reflect.Value, error)
	move = func(cur reflect.Value) (reflect.Value, error) {
		switch cur.Kind() {
		case reflect.Pointer:
			inner, err := move(cur.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			np := reflect.New(cur.Type().Elem())
			np.Elem().Set(inner)
			return np, nil
		case reflect.Interface:
			inner, err := move(cur.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(cur.Type()).Elem()
			out.Set(inner)
			return out, nil
		}
		return moveElement(cur, oldIndex, newIndex), nil
	}

	rv := reflect.ValueOf(&root).Elem()
	out, err := rewrite("reorder", rv, p, 0, move)
	if err != nil {
		return root, false, err
	}
	return out.Interface().(T), true, nil
}

func moveElement(s reflect.Value, from, to int) reflect.Value {
	n := s.Len()
	out := reflect.MakeSlice(s.Type(), 0, n)
	moved := s.Index(from)
	for i := 0; i < n; i++ {
		if i == from {
			continue
		}
		if out.Len() == to {
			out = reflect.Append(out, moved)
		}
		out = reflect.Append(out, s.Index(i))
	}
	if out.Len() == to {
		out = reflect.Append(out, moved)
	}
	return out
}

func resolve(op string, v reflect.Value, p Path) (reflect.Value, error) {
	if !v.IsValid() {
		return v, pathErr(op, p, -1, "nil document")
	}
	for depth := range p {
		next, err := child(op, v, p, depth)
		if err != nil {
			return reflect.Value{}, err
		}
		v = next
	}
	return v, nil
}

func indirect(op string, v reflect.Value, p Path, depth int) (reflect.Value, error) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, pathErr(op, p, depth, "nil %s", v.Type())
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, pathErr(op, p, depth, "nil value")
	}
	return v, nil
}

func child(op string, v reflect.Value, p Path, depth int) (reflect.Value, error) {
	v, err := indirect(op, v, p, depth)
	if err != nil {
		return reflect.Value{}, err
	}
	k := p[depth]
	switch v.Kind() {
	case reflect.Struct:
		if k.isIndex {
			return reflect.Value{}, pathErr(op, p, depth, "index into %s", v.Type())
		}
		idx, ok := fieldIndex(v.Type(), k.name)
		if !ok {
			return reflect.Value{}, pathErr(op, p, depth, "no field %q in %s", k.name, v.Type())
		}
		return v.Field(idx), nil
	case reflect.Slice, reflect.Array:
		if !k.isIndex {
			return reflect.Value{}, pathErr(op, p, depth, "field name on list %s", v.Type())
		}
		if k.index < 0 || k.index >= v.Len() {
			return reflect.Value{}, pathErr(op, p, depth, "index %d out of range [0,%d)", k.index, v.Len())
		}
		return v.Index(k.index), nil
	case reflect.Map:
		key, err := mapKey(op, v.Type(), p, depth)
		if err != nil {
			return reflect.Value{}, err
		}
		mv := v.MapIndex(key)
		if !mv.IsValid() {
			return reflect.Value{}, pathErr(op, p, depth, "key not found")
		}
		return mv, nil
	default:
		return reflect.Value{}, pathErr(op, p, depth, "%s is not a container", v.Type())
	}
}

// rewrite returns a new value of v's type with apply's result stored at p[depth:].
func rewrite(op string, v reflect.Value, p Path, depth int, apply func(reflect.Value) (reflect.Value, error)) (reflect.Value, error) {
	if depth == len(p) {
		return apply(v)
	}
	t := v.Type()
	k := p[depth]

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Value{}, pathErr(op, p, depth, "nil %s", t)
		}
		inner, err := rewrite(op, v.Elem(), p, depth, apply)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		out.Set(inner)
		return out, nil

	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Value{}, pathErr(op, p, depth, "nil %s", t)
		}
		inner, err := rewrite(op, v.Elem(), p, depth, apply)
		if err != nil {
			return reflect.Value{}, err
		}
		np := reflect.New(t.Elem())
		np.Elem().Set(inner)
		return np, nil

	case reflect.Struct:
		if k.isIndex {
			return reflect.Value{}, pathErr(op, p, depth, "index into %s", t)
		}
		idx, ok := fieldIndex(t, k.name)
		if !ok {
			return reflect.Value{}, pathErr(op, p, depth, "no field %q in %s", k.name, t)
		}
		c, err := rewrite(op, v.Field(idx), p, depth+1, apply)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		out.Set(v)
		out.Field(idx).Set(c)
		return out, nil

	case reflect.Slice, reflect.Array:
		if !k.isIndex {
			return reflect.Value{}, pathErr(op, p, depth, "field name on list %s", t)
		}
		if k.index < 0 || k.index >= v.Len() {
			return reflect.Value{}, pathErr(op, p, depth, "index %d out of range [0,%d)", k.index, v.Len())
		}
		c, err := rewrite(op, v.Index(k.index), p, depth+1, apply)
		if err != nil {
			return reflect.Value{}, err
		}
		var out reflect.Value
		if v.Kind() == reflect.Slice {
			out = reflect.MakeSlice(t, v.Len(), v.Len())
			reflect.Copy(out, v)
		} else {
			out = reflect.New(t).Elem()
			out.Set(v)
		}
		out.Index(k.index).Set(c)
		return out, nil

	case reflect.Map:
		key, err := mapKey(op, t, p, depth)
		if err != nil {
			return reflect.Value{}, err
		}
		mv := v.MapIndex(key)
		if !mv.IsValid() {
			return reflect.Value{}, pathErr(op, p, depth, "key not found")
		}
		c, err := rewrite(op, mv, p, depth+1, apply)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(t, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		out.SetMapIndex(key, c)
		return out, nil

	default:
		return reflect.Value{}, pathErr(op, p, depth, "%s is not a container", t)
	}
}

func mapKey(op string, t reflect.Type, p Path, depth int) (reflect.Value, error) {
	if t.Key().Kind() != reflect.String {
		return reflect.Value{}, pathErr(op, p, depth, "unsupported map key type %s", t.Key())
	}
	return reflect.ValueOf(p[depth].String()).Convert(t.Key()), nil
}

var fieldCache sync.Map // reflect.Type -> map[string]int

// fieldIndex maps a JSON field name to the struct field index.
func fieldIndex(t reflect.Type, name string) (int, bool) {
	if m, ok := fieldCache.Load(t); ok {
		i, ok := m.(map[string]int)[name]
		return i, ok
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		fieldName := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				fieldName = tagName
			}
		}
		m[fieldName] = i
	}
	fieldCache.Store(t, m)
	i, ok := m[name]
	return i, ok
}

func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot assign nil to %s", t)
	}

	if n, ok := value.(json.Number); ok && isNumeric(t.Kind()) {
		f, err := n.Float64()
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid number %q", n)
		}
		return convertNumber(reflect.ValueOf(f), t)
	}

	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(t):
		out := reflect.New(t).Elem()
		out.Set(deepCopy(vv))
		return out, nil
	case isNumeric(vv.Kind()) && isNumeric(t.Kind()):
		return convertNumber(vv, t)
	case vv.Kind() == reflect.String && t.Kind() == reflect.String:
		return vv.Convert(t), nil
	case isComposite(vv.Kind()) && isComposite(t.Kind()):
		raw, err := json.Marshal(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("encode %T: %w", value, err)
		}
		ptr := reflect.New(t)
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("decode into %s: %w", t, err)
		}
		return ptr.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", value, t)
}

func convertNumber(vv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	src := vv.Kind()
	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isFloat(src):
			f := vv.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("non-integral %v for %s", f, t)
			}
			if f < math.MinInt64 || f >= math.MaxInt64+1 {
				return reflect.Value{}, fmt.Errorf("%v overflows %s", f, t)
			}
			n = int64(f)
		case isUint(src):
			n = int64(vv.Uint())
		default:
			n = vv.Int()
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetInt(n)
	case isUint(t.Kind()):
		var n uint64
		switch {
		case isFloat(src):
			f := vv.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64+1 {
				return reflect.Value{}, fmt.Errorf("invalid %v for %s", f, t)
			}
			n = uint64(f)
		case isInt(src):
			if vv.Int() < 0 {
				return reflect.Value{}, fmt.Errorf("negative %d for %s", vv.Int(), t)
			}
			n = uint64(vv.Int())
		default:
			n = vv.Uint()
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetUint(n)
	default:
		out.Set(vv.Convert(t))
	}
	return out, nil
}

// deepCopy clones the exported, mutable parts of v so a caller-supplied value
// never shares backing storage with a snapshot.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		np := reflect.New(v.Type().Elem())
		np.Elem().Set(deepCopy(v.Elem()))
		return np
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				out.Field(i).Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isComposite(k reflect.Kind) bool {
	switch k {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer:
		return true
	}
	return false
}
