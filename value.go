package keyset

import (
	"database/sql/driver"
	"encoding/json"
	"reflect"
	"time"
)

// normalizeValue unwraps what drivers and models hand back for a column:
// pointers are dereferenced (nil pointers become nil) and driver.Valuer
// implementations (sql.NullString, ...) are replaced by their value.
func normalizeValue(v any) any {
	for i := 0; i < 8 && v != nil; i++ {
		if valuer, ok := v.(driver.Valuer); ok {
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil
			}

			dv, err := valuer.Value()
			if err != nil {
				return v
			}
			v = dv
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}

	return v
}

// comparable form of a normalized value: integers widen to int64, floats to
// float64, booleans become 0/1 and byte slices become strings. Drivers are
// not consistent about these (SQLite hands booleans back as integers).
func canonicalValue(v any) any {
	v = normalizeValue(v)
	switch vt := v.(type) {
	case nil:
		return nil
	case bool:
		if vt {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return string(vt)
	case json.Number:
		if i, err := vt.Int64(); err == nil {
			return i
		}
		if f, err := vt.Float64(); err == nil {
			return f
		}
		return vt.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case reflect.String:
		return rv.String()
	default:
		return v
	}
}

// sameValue reports whether two column values are equal after normalization.
func sameValue(a, b any) bool {
	ca, cb := canonicalValue(a), canonicalValue(b)
	if ca == nil || cb == nil {
		return ca == nil && cb == nil
	}

	if ta, ok := ca.(time.Time); ok {
		tb, ok := cb.(time.Time)
		return ok && ta.Equal(tb)
	}

	if reflect.TypeOf(ca).Comparable() && reflect.TypeOf(cb).Comparable() {
		return ca == cb
	}

	return reflect.DeepEqual(ca, cb)
}

// indexOfValue returns the position of v in values or -1.
func indexOfValue(values []any, v any) int {
	for i, candidate := range values {
		if sameValue(candidate, v) {
			return i
		}
	}

	return -1
}

func containsNil(values []any) bool {
	for _, v := range values {
		if normalizeValue(v) == nil {
			return true
		}
	}

	return false
}

// parseAnyValue restores numbers decoded from a JSON cursor: integral JSON
// numbers become int64, others float64. Strings are kept as is, time values
// are flagged in the cursor itself.
func parseAnyValue(v any) any {
	vt, ok := v.(json.Number)
	if !ok {
		return v
	}

	if i, err := vt.Int64(); err == nil {
		return i
	}
	if f, err := vt.Float64(); err == nil {
		return f
	}

	return vt.String()
}
