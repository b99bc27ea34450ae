package journal

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Readings is a loosely structured bag of sensor values as captured by
// wearables, weather lookups and manual logging. Keys and nesting vary by
// source, so values are resolved through Lookup rather than fixed fields.
type Readings map[string]any

// Lookup returns the first numeric leaf reachable through one of the
// dot-separated paths. Missing keys, non-object intermediates and
// non-numeric leaves all count as a miss for that path.
func (r Readings) Lookup(paths ...string) (float64, bool) {
	for _, path := range paths {
		if v, ok := r.resolve(path); ok {
			return v, true
		}
	}
	return 0, false
}

// Has reports whether any of the paths resolves.
func (r Readings) Has(paths ...string) bool {
	_, ok := r.Lookup(paths...)
	return ok
}

func (r Readings) resolve(path string) (float64, bool) {
	if r == nil || path == "" {
		return 0, false
	}

	var node any = map[string]any(r)
	for _, key := range strings.Split(path, ".") {
		obj, ok := asObject(node)
		if !ok {
			return 0, false
		}
		node, ok = obj[key]
		if !ok {
			return 0, false
		}
	}
	return toNumber(node)
}

func asObject(node any) (map[string]any, bool) {
	switch v := node.(type) {
	case map[string]any:
		return v, true
	case Readings:
		return v, true
	default:
		return nil, false
	}
}

func toNumber(leaf any) (float64, bool) {
	var f float64
	switch v := leaf.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
