package preprocessing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// featureName builds the column name of an expanded feature. Characters
// other than letters, digits and underscores are removed before the prefix
// is added. Letters and digits outside ASCII are kept.
func featureName(parts ...string) string {
	name := parts[0]
	for _, p := range parts[1:] {
		name += "_" + p
	}
	return FeaturePrefix + nonWord.ReplaceAllString(name, "")
}

type featureKind int

const (
	numericFeature featureKind = iota
	boolFeature
	categoricalFeature
)

type expanded struct {
	name   string
	values []float64
}

// expandFeatures turns one features object per row into numeric columns.
//
// Keys whose values are all numbers stay numeric (NaN where absent). Keys
// whose values are all booleans become 0/1, absent counting as 0. Any other
// key is one-hot encoded: one column per distinct value in sorted order, then
// a <key>_nan column for rows without the key. Kept numeric and boolean
// columns come first, in order of first appearance, followed by the one-hot
// columns.
func expandFeatures(rows []map[string]any) []expanded {
	n := len(rows)
	var keys []string
	kinds := make(map[string]featureKind)
	for _, row := range rows {
		// map iteration order is random, so visit keys sorted
		rowKeys := make([]string, 0, len(row))
		for k := range row {
			rowKeys = append(rowKeys, k)
		}
		sort.Strings(rowKeys)
		for _, k := range rowKeys {
			v := row[k]
			if v == nil {
				continue
			}
			kind := kindOf(v)
			prev, seen := kinds[k]
			if !seen {
				keys = append(keys, k)
				kinds[k] = kind
				continue
			}
			if prev != kind {
				kinds[k] = categoricalFeature
			}
		}
	}

	var kept, dummies []*expanded
	byName := make(map[string]*expanded)
	add := func(dst *[]*expanded, name string, values []float64) {
		if prev, ok := byName[name]; ok {
			// stripping can map two levels onto one name; merge them
			for r, v := range values {
				if v == 1 || (math.IsNaN(prev.values[r]) && !math.IsNaN(v)) {
					prev.values[r] = v
				}
			}
			return
		}
		e := &expanded{name: name, values: values}
		byName[name] = e
		*dst = append(*dst, e)
	}

	for _, k := range keys {
		switch kinds[k] {
		case numericFeature:
			values := make([]float64, n)
			for r, row := range rows {
				values[r] = math.NaN()
				if v, ok := row[k].(float64); ok {
					values[r] = v
				}
			}
			add(&kept, featureName(k), values)
		case boolFeature:
			values := make([]float64, n)
			for r, row := range rows {
				if v, ok := row[k].(bool); ok && v {
					values[r] = 1
				}
			}
			add(&kept, featureName(k), values)
		}
	}

	for _, k := range keys {
		if kinds[k] != categoricalFeature {
			continue
		}
		levels := make(map[string]bool)
		for _, row := range rows {
			if v, ok := row[k]; ok && v != nil {
				levels[fmt.Sprint(v)] = true
			}
		}
		sorted := make([]string, 0, len(levels))
		for level := range levels {
			sorted = append(sorted, level)
		}
		sort.Strings(sorted)

		for _, level := range sorted {
			values := make([]float64, n)
			for r, row := range rows {
				if v, ok := row[k]; ok && v != nil && fmt.Sprint(v) == level {
					values[r] = 1
				}
			}
			add(&dummies, featureName(k, level), values)
		}
		missing := make([]float64, n)
		for r, row := range rows {
			if v, ok := row[k]; !ok || v == nil {
				missing[r] = 1
			}
		}
		add(&dummies, featureName(k, "nan"), missing)
	}

	out := make([]expanded, 0, len(kept)+len(dummies))
	for _, e := range append(kept, dummies...) {
		out = append(out, *e)
	}
	return out
}

func kindOf(v any) featureKind {
	switch v.(type) {
	case float64:
		return numericFeature
	case bool:
		return boolFeature
	default:
		return categoricalFeature
	}
}
