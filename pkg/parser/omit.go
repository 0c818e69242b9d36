package parser

import (
	"reflect"
	"strings"
)

// tagHider returns the HideField predicate for the Go introspector. Without
// filters a field is hidden when any of its tags is "-"; with filters only
// the filters apply.
func tagHider(filters []TagFilter) func(reflect.StructTag) bool {
	return func(tag reflect.StructTag) bool {
		return hideField(tag, filters)
	}
}

func hideField(tag reflect.StructTag, filters []TagFilter) bool {
	tagMap := structTagToMap(tag)
	if len(tagMap) == 0 {
		return false
	}

	if len(filters) == 0 {
		for _, v := range tagMap {
			if containsTagPart(v, "-") {
				return true
			}
		}
		return false
	}

	for _, f := range filters {
		v, ok := tagMap[f.Key]
		if !ok {
			continue
		}
		if containsTagPart(v, f.Value) {
			return true
		}
	}
	return false
}

// structTagToMap converts a reflect.StructTag into a key/value map.
func structTagToMap(tag reflect.StructTag) map[string]string {
	m := map[string]string{}
	raw := strings.TrimSpace(string(tag))
	for raw != "" {
		key, rest, ok := strings.Cut(raw, `:"`)
		if !ok {
			break
		}
		end := strings.Index(rest, `"`)
		if end < 0 {
			break
		}
		m[key] = rest[:end]
		raw = strings.TrimSpace(rest[end+1:])
	}
	return m
}

// containsTagPart splits a tag value on , and ; and reports whether any
// fragment equals expected.
func containsTagPart(tagVal, expected string) bool {
	for _, part := range strings.FieldsFunc(tagVal, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		if strings.TrimSpace(part) == expected {
			return true
		}
	}
	return false
}
