// Package flatten converts nested JSON-decoded values into flat path→value
// maps. Path segments are joined with underscores and array elements are
// addressed by position, matching the key layout of the audit field
// dictionary (e.g. data_modules_food_8_questions_companyName_answer).
package flatten

import "strconv"

// Sep joins parent keys and child keys (or array indices) in flattened paths.
const Sep = "_"

// Flatten converts any JSON-compatible value into a map from flattened key
// paths to leaf values. Objects recurse per key, arrays recurse per index,
// and every scalar or null leaf emits exactly one entry. A top-level scalar
// emits a single entry under the empty key.
func Flatten(v interface{}) map[string]interface{} {
	return FlattenPrefixed(v, "")
}

// FlattenPrefixed is Flatten with every emitted key rooted at prefix.
func FlattenPrefixed(v interface{}, prefix string) map[string]interface{} {
	out := make(map[string]interface{})
	walk(v, prefix, out)
	return out
}

func walk(v interface{}, key string, out map[string]interface{}) {
	switch node := v.(type) {
	case map[string]interface{}:
		for k, child := range node {
			walk(child, join(key, k), out)
		}
	case []interface{}:
		for i, child := range node {
			walk(child, join(key, strconv.Itoa(i)), out)
		}
	default:
		// scalar or null leaf
		out[key] = v
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Sep + key
}

// CountLeaves returns the number of scalar leaves in a JSON-compatible value.
// Flatten(v) always produces exactly this many entries.
func CountLeaves(v interface{}) int {
	switch node := v.(type) {
	case map[string]interface{}:
		n := 0
		for _, child := range node {
			n += CountLeaves(child)
		}
		return n
	case []interface{}:
		n := 0
		for _, child := range node {
			n += CountLeaves(child)
		}
		return n
	default:
		return 1
	}
}
