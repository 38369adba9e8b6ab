package web

import (
	"bytes"
	"encoding/json"
)

// maxStructuredDepth stops runaway recursion on hostile documents.
const maxStructuredDepth = 64

// NodePredicate decides whether a decoded JSON object is the node searched for.
type NodePredicate func(obj map[string]json.RawMessage) bool

// IsRecipeNode matches objects typed "Recipe", either as a single type tag
// or as one entry of a type list.
func IsRecipeNode(obj map[string]json.RawMessage) bool {
	raw, ok := obj["@type"]
	if !ok {
		return false
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single == "Recipe"
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return false
	}
	for _, item := range list {
		var s string
		if json.Unmarshal(item, &s) == nil && s == "Recipe" {
			return true
		}
	}
	return false
}

// FindNode searches a JSON document depth-first for the first object
// matching match. Arrays are searched element-wise; an object that does not
// match is only descended into through its "@graph" key. The match is
// returned as its original bytes, so key order is preserved. Malformed input
// is simply "no match".
func FindNode(data []byte, match NodePredicate) (json.RawMessage, bool) {
	return findNode(bytes.TrimSpace(data), match, 0)
}

func findNode(raw []byte, match NodePredicate, depth int) (json.RawMessage, bool) {
	if depth > maxStructuredDepth || len(raw) == 0 {
		return nil, false
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			if found, ok := findNode(bytes.TrimSpace(item), match, depth+1); ok {
				return found, true
			}
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		if match(obj) {
			return json.RawMessage(raw), true
		}
		if graph, ok := obj["@graph"]; ok {
			return findNode(bytes.TrimSpace(graph), match, depth+1)
		}
	}
	return nil, false
}

// FindRecipe returns the compacted form of the first Recipe node in data.
func FindRecipe(data []byte) (string, bool) {
	node, ok := FindNode(data, IsRecipeNode)
	if !ok {
		return "", false
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, node); err != nil {
		return "", false
	}
	return compacted.String(), true
}
