package engine

import "github.com/myurch/mock-rel/internal/ir"

// mergeRows merges incoming over existing, deeply: nested objects are merged
// key by key, every other value in incoming replaces the existing one.
// Neither argument is modified.
func mergeRows(existing, incoming ir.Row) ir.Row {
	if existing == nil {
		return incoming.Clone()
	}
	return mergeObjects(existing, incoming)
}

func mergeObjects(existing, incoming ir.IRObject) ir.IRObject {
	out := existing.Clone()
	for k, v := range incoming {
		inObj, inIsObj := v.(ir.IRObject)
		exObj, exIsObj := out[k].(ir.IRObject)
		if inIsObj && exIsObj {
			out[k] = mergeObjects(exObj, inObj)
			continue
		}
		out[k] = v
	}
	return out
}
