package ir

import (
	"slices"
	"strconv"
)

// Row is a single record: field name to value. A stored row always carries
// an "id" field equal to its table key.
type Row = IRObject

// IDField is the field every stored row carries.
const IDField = "id"

// Table maps a stringified row id (see IDKey) to the row.
type Table map[string]Row

// State is the normalized table set: model name to Table.
//
// States are treated as immutable values. Writers copy the top-level map,
// the touched table and the touched row; everything else is shared with the
// previous state.
type State map[string]Table

// Table returns the table for modelName, or nil.
func (s State) Table(modelName string) Table {
	if s == nil {
		return nil
	}
	return s[modelName]
}

// Row returns the row stored under key in modelName, or nil.
func (s State) Row(modelName, key string) Row {
	return s.Table(modelName)[key]
}

// Clone returns a shallow copy of the table set. Tables are shared.
func (s State) Clone() State {
	out := make(State, len(s)+1)
	for k, t := range s {
		out[k] = t
	}
	return out
}

// Clone returns a shallow copy of the table. Rows are shared.
func (t Table) Clone() Table {
	out := make(Table, len(t)+1)
	for k, r := range t {
		out[k] = r
	}
	return out
}

// Keys returns the table keys sorted the way ids are coerced back: integer
// keys ascending first, then the remaining keys lexically.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareTableKeys)
	return keys
}

func compareTableKeys(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
