// Package nested implements the hierarchical tree form of a translation
// document and its conversion to and from the flat dotted-key form.
//
// A Tree is the in-memory shape of an on-disk locale file:
//
//	{
//	    "footer": {
//	        "save": "Сохранить",
//	        "cancel": "Отмена"
//	    }
//	}
//
// Leaves are strings; branches are nested Trees. When a shorter key ("a")
// and a longer key ("a.b") collide, the shorter key's value is demoted into
// a synthetic "_value" child so no data is silently overwritten. This is the
// one documented deviation from a clean flat/nested round trip.
package nested

import (
	"sort"
	"strings"

	"github.com/figtools/figloc/flatmap"
)

// ValueKey is the synthetic child key a leaf is demoted into when a longer
// key needs to descend through it.
const ValueKey = "_value"

// Tree is a nested translation document. Values are string leaves or Tree
// branches; anything else is ignored by Flatten.
type Tree map[string]any

// FromFlat converts a flat dotted-key map into a nested tree, applying the
// demotion rule on prefix conflicts. Insertion follows the FlatMap's order,
// so the conflict outcome is deterministic.
func FromFlat(f *flatmap.FlatMap) Tree {
	t := Tree{}
	f.Range(func(key, value string) bool {
		Set(t, key, value)
		return true
	})
	return t
}

// Flatten converts a nested tree back into a flat dotted-key map. Only
// string leaves contribute entries; branch keys are visited in sorted order
// for deterministic output.
func Flatten(t Tree) *flatmap.FlatMap {
	out := flatmap.New()
	flatten(t, "", out)
	return out
}

func flatten(t Tree, prefix string, out *flatmap.FlatMap) {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		switch v := t[k].(type) {
		case string:
			out.Set(full, v)
		case Tree:
			flatten(v, full, out)
		case map[string]any:
			flatten(Tree(v), full, out)
		}
	}
}

// Set assigns value at the dotted key, creating intermediate branches as
// needed. An intermediate string leaf is demoted into a branch holding the
// old value under ValueKey. When the final segment already holds a branch,
// the value lands in that branch's ValueKey child instead of clobbering the
// subtree.
func Set(t Tree, dottedKey, value string) {
	segs := strings.Split(dottedKey, ".")
	node := t
	for _, seg := range segs[:len(segs)-1] {
		node = descend(node, seg)
	}

	last := segs[len(segs)-1]
	if branch, ok := asTree(node[last]); ok {
		branch[ValueKey] = value
		return
	}
	node[last] = value
}

// descend returns the branch at seg, creating it or demoting a leaf in the
// way.
func descend(node Tree, seg string) Tree {
	switch v := node[seg].(type) {
	case nil:
		child := Tree{}
		node[seg] = child
		return child
	case string:
		child := Tree{ValueKey: v}
		node[seg] = child
		return child
	default:
		if branch, ok := asTree(v); ok {
			return branch
		}
		// Non-string, non-tree value: replace it.
		child := Tree{}
		node[seg] = child
		return child
	}
}

// Remove deletes the leaf at the dotted key. A missing or non-branch
// intermediate segment makes the whole operation a silent no-op; deleting an
// absent key is not a failure. Emptied parent branches are left in place.
func Remove(t Tree, dottedKey string) {
	segs := strings.Split(dottedKey, ".")
	node := t
	for _, seg := range segs[:len(segs)-1] {
		branch, ok := asTree(node[seg])
		if !ok {
			return
		}
		node = branch
	}
	delete(node, segs[len(segs)-1])
}

// Get returns the string leaf at the dotted key, if present.
func Get(t Tree, dottedKey string) (string, bool) {
	segs := strings.Split(dottedKey, ".")
	node := t
	for _, seg := range segs[:len(segs)-1] {
		branch, ok := asTree(node[seg])
		if !ok {
			return "", false
		}
		node = branch
	}
	s, ok := node[segs[len(segs)-1]].(string)
	return s, ok
}

// Normalize rewrites any map[string]any branches (as produced by
// encoding/json) into Tree branches, in place where possible.
func Normalize(t Tree) Tree {
	for k, v := range t {
		if branch, ok := asTree(v); ok {
			t[k] = Normalize(branch)
		}
	}
	return t
}

func asTree(v any) (Tree, bool) {
	switch b := v.(type) {
	case Tree:
		return b, true
	case map[string]any:
		return Tree(b), true
	default:
		return nil, false
	}
}
