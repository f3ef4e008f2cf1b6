// Package merge implements structural reconciliation of a target-language
// document against the source-language document, equivalent in spirit to the
// msgmerge utility: the source defines which keys exist, the target keeps
// its translations.
package merge

import (
	"github.com/figtools/figloc/flatmap"
	"github.com/figtools/figloc/nested"
)

// Stats summarizes what Reconcile did to one target document.
type Stats struct {
	// Added counts keys present in the source but missing from the target;
	// they were inserted with empty translations.
	Added int
	// Removed counts orphaned target keys that no longer exist in the
	// source.
	Removed int
	// Kept counts keys present in both whose translations were preserved.
	Kept int
}

// Reconcile rebuilds a target tree against the source tree:
//   - keys only in the source are added with empty translations,
//   - keys in both keep the target's translation,
//   - keys only in the target are dropped.
//
// The returned tree is freshly built; the inputs are not mutated. No network
// access is involved — reconciliation is purely structural.
func Reconcile(source, target nested.Tree) (nested.Tree, Stats) {
	srcFlat := nested.Flatten(source)
	tgtFlat := nested.Flatten(target)

	out := nested.Tree{}
	var stats Stats

	srcFlat.Range(func(key, _ string) bool {
		if v, ok := tgtFlat.Get(key); ok {
			nested.Set(out, key, v)
			stats.Kept++
		} else {
			nested.Set(out, key, "")
			stats.Added++
		}
		return true
	})

	tgtFlat.Range(func(key, _ string) bool {
		if !srcFlat.Has(key) {
			stats.Removed++
		}
		return true
	})

	return out, stats
}

// Untranslated returns the source entries whose translations are missing or
// empty in the target, in source order. This is the work set for the
// translate command.
func Untranslated(source, target nested.Tree) *flatmap.FlatMap {
	srcFlat := nested.Flatten(source)
	tgtFlat := nested.Flatten(target)

	out := flatmap.New()
	srcFlat.Range(func(key, value string) bool {
		if v, ok := tgtFlat.Get(key); !ok || v == "" {
			out.Set(key, value)
		}
		return true
	})
	return out
}
