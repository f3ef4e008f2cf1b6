package flatmap

// Diff partitions the keys of two snapshots into added, changed, and removed
// sets. It is derived state: computed at the start of a run, consumed by the
// translation and merge stages, never persisted.
type Diff struct {
	// Added holds entries present in current but absent from cached.
	Added *FlatMap
	// Changed holds entries present in both whose values differ; the values
	// are the current ones.
	Changed *FlatMap
	// Removed lists keys present in cached but absent from current, in the
	// cached snapshot's order.
	Removed []string

	// work is Added ∪ Changed in current-snapshot order.
	work *FlatMap
}

// Compare diffs current against the previously cached snapshot. Keys present
// in both with identical values are omitted entirely.
func Compare(current, cached *FlatMap) Diff {
	d := Diff{Added: New(), Changed: New(), work: New()}

	current.Range(func(key, value string) bool {
		old, ok := cached.Get(key)
		switch {
		case !ok:
			d.Added.Set(key, value)
			d.work.Set(key, value)
		case old != value:
			d.Changed.Set(key, value)
			d.work.Set(key, value)
		}
		return true
	})

	cached.Range(func(key, _ string) bool {
		if !current.Has(key) {
			d.Removed = append(d.Removed, key)
		}
		return true
	})

	return d
}

// Empty reports whether the diff carries no work at all.
func (d Diff) Empty() bool {
	return d.Added.Len() == 0 && d.Changed.Len() == 0 && len(d.Removed) == 0
}

// WorkSet returns Added ∪ Changed in current-snapshot order: the subset of
// keys that must be (re)translated.
func (d Diff) WorkSet() *FlatMap {
	if d.work == nil {
		return New()
	}
	return d.work.Clone()
}
