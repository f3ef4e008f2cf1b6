package flatmap

import (
	"reflect"
	"testing"
)

func TestCompare(t *testing.T) {
	current := fromPairs("a", "1", "b", "2", "d", "4")
	cached := fromPairs("a", "1", "c", "3", "d", "old")

	d := Compare(current, cached)

	if got, want := d.Added.Keys(), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Added = %v, want %v", got, want)
	}
	if got, want := d.Changed.Keys(), []string{"d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Changed = %v, want %v", got, want)
	}
	if v, _ := d.Changed.Get("d"); v != "4" {
		t.Errorf("Changed carries %q, want current value %q", v, "4")
	}
	if got, want := d.Removed, []string{"c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Removed = %v, want %v", got, want)
	}
}

func TestCompareSelfIsEmpty(t *testing.T) {
	m := fromPairs("a", "1", "b", "2")
	d := Compare(m, m.Clone())

	if !d.Empty() {
		t.Errorf("self-diff not empty: added=%v changed=%v removed=%v",
			d.Added.Keys(), d.Changed.Keys(), d.Removed)
	}
	if d.WorkSet().Len() != 0 {
		t.Errorf("self-diff work set not empty: %v", d.WorkSet().Keys())
	}
}

func TestCompareAgainstEmptyCache(t *testing.T) {
	current := fromPairs("a", "1", "b", "2")
	d := Compare(current, New())

	if !current.Equal(d.Added) {
		t.Errorf("first-run diff should add everything, got %v", d.Added.Keys())
	}
	if len(d.Removed) != 0 {
		t.Errorf("first-run diff removed %v", d.Removed)
	}
}

func TestWorkSetOrder(t *testing.T) {
	// Added and changed keys must interleave in current-snapshot order,
	// not grouped by category.
	current := fromPairs("a", "new", "b", "2", "c", "added", "d", "changed")
	cached := fromPairs("b", "2", "d", "old")

	d := Compare(current, cached)
	want := []string{"a", "c", "d"}
	if got := d.WorkSet().Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("WorkSet keys = %v, want %v", got, want)
	}
}

func TestWorkSetIsACopy(t *testing.T) {
	d := Compare(fromPairs("a", "1"), New())
	w := d.WorkSet()
	w.Set("a", "mutated")

	if v, _ := d.WorkSet().Get("a"); v != "1" {
		t.Errorf("WorkSet shares state with the diff: %q", v)
	}
}
