package flatmap

import (
	"encoding/json"
	"reflect"
	"testing"
)

func fromPairs(pairs ...string) *FlatMap {
	m := New()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestSetPreservesOrder(t *testing.T) {
	m := fromPairs("b", "2", "a", "1", "c", "3")

	want := []string{"b", "a", "c"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	// Overwriting keeps the original position.
	m.Set("a", "10")
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after overwrite = %v, want %v", got, want)
	}
	if v, _ := m.Get("a"); v != "10" {
		t.Errorf("Get(a) = %q, want %q", v, "10")
	}
}

func TestDelete(t *testing.T) {
	m := fromPairs("a", "1", "b", "2", "c", "3")
	m.Delete("b")
	m.Delete("missing")

	if got, want := m.Keys(), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if m.Has("b") {
		t.Error("Has(b) = true after Delete")
	}
}

func TestSlice(t *testing.T) {
	m := fromPairs("a", "1", "b", "2", "c", "3")
	s := m.Slice([]string{"c", "a", "missing"})

	if got, want := s.Keys(), []string{"c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Slice keys = %v, want %v", got, want)
	}
}

func TestEqual(t *testing.T) {
	a := fromPairs("a", "1", "b", "2")
	b := fromPairs("a", "1", "b", "2")
	c := fromPairs("b", "2", "a", "1")

	if !a.Equal(b) {
		t.Error("identical maps not Equal")
	}
	if a.Equal(c) {
		t.Error("maps with different order reported Equal")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := fromPairs("footer.save", "Save", "footer.cancel", "Cancel", "header.title", "Checkout")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"footer.save":"Save","footer.cancel":"Cancel","header.title":"Checkout"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	got := New()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !m.Equal(got) {
		t.Errorf("round trip mismatch: %v vs %v", m.Keys(), got.Keys())
	}
}

func TestJSONRoundTripEscapedStrings(t *testing.T) {
	// Design text can carry anything a user pastes into a Figma node,
	// including raw control characters. The encoder must emit valid JSON
	// escapes for all of it.
	m := fromPairs(
		"quote", `say "hi"`,
		"newline", "line1\nline2",
		"tab", "col1\tcol2",
		"bell", "ding\aring",
		"vtab", "up\vdown",
		"backslash", `C:\Users\figma`,
		`weird"key`, "value",
	)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// The stdlib decoder must accept the output as-is.
	var std map[string]string
	if err := json.Unmarshal(data, &std); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}

	got := New()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !m.Equal(got) {
		t.Errorf("round trip mismatch:\n got  %v\n want %v", got.Keys(), m.Keys())
	}
	for _, k := range m.Keys() {
		want, _ := m.Get(k)
		if std[k] != want {
			t.Errorf("stdlib decode of %q = %q, want %q", k, std[k], want)
		}
	}
}

func TestUnmarshalRejectsNonStringValues(t *testing.T) {
	for _, doc := range []string{
		`{"a": 1}`,
		`{"a": {"b": "c"}}`,
		`["a"]`,
	} {
		m := New()
		if err := json.Unmarshal([]byte(doc), m); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", doc)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := fromPairs("a", "1")
	c := m.Clone()
	c.Set("a", "changed")
	c.Set("b", "new")

	if v, _ := m.Get("a"); v != "1" {
		t.Errorf("original mutated through clone: %q", v)
	}
	if m.Has("b") {
		t.Error("original gained key through clone")
	}
}
