package store

import (
	"os"
	"testing"

	"github.com/figtools/figloc/flatmap"
	"github.com/figtools/figloc/nested"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDocument(t *testing.T) {
	s := New(t.TempDir())
	tr, err := s.Load("ru")
	require.NoError(t, err)
	assert.Empty(t, tr)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir() + "/locales")

	tr := nested.Tree{}
	nested.Set(tr, "footer.save", "Сохранить")
	nested.Set(tr, "footer.cancel", "Отмена")
	require.NoError(t, s.Save("ru", tr))

	got, err := s.Load("ru")
	require.NoError(t, err)

	v, ok := nested.Get(got, "footer.save")
	assert.True(t, ok)
	assert.Equal(t, "Сохранить", v)
}

func TestSaveFormat(t *testing.T) {
	s := New(t.TempDir())

	tr := nested.Tree{}
	nested.Set(tr, "a.b", "x")
	require.NoError(t, s.Save("de", tr))

	data, err := os.ReadFile(s.Path("de"))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": {\n        \"b\": \"x\"\n    }\n}\n", string(data))
}

func TestApply(t *testing.T) {
	s := New(t.TempDir())

	tr := nested.Tree{}
	nested.Set(tr, "footer.save", "old")
	nested.Set(tr, "footer.cancel", "Отмена")
	nested.Set(tr, "header.title", "Заголовок")

	translated := flatmap.New()
	translated.Set("footer.save", "Сохранить")
	translated.Set("footer.help", "Помощь")

	s.Apply(tr, translated, []string{"header.title", "not.there"})

	v, _ := nested.Get(tr, "footer.save")
	assert.Equal(t, "Сохранить", v)
	v, _ = nested.Get(tr, "footer.help")
	assert.Equal(t, "Помощь", v)
	v, _ = nested.Get(tr, "footer.cancel")
	assert.Equal(t, "Отмена", v, "untouched key must survive")

	_, ok := nested.Get(tr, "header.title")
	assert.False(t, ok, "removed key still present")
}

func TestApplyPersistedAcrossRuns(t *testing.T) {
	s := New(t.TempDir())

	// First run writes two collided labels; the second run retranslates one.
	tr := nested.Tree{}
	first := flatmap.New()
	first.Set("footer.save", "Сохранить")
	first.Set("footer.save_2", "Записать")
	s.Apply(tr, first, nil)
	require.NoError(t, s.Save("ru", tr))

	tr, err := s.Load("ru")
	require.NoError(t, err)
	second := flatmap.New()
	second.Set("footer.save_2", "Сохранить копию")
	s.Apply(tr, second, nil)
	require.NoError(t, s.Save("ru", tr))

	got, err := s.Load("ru")
	require.NoError(t, err)
	v, _ := nested.Get(got, "footer.save")
	assert.Equal(t, "Сохранить", v)
	v, _ = nested.Get(got, "footer.save_2")
	assert.Equal(t, "Сохранить копию", v)
}

func TestLanguages(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	langs, err := s.Languages()
	require.NoError(t, err)
	assert.Empty(t, langs)

	require.NoError(t, s.Save("ru", nested.Tree{}))
	require.NoError(t, s.Save("de", nested.Tree{}))
	require.NoError(t, s.Save("en", nested.Tree{}))
	require.NoError(t, os.WriteFile(dir+"/README.md", []byte("x"), 0644))

	langs, err = s.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "ru"}, langs)
}
