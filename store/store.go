// Package store reads and writes the per-language locale documents.
//
// Each language owns one nested JSON file in the locales directory
// (locales/en.json, locales/ru.json, ...). The source language ("en") is
// the source of truth; target files carry translations. Documents are
// mutated through nested.Set / nested.Remove and written back as a whole
// file per language per run — UTF-8, 4-space indent, trailing newline.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/figtools/figloc/flatmap"
	"github.com/figtools/figloc/nested"
)

// Store resolves and persists locale documents under one directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the locales directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the document path for a language code.
func (s *Store) Path(lang string) string {
	return filepath.Join(s.dir, lang+".json")
}

// Load reads the document for lang. A missing file yields an empty tree.
func (s *Store) Load(lang string) (nested.Tree, error) {
	path := s.Path(lang)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nested.Tree{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var t nested.Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if t == nil {
		t = nested.Tree{}
	}
	return nested.Normalize(t), nil
}

// Save writes the document for lang, creating the locales directory if
// needed.
func (s *Store) Save(lang string, t nested.Tree) error {
	path := s.Path(lang)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling %s document: %w", lang, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Apply merges a run's results into a language tree in place: translated
// entries are set (with the demotion rule), removed keys are purged.
// Untouched keys are left exactly as they were.
func (s *Store) Apply(t nested.Tree, translated *flatmap.FlatMap, removed []string) {
	if translated != nil {
		translated.Range(func(key, value string) bool {
			nested.Set(t, key, value)
			return true
		})
	}
	for _, key := range removed {
		nested.Remove(t, key)
	}
}

// Languages lists the language codes with documents in the locales
// directory, sorted, source language included.
func (s *Store) Languages() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.dir, err)
	}

	var langs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(langs)
	return langs, nil
}
