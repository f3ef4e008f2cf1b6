// Package confidence persists per-key translation-quality scores.
//
// The store maps language code -> dotted key -> integer score 0–100. It is
// independent of locale content: scoring failures leave keys absent rather
// than zeroed, and per-language maps are merged incrementally across runs,
// never wholesale-replaced.
//
// The store lives alongside .figloc.yaml as figloc.confidence.json.
package confidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the confidence file name inside the project root.
const FileName = "figloc.confidence.json"

// Store holds confidence scores for all target languages.
type Store struct {
	// Scores maps language -> dotted key -> 0–100.
	Scores map[string]map[string]int

	path string
}

// Load reads the store from dir. A missing file yields an empty store.
func Load(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	s := &Store{Scores: make(map[string]map[string]int), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.Scores); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s.Scores == nil {
		s.Scores = make(map[string]map[string]int)
	}
	return s, nil
}

// Merge folds new scores for one language into the store. Nil scores
// (scoring failures) are skipped, leaving any previously stored value
// untouched. Existing keys with fresh non-nil scores are overwritten.
func (s *Store) Merge(lang string, scores map[string]*int) {
	if len(scores) == 0 {
		return
	}
	m := s.Scores[lang]
	if m == nil {
		m = make(map[string]int)
		s.Scores[lang] = m
	}
	for key, score := range scores {
		if score == nil {
			continue
		}
		m[key] = clamp(*score)
	}
}

// Purge drops the given keys from every language. Used when keys disappear
// from the design.
func (s *Store) Purge(keys []string) {
	for _, m := range s.Scores {
		for _, k := range keys {
			delete(m, k)
		}
	}
}

// Get returns the stored score for one key in one language.
func (s *Store) Get(lang, key string) (int, bool) {
	m, ok := s.Scores[lang]
	if !ok {
		return 0, false
	}
	v, ok := m[key]
	return v, ok
}

// Average returns the mean score for a language and the number of scored
// keys. With no scores it returns (0, 0).
func (s *Store) Average(lang string) (avg float64, n int) {
	m := s.Scores[lang]
	if len(m) == 0 {
		return 0, 0
	}
	total := 0
	for _, v := range m {
		total += v
	}
	return float64(total) / float64(len(m)), len(m)
}

// Languages returns the language codes present in the store, sorted.
func (s *Store) Languages() []string {
	langs := make([]string, 0, len(s.Scores))
	for l := range s.Scores {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Save writes the store back to disk, pretty-printed with a trailing
// newline.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("confidence path not set")
	}

	data, err := json.MarshalIndent(s.Scores, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling confidence store: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Path returns the confidence file path.
func (s *Store) Path() string {
	return s.path
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
