// Package cache persists the flat snapshot of the previous extraction run.
//
// The snapshot is the diff baseline: it is read once at pipeline start and
// overwritten wholesale at pipeline end with the new flat map. There is no
// incremental cache merge — a successful run always replaces the file with
// the full current snapshot, however small the diff was.
//
// The cache lives alongside .figloc.yaml as figloc.cache.json.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/figtools/figloc/flatmap"
)

// FileName is the snapshot file name inside the project root.
const FileName = "figloc.cache.json"

// Snapshot is the previous run's flat map, bound to its on-disk location.
type Snapshot struct {
	Entries *flatmap.FlatMap

	path string
}

// Load reads the snapshot from dir. A missing file yields an empty snapshot,
// so a first run diffs against nothing and treats every key as added.
func Load(dir string) (*Snapshot, error) {
	path := filepath.Join(dir, FileName)
	s := &Snapshot{Entries: flatmap.New(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, s.Entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Replace swaps the snapshot contents for the current flat map. The caller
// still has to Save.
func (s *Snapshot) Replace(current *flatmap.FlatMap) {
	s.Entries = current.Clone()
}

// Save writes the snapshot back to disk, pretty-printed with a trailing
// newline.
func (s *Snapshot) Save() error {
	if s.path == "" {
		return fmt.Errorf("cache path not set")
	}

	data, err := json.MarshalIndent(s.Entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Path returns the snapshot file path.
func (s *Snapshot) Path() string {
	return s.path
}
