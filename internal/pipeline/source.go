package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DirSource lists the entries with a given extension in one directory.
// Subdirectories are not searched and the extension match is case-sensitive.
// Broken links and other unreadable entries are listed so that they surface
// as unknown labels instead of vanishing from the report.
type DirSource struct {
	dir string
	ext string
}

// NewDirSource returns a source for files ending in ext inside dir.
func NewDirSource(dir, ext string) *DirSource {
	return &DirSource{dir: dir, ext: ext}
}

// List returns the matching paths sorted by filename.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if filepath.Ext(e.Name()) != s.ext {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if isDir(e, path) {
			continue
		}
		// Unreadable entries are kept; the decoder turns them into unknown labels.
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

// isDir reports whether e is a directory or a link that resolves to one.
func isDir(e fs.DirEntry, path string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
