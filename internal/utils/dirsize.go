package utils

import (
	"io/fs"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DirSize calculates the total size of all regular files under path.
// Symlinks are not followed and contribute nothing. Inaccessible children are
// counted as zero. When path is a regular file its own size is returned.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible files
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size += info.Size()
		return nil
	})
	return size, err
}

// DirSizesParallel computes sizes for multiple paths concurrently.
// Returns a map of path -> size.
func DirSizesParallel(paths []string) map[string]int64 {
	result := make(map[string]int64, len(paths))
	var mu sync.Mutex

	// Limit concurrency to avoid overwhelming the filesystem
	var g errgroup.Group
	g.SetLimit(8)

	for _, p := range paths {
		g.Go(func() error {
			size, _ := DirSize(p)
			mu.Lock()
			result[p] = size
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return result
}
