// Package fsutil contains small filesystem helpers shared by the loaders.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindHCLFiles resolves a path to the list of .hcl files it denotes. A
// file path is returned as-is; a directory is walked recursively and all
// .hcl files beneath it are returned in a stable sorted order.
func FindHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access path %q: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", path, err)
	}

	sort.Strings(files)
	return files, nil
}
