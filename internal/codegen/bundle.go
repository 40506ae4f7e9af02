package codegen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
)

// Bundle packs generated files into a zip archive with every entry
// placed under root. Entries are written in sorted path order so the
// archive bytes are stable for a fixed input.
func Bundle(root string, files map[string]string) ([]byte, error) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, path := range paths {
		entry, err := w.Create(root + "/" + path)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", path, err)
		}
		if _, err := entry.Write([]byte(files[path])); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
