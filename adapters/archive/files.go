package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"formexport/domain/form"
)

// WriteDir writes every file into dir, creating it when missing. Files are
// staged under temporary names and renamed once all of them are on disk; on
// any failure everything written so far is removed, so dir never holds part
// of a run.
func WriteDir(dir string, files []form.GeneratedDocument) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if f.Filename == "" || f.Filename != filepath.Base(f.Filename) || f.Filename == "." || f.Filename == ".." {
			return fmt.Errorf("invalid file name %q", f.Filename)
		}
		if seen[f.Filename] {
			return fmt.Errorf("duplicate file name %s", f.Filename)
		}
		seen[f.Filename] = true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	staged := make([]string, 0, len(files))
	cleanup := func(paths []string) {
		for _, p := range paths {
			os.Remove(p)
		}
	}
	for _, f := range files {
		tmp, err := stage(dir, f)
		if err != nil {
			cleanup(staged)
			return err
		}
		staged = append(staged, tmp)
	}

	placed := make([]string, 0, len(files))
	for i, f := range files {
		target := filepath.Join(dir, f.Filename)
		if err := os.Rename(staged[i], target); err != nil {
			cleanup(placed)
			cleanup(staged[i:])
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		placed = append(placed, target)
	}
	return nil
}

func stage(dir string, f form.GeneratedDocument) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+f.Filename+".*")
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", f.Filename, err)
	}
	_, err = tmp.Write(f.Content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to stage %s: %w", f.Filename, err)
	}
	return tmp.Name(), nil
}
