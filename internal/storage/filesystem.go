package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"detailgen/internal/domain"
)

const tempPrefix = ".tmp-"

// DirStore keeps files under a root directory. It backs listing exports and
// the file kv driver.
type DirStore struct {
	root string
}

// NewDirStore creates root (recursively) and returns a store writing into
// it. A blank root yields domain.ErrNoExportDir.
func NewDirStore(root string) (*DirStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, domain.ErrNoExportDir
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create export directory: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Root returns the export directory.
func (s *DirStore) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Write stores data under name and returns the absolute-or-rooted path of
// the written file. The file is replaced atomically.
func (s *DirStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	full, err := s.path(ctx, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("storage: chmod file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("storage: replace file: %w", err)
	}
	return full, nil
}

// Read returns the file stored under name, or domain.ErrNotFound.
func (s *DirStore) Read(ctx context.Context, name string) ([]byte, error) {
	full, err := s.path(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Remove deletes the file stored under name. Missing files are ignored.
func (s *DirStore) Remove(ctx context.Context, name string) error {
	full, err := s.path(ctx, name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// List returns the slash-separated names of every stored file, sorted.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, domain.ErrNoExportDir
	}
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *DirStore) path(ctx context.Context, name string) (string, error) {
	if s == nil {
		return "", domain.ErrNoExportDir
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Within resolves dir against root. Relative dirs are joined onto root and
// absolute ones must already lie inside it; anything that escapes root is
// domain.ErrInvalidInput.
func Within(root, dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", domain.ErrNoExportDir
	}
	base, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return "", fmt.Errorf("storage: resolve root: %w", err)
	}
	target := filepath.FromSlash(dir)
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: %q is outside %q: %w", dir, root, domain.ErrInvalidInput)
	}
	return target, nil
}

// cleanName normalizes a relative file name and refuses to leave the root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("storage: file name is required")
	}
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(strings.TrimPrefix(name, "./"), "/")
	cleaned := filepath.ToSlash(filepath.Clean(name))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: invalid file name %q: %w", name, domain.ErrInvalidInput)
	}
	return cleaned, nil
}
