package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"detailgen/internal/domain"
	"detailgen/internal/storage"
)

const fileExt = ".json"

// File keeps one JSON file per key under a data directory. A key with
// slashes lives in subdirectories: "history/abc" is history/abc.json.
type File struct {
	dir *storage.DirStore
}

// NewFile opens (and creates) the data directory.
func NewFile(root string) (*File, error) {
	dir, err := storage.NewDirStore(root)
	if err != nil {
		if errors.Is(err, domain.ErrNoExportDir) {
			return nil, errors.New("kv: data directory is required")
		}
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := f.dir.Read(ctx, key+fileExt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return data, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if _, err := f.dir.Write(ctx, key+fileExt, value); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := f.dir.Remove(ctx, key+fileExt); err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

func (f *File) Keys(ctx context.Context, prefix string) ([]string, error) {
	names, err := f.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("kv: keys %s: %w", prefix, err)
	}
	var out []string
	for _, name := range names {
		key, ok := strings.CutSuffix(name, fileExt)
		if ok && strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

var _ Store = (*File)(nil)
