package kv

import (
	"context"
	"errors"
	"testing"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
)

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	f, err := NewFile(root)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if _, err := f.Get(ctx, "settings"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get missing err = %v, want ErrNotFound", err)
	}
	for _, k := range []string{"settings", "history/b", "history/a", "history-index"} {
		if err := f.Set(ctx, k, []byte(`{"k":"`+k+`"}`)); err != nil {
			t.Fatalf("Set(%s) returned error: %v", k, err)
		}
	}

	reopened, err := NewFile(root)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	got, err := reopened.Get(ctx, "history/a")
	if err != nil || string(got) != `{"k":"history/a"}` {
		t.Fatalf("Get after reopen = %q, %v", got, err)
	}

	keys, err := reopened.Keys(ctx, "history/")
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "history/a" || keys[1] != "history/b" {
		t.Fatalf("Keys = %#v", keys)
	}

	if err := reopened.Delete(ctx, "history/a"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := reopened.Get(ctx, "history/a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
}

func TestNewFileRequiresDirectory(t *testing.T) {
	if _, err := NewFile(" "); err == nil {
		t.Fatal("expected error for blank data directory")
	}
}

func TestOpenFileDriver(t *testing.T) {
	cfg := &infra.Config{StoreDriver: infra.StoreFile, DataDir: t.TempDir()}
	store, closeFn, err := Open(context.Background(), cfg, infra.NewLogger("test"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*File); !ok {
		t.Fatalf("store = %T, want *File", store)
	}
}
