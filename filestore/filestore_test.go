package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newLocal(t *testing.T) FileStore {
	t.Helper()
	fs, err := NewFileLocalStore(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLocalStoreAddGet(t *testing.T) {
	fs := newLocal(t)
	id, err := fs.Add("1.res.txt", []byte("8\n"))
	if err != nil {
		t.Fatal(err)
	}
	name, f := fs.Get(id)
	if f == nil || name != "1.res.txt" {
		t.Fatalf("get %q: %v %v", id, name, f)
	}
	c, err := f.Content()
	if err != nil || string(c) != "8\n" {
		t.Fatalf("content %q, %v", c, err)
	}
	if got := fs.List(); got[id] != "1.res.txt" {
		t.Fatalf("list %v", got)
	}
	if !fs.Remove(id) {
		t.Fatal("remove failed")
	}
	if fs.Remove(id) {
		t.Fatal("second remove should report missing")
	}
	if _, f := fs.Get(id); f != nil {
		t.Fatal("file should be gone")
	}
}

func TestLocalStoreNewUnique(t *testing.T) {
	fs := newLocal(t)
	seen := make(map[string]bool)
	for range 20 {
		f, err := fs.New()
		if err != nil {
			t.Fatal(err)
		}
		f.Close()
		if seen[f.Name()] {
			t.Fatalf("duplicated scratch file %s", f.Name())
		}
		seen[f.Name()] = true
	}
}

func TestTimeoutRemovesExpired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := NewTimeout(ctx, newLocal(t), 50*time.Millisecond, time.Hour)
	id, err := ts.Add("out", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := ts.New()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	ts.checkTimeoutAndRemove(time.Now())
	if _, got := ts.Get(id); got == nil {
		t.Fatal("file removed before ttl")
	}

	ts.checkTimeoutAndRemove(time.Now().Add(time.Second))
	if _, got := ts.Get(id); got != nil {
		t.Fatal("file kept after ttl")
	}
	if _, err := os.Stat(f.Name()); !os.IsNotExist(err) {
		t.Fatalf("scratch file kept after ttl: %v", err)
	}
	if ts.Len() != 0 {
		t.Fatalf("expected empty heap, got %d", ts.Len())
	}
}
