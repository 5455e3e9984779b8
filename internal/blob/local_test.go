package blob

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s, dir
}

func TestPutAndGet(t *testing.T) {
	s, _ := newTestStore(t)

	md5sum, created, err := s.Put(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !created {
		t.Error("created = false for new content")
	}
	if md5sum != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("md5sum = %q", md5sum)
	}

	rc, err := s.Get(md5sum)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("blob bytes = %q", data)
	}
}

func TestPutDuplicateContent(t *testing.T) {
	s, dir := newTestStore(t)

	first, created, err := s.Put(strings.NewReader("same bytes"))
	if err != nil || !created {
		t.Fatalf("first Put = (%q, %v, %v)", first, created, err)
	}

	second, created, err := s.Put(strings.NewReader("same bytes"))
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if created {
		t.Error("created = true for duplicate content")
	}
	if second != first {
		t.Errorf("duplicate hash %q != original %q", second, first)
	}

	assertSingleBlob(t, dir)
}

func TestGetMissingBlob(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get("d41d8cd98f00b204e9800998ecf8427e")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty store = %v, want ErrNotFound", err)
	}
}

func TestStagingLeavesNothingBehind(t *testing.T) {
	s, dir := newTestStore(t)

	if _, _, err := s.Put(bytes.NewReader([]byte{1, 2, 3})); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := s.Put(bytes.NewReader([]byte{1, 2, 3})); err != nil {
		t.Fatalf("duplicate Put: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".staging"))
	if err != nil {
		t.Fatalf("ReadDir staging: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d files left in staging", len(entries))
	}
}

func TestConcurrentIdenticalPuts(t *testing.T) {
	s, dir := newTestStore(t)

	const n = 10
	var wg sync.WaitGroup
	hashes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			md5sum, _, err := s.Put(strings.NewReader("racing content"))
			if err != nil {
				t.Errorf("Put: %v", err)
				return
			}
			hashes <- md5sum
		}()
	}
	wg.Wait()
	close(hashes)

	var want string
	for h := range hashes {
		if want == "" {
			want = h
		} else if h != want {
			t.Fatalf("hash mismatch: %q vs %q", h, want)
		}
	}

	assertSingleBlob(t, dir)
}

func assertSingleBlob(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	blobs := 0
	for _, e := range entries {
		if !e.IsDir() {
			blobs++
		}
	}
	if blobs != 1 {
		t.Errorf("found %d blobs on disk, want 1", blobs)
	}
}
