package storage

import (
	"path/filepath"
	"sync"
	"testing"
)

func newTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file_metadata.json")
	l, err := NewLocalStorage(path)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return l, path
}

func TestInsertAndLookup(t *testing.T) {
	l, _ := newTestStorage(t)

	id, err := l.InsertFile("greeting.txt", "5eb63bbbe01eeed093cb22bb8f5acdc3", 1700000000)
	if err != nil {
		t.Fatalf("InsertFile: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	record, ok := l.GetFileByID(id)
	if !ok {
		t.Fatal("GetFileByID: record not found")
	}
	if record.Filename != "greeting.txt" {
		t.Errorf("Filename = %q, want %q", record.Filename, "greeting.txt")
	}
	if record.MD5Sum != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("MD5Sum = %q", record.MD5Sum)
	}
	if record.Expire != 1700000000 {
		t.Errorf("Expire = %d", record.Expire)
	}

	byHash, ok := l.GetFileByHash(record.MD5Sum)
	if !ok || byHash.ID != id {
		t.Errorf("GetFileByHash = (%+v, %v), want id %d", byHash, ok, id)
	}
}

func TestLookupMisses(t *testing.T) {
	l, _ := newTestStorage(t)

	if _, ok := l.GetFileByID(42); ok {
		t.Error("GetFileByID(42) found a record in an empty store")
	}
	if _, ok := l.GetFileByHash("d41d8cd98f00b204e9800998ecf8427e"); ok {
		t.Error("GetFileByHash found a record in an empty store")
	}
}

func TestIdsIncrease(t *testing.T) {
	l, _ := newTestStorage(t)

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := l.InsertFile("f.bin", "00000000000000000000000000000000", 0)
		if err != nil {
			t.Fatalf("InsertFile: %v", err)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestArbitraryFilenameBytes(t *testing.T) {
	l, _ := newTestStorage(t)

	name := "r\xc3\xa9sum\xc3\xa9 \x00\xff.pdf"
	id, err := l.InsertFile(name, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 0)
	if err != nil {
		t.Fatalf("InsertFile: %v", err)
	}

	record, ok := l.GetFileByID(id)
	if !ok {
		t.Fatal("record not found")
	}
	if record.Filename != name {
		t.Errorf("Filename = %q, want %q", record.Filename, name)
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	l, path := newTestStorage(t)

	id, err := l.InsertFile("a.txt", "11111111111111111111111111111111", 123)
	if err != nil {
		t.Fatalf("InsertFile: %v", err)
	}

	reloaded, err := NewLocalStorage(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	record, ok := reloaded.GetFileByID(id)
	if !ok || record.Filename != "a.txt" {
		t.Fatalf("reloaded record = (%+v, %v)", record, ok)
	}

	// New ids continue after the highest persisted id.
	next, err := reloaded.InsertFile("b.txt", "22222222222222222222222222222222", 456)
	if err != nil {
		t.Fatalf("InsertFile after reload: %v", err)
	}
	if next <= id {
		t.Errorf("id after reload = %d, want > %d", next, id)
	}
}

func TestConcurrentInsertsAssignUniqueIds(t *testing.T) {
	l, _ := newTestStorage(t)

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := l.InsertFile("c.txt", "33333333333333333333333333333333", 0)
			if err != nil {
				t.Errorf("InsertFile: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
}
