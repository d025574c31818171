package store

import (
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Cleanup(func() { s.Close() })

	return s
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)

	vec := []float32{0.5, -1.25, 3}

	if err := s.Put("some document text", vec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("some document text")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !reflect.DeepEqual(got, vec) {
		t.Errorf("Get = %v, want %v", got, vec)
	}
}

func TestStore_Miss(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get("never stored")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != nil {
		t.Errorf("Get = %v, want nil on miss", got)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("doc", []float32{1}); err != nil {
		t.Fatal(err)
	}

	if err := s.Put("doc", []float32{2, 3}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("doc")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got, []float32{2, 3}) {
		t.Errorf("Get = %v, want replaced vector", got)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}

	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestDigest_Stable(t *testing.T) {
	if Digest("abc") != Digest("abc") {
		t.Error("Digest is not stable")
	}

	if Digest("abc") == Digest("abd") {
		t.Error("Digest collides on different texts")
	}
}

func TestVectorCodec(t *testing.T) {
	vec := []float32{0, -0.0001, 123456.78}

	got := decodeVector(encodeVector(vec))
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("decode(encode) = %v, want %v", got, vec)
	}
}
