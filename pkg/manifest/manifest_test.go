package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.tsv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestSignAndVerify(t *testing.T) {
	path := writeDataFile(t, "text\tcs.AI\nhello world\t1\n")

	if err := Sign(path, 1); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	m, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if m.Version != Version {
		t.Errorf("Version = %q, want %q", m.Version, Version)
	}

	if m.Rows != 1 {
		t.Errorf("Rows = %d, want 1", m.Rows)
	}

	if time.Since(m.LastModify) > time.Minute {
		t.Errorf("LastModify = %v, want recent", m.LastModify)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	path := writeDataFile(t, "original content\n")

	if err := Sign(path, 1); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("tampered content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Verify(path); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify = %v, want ErrHashMismatch", err)
	}
}

func TestVerify_NoManifest(t *testing.T) {
	path := writeDataFile(t, "content\n")

	if _, err := Verify(path); !errors.Is(err, ErrNoManifest) {
		t.Errorf("Verify = %v, want ErrNoManifest", err)
	}
}

func TestVerify_NoHash(t *testing.T) {
	path := writeDataFile(t, "content\n")

	manifestContent := "VERSION: 1\nROWS: 3\n"
	if err := os.WriteFile(Path(path), []byte(manifestContent), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Verify(path); !errors.Is(err, ErrNoHashFound) {
		t.Errorf("Verify = %v, want ErrNoHashFound", err)
	}
}

func TestLoad_IgnoresMalformedLines(t *testing.T) {
	path := writeDataFile(t, "content\n")

	manifestContent := "garbage line\nVERSION: 1\nROWS: not-a-number\nHASH: abc\n"
	if err := os.WriteFile(Path(path), []byte(manifestContent), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Version != "1" || m.Hash != "abc" || m.Rows != 0 {
		t.Errorf("Load = %+v", m)
	}
}

func TestPath(t *testing.T) {
	if got := Path("data/file.tsv"); !strings.HasSuffix(got, ".tsv.manifest") {
		t.Errorf("Path = %q", got)
	}
}

func TestFileHash_Stable(t *testing.T) {
	path := writeDataFile(t, "same content\n")

	h1, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}

	h2, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}

	if h1 != h2 {
		t.Error("FileHash is not stable")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(h1))
	}
}
