// Package manifest writes and verifies sidecar integrity manifests for
// generated dataset files.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Suffix is appended to the data file path to form the manifest path.
const Suffix = ".manifest"

// Version identifies the manifest format.
const Version = "1"

// Manifest verification errors.
var (
	ErrNoManifest   = errors.New("no manifest file found")
	ErrNoHashFound  = errors.New("no hash found in manifest")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Manifest records the provenance of a generated data file.
type Manifest struct {
	LastModify time.Time
	Version    string
	Hash       string
	Rows       int
}

// Path returns the manifest path for a data file.
func Path(dataPath string) string {
	return dataPath + Suffix
}

// FileHash computes the SHA-256 hash of a file's contents.
func FileHash(dataPath string) (string, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return "", fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash data file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sign writes a fresh manifest for the data file.
func Sign(dataPath string, rows int) error {
	hash, err := FileHash(dataPath)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	content := fmt.Sprintf("VERSION: %s\nROWS: %d\nLAST_MODIFY: %s\nHASH: %s\n",
		Version, rows, now, hash)

	if err := os.WriteFile(Path(dataPath), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// Load parses the manifest beside the data file.
func Load(dataPath string) (*Manifest, error) {
	data, err := os.ReadFile(Path(dataPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, Path(dataPath))
		}

		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := &Manifest{}

	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "VERSION":
			m.Version = val
		case "ROWS":
			if n, convErr := strconv.Atoi(val); convErr == nil {
				m.Rows = n
			}
		case "LAST_MODIFY":
			if t, parseErr := time.Parse(time.RFC3339, val); parseErr == nil {
				m.LastModify = t
			}
		case "HASH":
			m.Hash = val
		}
	}

	return m, nil
}

// Verify checks the data file against its manifest hash.
func Verify(dataPath string) (*Manifest, error) {
	m, err := Load(dataPath)
	if err != nil {
		return nil, err
	}

	if m.Hash == "" {
		return nil, ErrNoHashFound
	}

	hash, err := FileHash(dataPath)
	if err != nil {
		return nil, err
	}

	if hash != m.Hash {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.Hash, hash)
	}

	return m, nil
}
