package vocabulary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AudioStore keeps downloaded pronunciation clips on disk
type AudioStore struct {
	dir string
}

// NewAudioStore creates a store writing into dir
func NewAudioStore(dir string) *AudioStore {
	return &AudioStore{dir: dir}
}

// Save writes the clip and returns its path
func (s *AudioStore) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, ".audio-*")
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to store audio file: %w", err)
	}
	return target, nil
}

// Remove deletes a clip written by Save. A missing file is not an error.
func (s *AudioStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}
	return nil
}

// audioFileName names the clip after a hash of its URL, keeping the URL's
// extension. The same URL always maps to the same file and names never
// depend on letter case.
func audioFileName(audioURL string) string {
	ext := ".mp3"
	if u, err := url.Parse(audioURL); err == nil {
		if e := path.Ext(u.Path); e != "" && !strings.ContainsAny(e, `/\`) {
			ext = strings.ToLower(e)
		}
	}
	sum := sha256.Sum256([]byte(audioURL))
	return hex.EncodeToString(sum[:8]) + ext
}
