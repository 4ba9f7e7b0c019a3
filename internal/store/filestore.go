package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps each collection in <dir>/<collection>.json. The directory
// and files are created lazily on first use. When the filesystem is not
// writable the value is kept in an in-memory overlay so the process keeps
// serving; the overlay is flushed on the next successful save.
type FileStore struct {
	dir string

	mu      sync.Mutex
	overlay map[string][]byte
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:     dir,
		overlay: make(map[string][]byte),
	}
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) Load(collection string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.overlay[collection]; ok {
		return errors.Wrapf(json.Unmarshal(raw, out), "fileStore.Load(%s): overlay", collection)
	}

	raw, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		// Lazily seed the file with the caller's zero value.
		s.writeLocked(collection, out)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "fileStore.Load(%s)", collection)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "fileStore.Load(%s): decode", collection)
	}
	return nil
}

func (s *FileStore) Save(collection string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(collection, value)
	return nil
}

// writeLocked serializes value and writes it out, degrading to the overlay
// when the disk write fails.
func (s *FileStore) writeLocked(collection string, value interface{}) {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Printf("Error encoding collection %s: %v", collection, err)
		return
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("Warning: cannot create data dir %s, keeping %s in memory: %v", s.dir, collection, err)
		s.overlay[collection] = raw
		return
	}
	if err := os.WriteFile(s.path(collection), raw, 0o644); err != nil {
		log.Printf("Warning: cannot write %s, keeping it in memory: %v", s.path(collection), err)
		s.overlay[collection] = raw
		return
	}
	delete(s.overlay, collection)
}
