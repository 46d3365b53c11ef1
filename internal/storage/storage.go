// Package storage is the client's durable local store: one JSON document
// per key under the storefront home directory. It is the moral equivalent
// of browser localStorage, including a change watcher so a second running
// client observes writes the way another browser tab observes storage
// events. Only the owning stores (cart, session) write here; views go
// through them.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Well-known storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// DefaultDir returns the storage directory: $STOREFRONT_HOME if set,
// otherwise ~/.storefront.
func DefaultDir() (string, error) {
	if dir := os.Getenv("STOREFRONT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".storefront"), nil
}

// Store reads and writes keyed JSON documents in a single directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open creates the directory if needed and returns a store over it.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get unmarshals the document for key into v. The boolean reports whether
// the key exists; absence is not an error.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Put marshals v and writes it as the document for key. The write goes
// through a temp file and rename so the watcher never sees a torn
// document.
func (s *Store) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Watcher reports keys whose documents changed on disk, including writes
// made by another process.
type Watcher struct {
	Events <-chan string

	fw   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// Watch starts a watcher over the storage directory.
func (s *Store) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start storage watcher: %w", err)
	}
	if err := fw.Add(s.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	events := make(chan string, 16)
	w := &Watcher{Events: events, fw: fw, done: make(chan struct{})}

	go func() {
		defer close(events)
		for {
			select {
			case <-w.done:
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				key := keyFromPath(ev.Name)
				if key == "" {
					continue
				}
				select {
				case events <- key:
				default:
					// Listener is behind; it re-reads the store on every
					// event, so dropping duplicates loses nothing.
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}

// Close stops the watcher and closes its event channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func keyFromPath(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") {
		return ""
	}
	return strings.TrimSuffix(base, ".json")
}
