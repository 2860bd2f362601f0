package imagefetch

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// HandlePrefix starts every transient handle issued by a Store.
const HandlePrefix = "blob:"

// Image is fetched image content.
type Image struct {
	Data []byte
	MIME string
}

// Store holds fetched images behind transient handles until they are
// delivered. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]*Image
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{blobs: make(map[string]*Image)}
}

// Put stores img and returns a fresh handle for it.
func (s *Store) Put(img *Image) string {
	handle := HandlePrefix + uuid.NewString()
	s.mu.Lock()
	s.blobs[handle] = img
	s.mu.Unlock()
	return handle
}

// Get returns the image behind handle.
func (s *Store) Get(handle string) (*Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.blobs[handle]
	return img, ok
}

// Release forgets handle. Releasing an unknown handle is a no-op.
func (s *Store) Release(handle string) {
	s.mu.Lock()
	delete(s.blobs, handle)
	s.mu.Unlock()
}

// Len reports how many images are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// IsHandle reports whether key looks like a Store handle.
func IsHandle(key string) bool {
	return strings.HasPrefix(key, HandlePrefix)
}
