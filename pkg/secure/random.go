package secure

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// LockedReader serializes reads from an underlying entropy source so a single
// reader can be handed to many goroutines.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r. A nil r selects crypto/rand.Reader. Wrapping a
// LockedReader again returns it unchanged.
func NewLockedReader(r io.Reader) *LockedReader {
	if lr, ok := r.(*LockedReader); ok {
		return lr
	}
	if r == nil {
		r = rand.Reader
	}
	return &LockedReader{r: r}
}

func (lr *LockedReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.r.Read(p)
}

// SecureRandom returns size bytes from crypto/rand.
func SecureRandom(size int) ([]byte, error) {
	return ReadRandom(rand.Reader, size)
}

// ReadRandom fills a new buffer of the given size from r. A short read is an
// error; the partially filled buffer is wiped.
func ReadRandom(r io.Reader, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid length: %d", size)
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		Zero(b)
		return nil, fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return b, nil
}
