package roster

import "sync"

// Guarded bọc Store bằng RWMutex cho caller có nhiều goroutine (HTTP server).
//
// Buffer lấy ra trong View phải được copy trước khi fn return,
// vì sau đó một Mutate khác có thể invalidate nó.
type Guarded struct {
	mu    sync.RWMutex
	store *Store
}

func NewGuarded(store *Store) *Guarded {
	return &Guarded{store: store}
}

// View chạy fn với read lock
func (g *Guarded) View(fn func(s *Store)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.store)
}

// Mutate chạy fn với write lock, trả về error của fn
func (g *Guarded) Mutate(fn func(s *Store) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.store)
}
