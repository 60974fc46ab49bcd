package sessions

import "sync"

// Reader is the read-only view of the current session handed to everything
// other than the session service.
type Reader interface {
	Current() Session
	AccessToken() string
}

// Cache is the process-wide, in-memory projection of the stored session.
// Only the session service calls Replace and Clear.
type Cache struct {
	mu      sync.RWMutex
	current Session
}

var _ Reader = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{current: Empty()}
}

// Current returns a snapshot that the caller may keep or modify freely.
func (c *Cache) Current() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// AccessToken returns the bearer token, or "" when signed out.
func (c *Cache) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current.AccessToken == nil {
		return ""
	}
	return *c.current.AccessToken
}

func (c *Cache) Replace(s Session) {
	s = s.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Empty()
}
