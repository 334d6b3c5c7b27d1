package cache

import (
	"container/list"
	"sync"
)

// Document is the extracted text and summary kept for a live session.
type Document struct {
	Text    string
	Summary string
}

// DocumentCache maps session ids to documents. With a positive capacity the
// least recently used entry is evicted once the bound is exceeded; a
// capacity of zero or less keeps every entry for the life of the process.
type DocumentCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type documentEntry struct {
	sessionID string
	doc       Document
}

func NewDocumentCache(capacity int) *DocumentCache {
	return &DocumentCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Put stores doc under sessionID, replacing any previous entry.
func (c *DocumentCache) Put(sessionID string, doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[sessionID]; ok {
		el.Value.(*documentEntry).doc = doc
		c.order.MoveToFront(el)
		return
	}

	c.entries[sessionID] = c.order.PushFront(&documentEntry{sessionID: sessionID, doc: doc})
	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*documentEntry).sessionID)
	}
}

func (c *DocumentCache) Get(sessionID string) (Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[sessionID]
	if !ok {
		return Document{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*documentEntry).doc, true
}

func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
