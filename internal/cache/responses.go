// Package cache holds the in-process caches owned by the assistant.
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultResponseTTL      = 30 * time.Minute
	DefaultResponseCapacity = 100
)

type responseEntry struct {
	key       string
	response  string
	createdAt time.Time
}

// Responses maps a normalized question to a previously generated answer.
// Expired entries are treated as misses but stay in place until they are
// overwritten or evicted. Once the entry count exceeds the capacity the oldest
// inserted entry is dropped, regardless of how often it was read.
type Responses struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	order    *list.List
	items    map[string]*list.Element
}

type ResponsesOption func(*Responses)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ResponsesOption {
	return func(r *Responses) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResponses(ttl time.Duration, capacity int, opts ...ResponsesOption) *Responses {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	if capacity <= 0 {
		capacity = DefaultResponseCapacity
	}
	r := &Responses{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Responses) Get(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.items[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*responseEntry)
	if r.now().Sub(e.createdAt) > r.ttl {
		return "", false
	}
	return e.response, true
}

// Put stores response under key. Overwriting keeps the key's insertion position.
func (r *Responses) Put(key, response string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.items[key]; ok {
		e := el.Value.(*responseEntry)
		e.response = response
		e.createdAt = r.now()
		return
	}
	r.items[key] = r.order.PushBack(&responseEntry{key: key, response: response, createdAt: r.now()})
	if r.order.Len() > r.capacity {
		oldest := r.order.Front()
		r.order.Remove(oldest)
		delete(r.items, oldest.Value.(*responseEntry).key)
	}
}

func (r *Responses) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
