package tasks

import (
	"sort"
	"sync"
)

// EditBuffers holds one pending description per task id, so editing one task
// never leaks into another.
type EditBuffers struct {
	mu  sync.Mutex
	buf map[string]string
}

func NewEditBuffers() *EditBuffers {
	return &EditBuffers{buf: make(map[string]string)}
}

func (b *EditBuffers) Set(id, text string) {
	b.mu.Lock()
	b.buf[id] = text
	b.mu.Unlock()
}

func (b *EditBuffers) Get(id string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.buf[id]
	return v, ok
}

func (b *EditBuffers) Discard(id string) {
	b.mu.Lock()
	delete(b.buf, id)
	b.mu.Unlock()
}

// Pending lists ids with an unsaved edit, sorted.
func (b *EditBuffers) Pending() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.buf))
	for id := range b.buf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *EditBuffers) Reset() {
	b.mu.Lock()
	b.buf = make(map[string]string)
	b.mu.Unlock()
}
