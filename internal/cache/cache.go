// Package cache содержит кэш готовых ответов списка счетов.
package cache

import (
	"strings"
	"sync"
)

// Invalidator — сигнал сброса закэшированных страниц после мутации.
type Invalidator interface {
	Invalidate(path string)
}

// Entry содержит закэшированный ответ одного GET-запроса.
type Entry struct {
	ContentType string
	Body        []byte
}

// Memory — потокобезопасный кэш ответов, ключом служит путь запроса
// вместе со строкой параметров.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory создаёт пустой кэш.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]Entry),
	}
}

// Get возвращает закэшированный ответ для указанного ключа.
func (c *Memory) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok
}

// Put сохраняет ответ под указанным ключом.
func (c *Memory) Put(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
}

// Invalidate сбрасывает все записи указанного пути, включая варианты
// с параметрами поиска и пагинации.
func (c *Memory) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key == path || strings.HasPrefix(key, path+"?") {
			delete(c.entries, key)
		}
	}
}

// Len возвращает число записей в кэше.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
