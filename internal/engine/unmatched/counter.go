// Package unmatched tracks how often unannotated parameter names had no
// entry in the naming policy, so the policy can be extended where it pays off.
package unmatched

import (
	"sort"
	"sync"
)

const (
	DefaultTop       = 40
	DefaultThreshold = 0.05
)

// Entry is one reported name with its occurrence count and share of the total.
type Entry struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Counter is a run-wide name frequency table. It is safe for concurrent use.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
	total  int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Add(name string, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += n
	c.total += n
}

// Merge folds the per-file counts of one generator result into the counter.
func (c *Counter) Merge(counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, n := range counts {
		if n <= 0 {
			continue
		}
		c.counts[name] += n
		c.total += n
	}
}

func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Counter) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Reset drops every count. Watch mode starts each batch from zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
	c.total = 0
}

// MostCommon returns up to n entries ordered by descending count, then name.
// n <= 0 returns every entry.
func (c *Counter) MostCommon(n int) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mostCommonLocked(n)
}

func (c *Counter) mostCommonLocked(n int) []Entry {
	entries := make([]Entry, 0, len(c.counts))
	for name, count := range c.counts {
		entry := Entry{Name: name, Count: count}
		if c.total > 0 {
			entry.Share = float64(count) / float64(c.total)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Report returns the entries among the top most common whose share of the
// total is strictly greater than threshold. A zero total reports nothing.
func (c *Counter) Report(top int, threshold float64) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total == 0 {
		return nil
	}

	var out []Entry
	for _, entry := range c.mostCommonLocked(top) {
		if entry.Share > threshold {
			out = append(out, entry)
		}
	}
	return out
}
