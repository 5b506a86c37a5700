package evmasm

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheCapacity bounds the number of translated programs kept
// in-process. Runtime bytecode bodies are frequently shared across many
// deployed contracts (proxies, clones, identical compiler output), so
// caching by fingerprint avoids re-running D through S for code the
// process has already seen.
const defaultCacheCapacity = 4096

// Translated is the output of running a program through the loader,
// disassembler, block analyzer, and specializer. It is what a Cache
// stores, keyed by the program's fingerprint.
type Translated struct {
	Program  *Program
	Analysis *Analysis
	Blocks   []*LoweredBlock
}

// Cache is an LRU cache of Translated pipeline results keyed by a
// program's SHA-256 fingerprint (Program.Fingerprint).
type Cache struct {
	inner *lru.Cache[string, *Translated]
}

// NewCache creates a Cache holding up to capacity entries. A capacity of
// 0 selects defaultCacheCapacity.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	inner, err := lru.New[string, *Translated](capacity)
	if err != nil {
		return nil, fmt.Errorf("evmasm: creating translation cache: %w", err)
	}
	return &Cache{inner: inner}, nil
}

// Get returns the cached Translated result for fingerprint, if present.
func (c *Cache) Get(fingerprint string) (*Translated, bool) {
	return c.inner.Get(fingerprint)
}

// Put stores t under fingerprint, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *Cache) Put(fingerprint string, t *Translated) {
	c.inner.Add(fingerprint, t)
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.inner.Purge()
}

// Translate runs the D->B->S pipeline for the loaded program p, consulting and
// populating cache if one is supplied. A nil cache disables caching.
func Translate(p *Program, cache *Cache) *Translated {
	if cache != nil {
		if t, ok := cache.Get(p.Fingerprint); ok {
			return t
		}
	}

	d := Disassemble(p.Code)
	a := Analyze(d)
	blocks := Specialize(a)
	t := &Translated{Program: p, Analysis: a, Blocks: blocks}

	if cache != nil {
		cache.Put(p.Fingerprint, t)
	}
	return t
}
