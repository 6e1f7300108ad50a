// Package cache memoizes ast.ParseSource by the SHA-256 hash of the source
// text, so an Interpreter that is handed identical source again through the
// same ParseCache skips re-tokenizing and re-building it. The guest `parse`
// form calls ast.ParseSource directly and does not go through this cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dphaener/golisp/internal/compiler/ast"
)

// DefaultSize is the number of distinct source texts kept resident.
const DefaultSize = 256

// ParseCache memoizes ast.ParseSource results by content hash.
type ParseCache struct {
	lru *lru.Cache
}

// New builds a ParseCache holding up to size entries.
func New(size int) (*ParseCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{lru: c}, nil
}

type entry struct {
	node ast.Node
	err  error
}

func hashOf(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Parse returns the cached ast.Node for src, building and storing it on a
// miss. A cached build error is also replayed rather than retried.
func (c *ParseCache) Parse(src string) (ast.Node, error) {
	key := hashOf(src)
	if cached, ok := c.lru.Get(key); ok {
		e := cached.(entry)
		return e.node, e.err
	}
	node, err := ast.ParseSource(src)
	c.lru.Add(key, entry{node: node, err: err})
	return node, err
}

// Len reports the number of cached entries.
func (c *ParseCache) Len() int { return c.lru.Len() }

// Purge evicts every cached entry.
func (c *ParseCache) Purge() { c.lru.Purge() }
