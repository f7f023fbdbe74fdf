// Copyright 2018 The klaytn Authors
// Copyright 2024 The pos-indexer Authors
// This file is part of the pos-indexer library.
//
// The pos-indexer library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The pos-indexer library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the pos-indexer library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"errors"

	lru "github.com/hashicorp/golang-lru"
)

// BoundedCache wraps an LRU cache keyed by arbitrary comparable keys. The
// confirmations tracker uses it as a size-bounded "seen" set of
// already-confirmed state hashes, which grows with chain activity and must
// not grow without bound. (The parser's duplicate-file detector does not
// use it; it keeps its own fastcache.)
type BoundedCache struct {
	lru *lru.Cache
}

// NewBoundedCache builds a cache capped at size entries; the oldest entry
// is evicted once the cap is reached.
func NewBoundedCache(size int) (*BoundedCache, error) {
	if size <= 0 {
		return nil, errors.New("common: cache size must be positive")
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &BoundedCache{lru: c}, nil
}

func (c *BoundedCache) Add(key, value interface{}) (evicted bool) { return c.lru.Add(key, value) }

func (c *BoundedCache) Get(key interface{}) (value interface{}, ok bool) { return c.lru.Get(key) }

func (c *BoundedCache) Contains(key interface{}) bool { return c.lru.Contains(key) }

func (c *BoundedCache) Remove(key interface{}) { c.lru.Remove(key) }

func (c *BoundedCache) Len() int { return c.lru.Len() }

func (c *BoundedCache) Purge() { c.lru.Purge() }
