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

// Package tracker holds the best-block and transition-frontier trackers:
// small single-state-variable components that filter or republish the
// messages flowing past them.
package tracker

import (
	"sync"

	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/router"
)

// BestBlock holds the single current (height, state_hash) pair considered
// the chain's best block, monotone in height among canonical updates.
type BestBlock struct {
	mu   sync.Mutex
	set  bool
	best router.BestBlock
	log  *log.Logger
}

// NewBestBlock builds an empty best-block tracker.
func NewBestBlock() *BestBlock {
	return &BestBlock{log: log.New("tracker.bestblock")}
}

// Handle applies a canonicity update, returning the new BestBlock if it
// adopted the update, or (BestBlock{}, false) if it dropped it silently.
func (b *BestBlock) Handle(u router.BlockCanonicityUpdate) (router.BestBlock, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.set {
		b.set = true
		b.best = router.BestBlock{Height: u.Height, StateHash: u.StateHash}
		return b.best, true
	}
	if u.Canonical && u.Height >= b.best.Height {
		b.best = router.BestBlock{Height: u.Height, StateHash: u.StateHash}
		return b.best, true
	}
	return router.BestBlock{}, false
}

// Current returns the tracker's current best block, if any has been set.
func (b *BestBlock) Current() (router.BestBlock, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.best, b.set
}
