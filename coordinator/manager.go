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

// Package coordinator implements the per-kind join buffer that pairs
// derived items with their block's canonicity decision before handing
// them to a persistence sink, plus the actor that wraps one buffer per
// derived-item kind.
package coordinator

import (
	"sync"

	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/derive"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
	"github.com/chainindex/pos-indexer/router"
)

// CanonicalItem is a derived item tagged with the canonicity decision for
// its owning block.
type CanonicalItem struct {
	Item         derive.Item
	Canonical    bool
	WasCanonical bool
}

type blockKey struct {
	height    uint64
	stateHash common.StateHash
}

// Manager is a per-height, per-block-hash join table: it holds derived
// items and expected-item counts until a canonicity decision arrives for
// the owning block, then emits the items tagged with that decision. A
// decision arriving before its items simply waits; so does a count
// arriving before or after its items.
//
// Manager is safe for concurrent use; the canonical-items coordinator
// actors normally drive it from a single goroutine, but it is guarded
// independently so a metrics reader can inspect it concurrently.
type Manager struct {
	mu sync.Mutex

	window uint64 // W/5: heights this far or farther behind maxSeenHeight are dropped

	items         map[blockKey][]derive.Item
	expected      map[blockKey]uint64
	decisions     map[uint64][]router.BlockCanonicityUpdate
	maxSeenHeight uint64
	haveMax       bool

	log *log.Logger
	met *metrics.Coordinator
}

// NewManager builds a join table bounded to the given window of heights.
func NewManager(window uint64, kind string) *Manager {
	return &Manager{
		window:    window,
		items:     make(map[blockKey][]derive.Item),
		expected:  make(map[blockKey]uint64),
		decisions: make(map[uint64][]router.BlockCanonicityUpdate),
		log:       log.New("coordinator." + kind),
		met:       metrics.NewCoordinator(kind),
	}
}

func (m *Manager) touchHeight(h uint64) {
	if !m.haveMax || h > m.maxSeenHeight {
		m.maxSeenHeight = h
		m.haveMax = true
	}
}

// AddItem records a derived item as arrived, awaiting a canonicity
// decision for its block.
func (m *Manager) AddItem(item derive.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := blockKey{height: item.Height_(), stateHash: item.StateHash_()}
	m.items[key] = append(m.items[key], item)
	m.touchHeight(key.height)
}

// AddItemsCount declares (cumulatively) how many items of this kind a
// block is expected to produce.
func (m *Manager) AddItemsCount(height uint64, stateHash common.StateHash, n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := blockKey{height: height, stateHash: stateHash}
	m.expected[key] += n
	m.touchHeight(height)
}

// AddBlockCanonicityUpdate records a canonicity decision awaiting its
// items to fully arrive.
func (m *Manager) AddBlockCanonicityUpdate(update router.BlockCanonicityUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[update.Height] = append(m.decisions[update.Height], update)
	m.touchHeight(update.Height)
}

// GetUpdates returns every canonical-tagged item ready to emit at height:
// for each pending decision at that height whose block has received
// exactly as many items as declared, the decision is paired with its
// items and removed from the pending set. Decisions whose items have not
// all arrived yet are left pending for a later call. Emission order
// follows decision-arrival order, and within a decision, item-arrival
// order.
func (m *Manager) GetUpdates(height uint64) []CanonicalItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.decisions[height]
	if len(pending) == 0 {
		return nil
	}

	var out []CanonicalItem
	remaining := pending[:0]
	for _, d := range pending {
		key := blockKey{height: height, stateHash: d.StateHash}
		n, haveCount := m.expected[key]
		items := m.items[key]
		if !haveCount || uint64(len(items)) != n {
			remaining = append(remaining, d)
			continue
		}
		for _, item := range items {
			out = append(out, CanonicalItem{Item: item, Canonical: d.Canonical, WasCanonical: d.WasCanonical})
		}
	}
	if len(remaining) == 0 {
		delete(m.decisions, height)
	} else {
		m.decisions[height] = remaining
	}

	if len(out) > 0 {
		m.met.Emitted.Inc(int64(len(out)))
	}
	return out
}

// Prune drops all state at heights at or below maxSeenHeight - window.
func (m *Manager) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.haveMax || m.maxSeenHeight <= m.window {
		return
	}
	floor := m.maxSeenHeight - m.window

	for key := range m.items {
		if key.height <= floor {
			delete(m.items, key)
		}
	}
	for key := range m.expected {
		if key.height <= floor {
			delete(m.expected, key)
		}
	}
	for h := range m.decisions {
		if h <= floor {
			delete(m.decisions, h)
		}
	}

	m.met.WindowHeights.Update(int64(len(m.decisions)))
	m.met.Pending.Update(int64(len(m.items)))
}
