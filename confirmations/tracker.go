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

// Package confirmations implements the confirmations tracker: an
// independent blockchain tree that emits a single BlockConfirmation
// event per block once its descendant depth reaches a threshold k.
package confirmations

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/blockchain/tree"
	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
	"github.com/chainindex/pos-indexer/router"
)

// confirmedCacheSize bounds the pruned-node tombstone set to a small
// multiple of the transition-frontier distance: a node can only be
// confirmed while it is still live in the tree, and PruneTree keeps the
// tree itself within the same order of magnitude, so a larger tombstone
// set would only hide leaks rather than track real occupancy.
func confirmedCacheSize(w uint64) int {
	const minSize = 1024
	if size := int(w) * 4; size > minSize {
		return size
	}
	return minSize
}

// Tracker owns its own blockchain tree, separate from and never shared
// with the canonicity engine's. Each node's metadata slot stores its
// saturating descendant counter as a decimal string.
type Tracker struct {
	tree *tree.Tree
	k    uint8
	w    uint64
	log  *log.Logger
	met  *metrics.Confirmations

	confirmed *common.BoundedCache
}

// New builds a confirmations tracker with confirmation depth k and
// transition-frontier distance w.
func New(w uint64, k uint8) (*Tracker, error) {
	confirmed, err := common.NewBoundedCache(confirmedCacheSize(w))
	if err != nil {
		return nil, errors.Wrap(err, "confirmations: build confirmed-set cache")
	}
	return &Tracker{
		tree:      tree.New(w, "confirmations"),
		k:         k,
		w:         w,
		log:       log.New("confirmations"),
		met:       metrics.NewConfirmations(),
		confirmed: confirmed,
	}, nil
}

func counterOf(n *tree.Node) uint8 {
	if n.Metadata == "" {
		return 0
	}
	v, err := strconv.ParseUint(n.Metadata, 10, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// Handle admits a new block and walks its ancestors up to, but not
// including, the root, incrementing each ancestor's saturating counter.
// A BlockConfirmation is emitted exactly once per node, the instant its
// counter first reaches k.
func (t *Tracker) Handle(b router.NewBlock) []router.BlockConfirmation {
	n := &tree.Node{
		Height:            b.Height,
		StateHash:         b.StateHash,
		PreviousStateHash: b.PreviousStateHash,
		LastVRFOutput:     b.LastVRFOutput,
	}

	if _, err := t.tree.Root(); err != nil {
		if err := t.tree.SetRoot(n); err != nil {
			t.log.Error("failed to set root", "err", err)
		}
		t.tree.PruneTree()
		return nil
	}

	if !t.tree.HasParent(n) {
		t.log.Info("orphan block dropped", "height", b.Height, "stateHash", b.StateHash)
		return nil
	}
	if err := t.tree.AddNode(n); err != nil {
		t.log.Error("tree invariant violation, dropping block", "err", err)
		return nil
	}

	root, err := t.tree.Root()
	if err != nil {
		t.log.Error("no root after admission", "err", err)
		return nil
	}

	var emitted []router.BlockConfirmation
	cur := n
	for {
		parent, err := t.tree.GetParent(cur)
		if err != nil || parent.StateHash == root.StateHash {
			break // the root's counter is not incremented
		}
		count := counterOf(parent)
		if count < 255 {
			count++
		}
		if err := t.tree.SetMetadata(parent.StateHash, strconv.FormatUint(uint64(count), 10)); err != nil {
			t.log.Error("failed to update confirmation counter", "err", err)
			break
		}
		if count == t.k && !t.confirmed.Contains(parent.StateHash) {
			t.confirmed.Add(parent.StateHash, struct{}{})
			t.met.Confirmed.Inc(1)
			emitted = append(emitted, router.BlockConfirmation{
				Height:        parent.Height,
				StateHash:     parent.StateHash,
				Confirmations: count,
			})
		}
		cur = parent
	}

	t.tree.PruneTree()
	return emitted
}
