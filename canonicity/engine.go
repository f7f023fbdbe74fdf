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

// Package canonicity implements the canonicity state machine: it owns a
// blockchain tree and, for every admitted block, emits the sequence of
// canonicity updates reflecting the new best tip.
package canonicity

import (
	"github.com/chainindex/pos-indexer/blockchain/tree"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
	"github.com/chainindex/pos-indexer/router"
)

// Engine owns one blockchain tree and turns each admitted NewBlock into
// zero or more BlockCanonicityUpdate messages.
type Engine struct {
	tree *tree.Tree
	w    uint64
	log  *log.Logger
	met  *metrics.Canonicity
}

// New builds a canonicity engine bounded to the transition-frontier
// distance w.
func New(w uint64) *Engine {
	return &Engine{
		tree: tree.New(w, "canonicity"),
		w:    w,
		log:  log.New("canonicity"),
		met:  metrics.NewCanonicity(),
	}
}

func toNode(b router.NewBlock) *tree.Node {
	return &tree.Node{
		Height:            b.Height,
		StateHash:         b.StateHash,
		PreviousStateHash: b.PreviousStateHash,
		LastVRFOutput:     b.LastVRFOutput,
	}
}

func canonicalUpdate(n *tree.Node, canonical, wasCanonical bool) router.BlockCanonicityUpdate {
	return router.BlockCanonicityUpdate{
		Height:       n.Height,
		StateHash:    n.StateHash,
		Canonical:    canonical,
		WasCanonical: wasCanonical,
	}
}

// Handle processes a single NewBlock and returns the updates it produces.
// It never returns an error to the caller's data path: invariant
// violations and orphan blocks are logged and the block is dropped.
func (e *Engine) Handle(b router.NewBlock) []router.BlockCanonicityUpdate {
	n := toNode(b)

	// First block.
	if _, err := e.tree.Root(); err != nil {
		if err := e.tree.SetRoot(n); err != nil {
			e.log.Error("failed to set root", "err", err, "stateHash", b.StateHash)
			return nil
		}
		e.met.Admitted.Inc(1)
		return []router.BlockCanonicityUpdate{canonicalUpdate(n, true, false)}
	}

	if !e.tree.HasParent(n) {
		e.log.Info("orphan block dropped", "height", b.Height, "stateHash", b.StateHash, "previousStateHash", b.PreviousStateHash)
		e.met.Orphaned.Inc(1)
		return nil
	}

	_, oldBest, err := e.tree.GetBestTip()
	if err != nil {
		e.log.Error("no best tip before admission", "err", err)
		return nil
	}

	if err := e.tree.AddNode(n); err != nil {
		e.log.Error("tree invariant violation, dropping block", "err", err, "stateHash", b.StateHash)
		return nil
	}
	e.met.Admitted.Inc(1)

	var updates []router.BlockCanonicityUpdate

	switch {
	case n.Height < oldBest.Height:
		updates = []router.BlockCanonicityUpdate{canonicalUpdate(n, false, false)}

	case n.Height == oldBest.Height:
		if n.Greater(oldBest) {
			updates = e.reorg(oldBest, n)
		} else {
			updates = []router.BlockCanonicityUpdate{canonicalUpdate(n, false, false)}
		}

	default: // n.Height > oldBest.Height
		parent, err := e.tree.GetParent(n)
		if err != nil {
			e.log.Error("missing parent during extension check", "err", err)
			return nil
		}
		if parent.StateHash == oldBest.StateHash {
			updates = []router.BlockCanonicityUpdate{canonicalUpdate(n, true, false)}
			e.met.Extensions.Inc(1)
		} else {
			updates = e.reorg(oldBest, parent)
			updates = append(updates, canonicalUpdate(n, true, false))
		}
	}

	e.met.UpdatesEmitted.Inc(int64(len(updates)))
	e.tree.PruneTree()
	return updates
}

// reorg computes the unapply/apply paths between oldTip and newTip and
// emits updates: unapplies deepest-first (oldTip walking up to the common
// ancestor), then applies shallowest-first.
func (e *Engine) reorg(oldTip, newTip *tree.Node) []router.BlockCanonicityUpdate {
	unapplyPath, applyPath, _, err := e.tree.GetSharedAncestry(oldTip, newTip)
	if err != nil {
		e.log.Error("shared ancestry computation failed, dropping reorg", "err", err)
		return nil
	}

	e.met.Reorgs.Inc(1)
	e.met.ReorgDepth.Update(int64(len(unapplyPath)))

	updates := make([]router.BlockCanonicityUpdate, 0, len(unapplyPath)+len(applyPath))
	for _, n := range unapplyPath {
		updates = append(updates, canonicalUpdate(n, false, true))
	}
	for i := len(applyPath) - 1; i >= 0; i-- {
		updates = append(updates, canonicalUpdate(applyPath[i], true, false))
	}
	return updates
}

// Tree exposes the underlying tree for introspection/tests.
func (e *Engine) Tree() *tree.Tree { return e.tree }
