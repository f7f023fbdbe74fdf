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

package tree

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
)

var (
	// ErrTreeNotEmpty is returned by SetRoot when the tree already has a root.
	ErrTreeNotEmpty = errors.New("tree: already has a root")
	// ErrOrphanNode is returned when a node's parent is not present.
	ErrOrphanNode = errors.New("tree: no parent for node")
	// ErrDuplicateNode is returned when a node with the same state hash exists.
	ErrDuplicateNode = errors.New("tree: duplicate state hash")
	// ErrEmptyTree is returned by operations that require a root.
	ErrEmptyTree = errors.New("tree: empty tree")
	// ErrNodeNotFound is returned when a referenced node is absent.
	ErrNodeNotFound = errors.New("tree: node not found")
)

// Tree is a bounded forest of chain blocks. It is intended to be owned
// exclusively by one component (the canonicity engine or the confirmations
// tracker, never both); the internal mutex guards against incidental
// concurrent access (e.g. a status/metrics reader) rather than modelling
// shared ownership.
type Tree struct {
	mu sync.RWMutex

	// w is the transition-frontier distance: the maximum height distance
	// a live node may have from the root.
	w uint64

	nodes    map[common.StateHash]*Node
	children map[common.StateHash]map[common.StateHash]struct{}

	root    common.StateHash
	bestTip common.StateHash

	log *log.Logger
	met *metrics.Tree
}

// New builds an empty tree bounded to w (the transition-frontier distance).
func New(w uint64, name string) *Tree {
	return &Tree{
		w:        w,
		nodes:    make(map[common.StateHash]*Node),
		children: make(map[common.StateHash]map[common.StateHash]struct{}),
		log:      log.New("blockchain.tree." + name),
		met:      metrics.NewTree(name),
	}
}

// SetRoot initializes an empty tree with node as its root. Fails if the
// tree already has a root.
func (t *Tree) SetRoot(n *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.nodes) != 0 {
		return ErrTreeNotEmpty
	}
	cp := *n
	t.nodes[cp.StateHash] = &cp
	t.children[cp.StateHash] = make(map[common.StateHash]struct{})
	t.root = cp.StateHash
	t.bestTip = cp.StateHash
	t.met.Nodes.Update(int64(len(t.nodes)))
	t.log.Info("root set", "height", cp.Height, "stateHash", cp.StateHash)
	return nil
}

// HasParent reports whether a node with state hash equal to n's previous
// state hash is present in the tree.
func (t *Tree) HasParent(n *Node) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nodes[n.PreviousStateHash]
	return ok
}

// AddNode admits n as a child of its parent. It fails if the tree is
// empty, if no parent is present, or if a node with the same state hash
// already exists.
func (t *Tree) AddNode(n *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.nodes) == 0 {
		return ErrEmptyTree
	}
	if _, exists := t.nodes[n.StateHash]; exists {
		return ErrDuplicateNode
	}
	parent, ok := t.nodes[n.PreviousStateHash]
	if !ok {
		return ErrOrphanNode
	}

	cp := *n
	t.nodes[cp.StateHash] = &cp
	if t.children[cp.StateHash] == nil {
		t.children[cp.StateHash] = make(map[common.StateHash]struct{})
	}
	t.children[parent.StateHash][cp.StateHash] = struct{}{}

	if best := t.nodes[t.bestTip]; cp.Greater(best) {
		t.bestTip = cp.StateHash
	}
	t.met.Nodes.Update(int64(len(t.nodes)))
	return nil
}

// GetBestTip returns the height and node of the greatest node under the
// tip-selection ordering.
func (t *Tree) GetBestTip() (uint64, *Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[t.bestTip]
	if !ok {
		return 0, nil, ErrEmptyTree
	}
	cp := *n
	return cp.Height, &cp, nil
}

// Root returns the current root node.
func (t *Tree) Root() (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[t.root]
	if !ok {
		return nil, ErrEmptyTree
	}
	cp := *n
	return &cp, nil
}

// GetNode looks up a node by state hash.
func (t *Tree) GetNode(h common.StateHash) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[h]
	if !ok {
		return nil, false
	}
	cp := *n
	return &cp, true
}

// SetMetadata overwrites a node's metadata slot in place, used by the
// confirmations tracker to persist its descendant counter.
func (t *Tree) SetMetadata(h common.StateHash, metadata string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[h]
	if !ok {
		return ErrNodeNotFound
	}
	n.Metadata = metadata
	return nil
}

// GetParent returns n's immediate predecessor.
func (t *Tree) GetParent(n *Node) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.nodes[n.PreviousStateHash]
	if !ok {
		return nil, ErrNodeNotFound
	}
	cp := *p
	return &cp, nil
}

// GetSharedAncestry returns, for nodes a and b, two ordered sequences each
// walking from its start node up to (but not including) their common
// ancestor: unapplyPath starts at a, applyPath starts at b. Both paths
// are ordered deepest (start node) first.
func (t *Tree) GetSharedAncestry(a, b *Node) (unapplyPath, applyPath []*Node, commonAncestor *Node, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ancestorsOf := func(start *Node) ([]*Node, map[common.StateHash]int, error) {
		path := []*Node{}
		idx := map[common.StateHash]int{}
		cur, ok := t.nodes[start.StateHash]
		if !ok {
			return nil, nil, ErrNodeNotFound
		}
		for {
			idx[cur.StateHash] = len(path)
			cp := *cur
			path = append(path, &cp)
			if cur.StateHash == t.root {
				break
			}
			next, ok := t.nodes[cur.PreviousStateHash]
			if !ok {
				return nil, nil, errors.Wrap(ErrNodeNotFound, "shared ancestry: missing ancestor")
			}
			cur = next
		}
		return path, idx, nil
	}

	pathA, idxA, err := ancestorsOf(a)
	if err != nil {
		return nil, nil, nil, err
	}
	pathB, _, err := ancestorsOf(b)
	if err != nil {
		return nil, nil, nil, err
	}

	// Walk pathB (ancestors of b, nearest-first) until we find a node that
	// is also an ancestor of a; that is the common ancestor.
	commonIdxA := -1
	commonIdxB := -1
	for i, n := range pathB {
		if j, ok := idxA[n.StateHash]; ok {
			commonIdxA = j
			commonIdxB = i
			break
		}
	}
	if commonIdxA == -1 {
		return nil, nil, nil, errors.New("shared ancestry: no common ancestor found")
	}

	unapplyPath = pathA[:commonIdxA]
	applyPath = pathB[:commonIdxB]
	ca := *pathA[commonIdxA]
	return unapplyPath, applyPath, &ca, nil
}

// PruneTree rebinds the root to the highest surviving ancestor of the
// best tip and removes every node outside that ancestor's subtree. This
// is stricter than height alone: a competing branch whose fork point
// falls below the new floor is deleted even if some of its own nodes
// are still within w of the best tip, since it can no longer share a
// root with the canonical chain. Such a branch becomes unreorgable once
// pruned.
func (t *Tree) PruneTree() {
	t.mu.Lock()
	defer t.mu.Unlock()

	best, ok := t.nodes[t.bestTip]
	if !ok {
		return
	}
	if best.Height <= t.w {
		return // nothing below height 0 to prune
	}
	floor := best.Height - t.w

	// Find the new root: walk up from best tip until height <= floor is
	// no longer true for the parent, i.e. the lowest surviving ancestor.
	newRootHash := t.root
	cur := best
	for cur.Height > floor {
		parent, ok := t.nodes[cur.PreviousStateHash]
		if !ok {
			break
		}
		cur = parent
	}
	newRootHash = cur.StateHash

	keep := make(map[common.StateHash]bool)
	var mark func(h common.StateHash)
	mark = func(h common.StateHash) {
		if keep[h] {
			return
		}
		keep[h] = true
		for child := range t.children[h] {
			mark(child)
		}
	}
	mark(newRootHash)

	pruned := 0
	for h := range t.nodes {
		if !keep[h] {
			delete(t.nodes, h)
			delete(t.children, h)
			pruned++
		}
	}
	for h, kids := range t.children {
		if !keep[h] {
			continue
		}
		for k := range kids {
			if !keep[k] {
				delete(kids, k)
			}
		}
	}
	t.root = newRootHash
	if pruned > 0 {
		t.met.Pruned.Inc(int64(pruned))
		t.met.Nodes.Update(int64(len(t.nodes)))
		t.log.Debug("pruned", "count", pruned, "newRoot", newRootHash, "floor", floor)
	}
}

// Len reports the number of live nodes, used by tests and metrics.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}
