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

// Package tree implements a pruned, bounded in-memory forest of chain
// blocks, shared in spirit (never by instance) by the canonicity engine
// and the confirmations tracker.
package tree

import "github.com/chainindex/pos-indexer/common"

// Node is a single block in the forest, keyed by its state hash. Metadata
// is an opaque short string slot: the confirmations tracker stores a
// saturating descendant counter there; the canonicity engine leaves it
// empty.
type Node struct {
	Height             uint64
	StateHash          common.StateHash
	PreviousStateHash  common.StateHash
	LastVRFOutput      common.VRFOutput
	Metadata           string
}

// Less implements the tip-selection total order: greater height wins;
// on equal height, greater VRF output wins; on equal VRF output, greater
// state hash wins. Less reports whether n sorts strictly before other.
func (n *Node) Less(other *Node) bool {
	if n.Height != other.Height {
		return n.Height < other.Height
	}
	if n.LastVRFOutput != other.LastVRFOutput {
		return n.LastVRFOutput.Less(other.LastVRFOutput)
	}
	return n.StateHash.Less(other.StateHash)
}

// Greater reports whether n strictly outranks other under the same order.
func (n *Node) Greater(other *Node) bool {
	return other.Less(n)
}

// IsRootCandidate reports whether the node has no parent reference, i.e.
// it can only be admitted as the root of an empty tree.
func (n *Node) IsRootCandidate() bool {
	return n.PreviousStateHash.Empty()
}
