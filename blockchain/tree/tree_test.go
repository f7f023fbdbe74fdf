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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/common"
)

func node(h uint64, stateHash, prev, vrf string) *Node {
	return &Node{
		Height:            h,
		StateHash:         common.StateHash(stateHash),
		PreviousStateHash: common.StateHash(prev),
		LastVRFOutput:     common.VRFOutput(vrf),
	}
}

func TestSetRootOnlyOnce(t *testing.T) {
	tr := New(11, "t")
	require.NoError(t, tr.SetRoot(node(1, "G", "", "g")))
	require.ErrorIs(t, tr.SetRoot(node(1, "G2", "", "g")), ErrTreeNotEmpty)
}

func TestAddNodeRejectsOrphanAndDuplicate(t *testing.T) {
	tr := New(11, "t")
	require.NoError(t, tr.SetRoot(node(1, "G", "", "g")))

	require.ErrorIs(t, tr.AddNode(node(2, "X", "NOPE", "x")), ErrOrphanNode)

	require.NoError(t, tr.AddNode(node(2, "A", "G", "a")))
	require.ErrorIs(t, tr.AddNode(node(2, "A", "G", "a")), ErrDuplicateNode)
}

func TestBestTipOrdering(t *testing.T) {
	tr := New(11, "t")
	require.NoError(t, tr.SetRoot(node(1, "G", "", "g")))
	require.NoError(t, tr.AddNode(node(2, "A", "G", "a")))
	require.NoError(t, tr.AddNode(node(2, "B", "G", "b")))

	h, best, err := tr.GetBestTip()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), h)
	assert.Equal(t, common.StateHash("B"), best.StateHash, "b > a lexicographically so B wins the tiebreak")
}

func TestGetSharedAncestry(t *testing.T) {
	tr := New(11, "t")
	require.NoError(t, tr.SetRoot(node(1, "G", "", "g")))
	require.NoError(t, tr.AddNode(node(2, "A", "G", "a")))
	require.NoError(t, tr.AddNode(node(3, "C", "A", "c")))
	require.NoError(t, tr.AddNode(node(2, "B", "G", "b")))
	require.NoError(t, tr.AddNode(node(3, "D", "B", "d")))

	c, _ := tr.GetNode("C")
	d, _ := tr.GetNode("D")

	unapply, apply, ca, err := tr.GetSharedAncestry(c, d)
	require.NoError(t, err)
	require.Len(t, unapply, 2)
	assert.Equal(t, common.StateHash("C"), unapply[0].StateHash)
	assert.Equal(t, common.StateHash("A"), unapply[1].StateHash)
	require.Len(t, apply, 2)
	assert.Equal(t, common.StateHash("D"), apply[0].StateHash)
	assert.Equal(t, common.StateHash("B"), apply[1].StateHash)
	assert.Equal(t, common.StateHash("G"), ca.StateHash)
}

func TestPruneTreeEnforcesDepthBound(t *testing.T) {
	tr := New(2, "t")
	require.NoError(t, tr.SetRoot(node(0, "G", "", "g")))
	prev := "G"
	for h := uint64(1); h <= 5; h++ {
		sh := string(rune('A' + h))
		require.NoError(t, tr.AddNode(node(h, sh, prev, "v"+sh)))
		prev = sh
		tr.PruneTree()
		_, best, err := tr.GetBestTip()
		require.NoError(t, err)
		root, err := tr.Root()
		require.NoError(t, err)
		assert.LessOrEqual(t, best.Height-root.Height, uint64(2))
	}
}
