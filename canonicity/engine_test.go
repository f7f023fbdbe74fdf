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

package canonicity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/router"
)

func nb(h uint64, sh, prev, vrf string) router.NewBlock {
	return router.NewBlock{
		Height:            h,
		StateHash:         common.StateHash(sh),
		PreviousStateHash: common.StateHash(prev),
		LastVRFOutput:     common.VRFOutput(vrf),
	}
}

// S1 — Simple extension.
func TestSimpleExtension(t *testing.T) {
	e := New(11)

	g := e.Handle(nb(1, "G", "", "g"))
	require.Len(t, g, 1)
	assert.True(t, g[0].Canonical)
	assert.False(t, g[0].WasCanonical, "genesis's first canonical event must carry was_canonical=false")

	a := e.Handle(nb(2, "A", "G", "a"))
	require.Len(t, a, 1)
	assert.True(t, a[0].Canonical)
	assert.Equal(t, common.StateHash("A"), a[0].StateHash)
}

// S2 — Tiebreak.
func TestTiebreak(t *testing.T) {
	e := New(11)
	e.Handle(nb(1, "G", "", "g"))
	e.Handle(nb(2, "A", "G", "a"))

	updates := e.Handle(nb(2, "B", "G", "b"))
	require.Len(t, updates, 2)
	assert.Equal(t, common.StateHash("A"), updates[0].StateHash)
	assert.False(t, updates[0].Canonical)
	assert.True(t, updates[0].WasCanonical)
	assert.Equal(t, common.StateHash("B"), updates[1].StateHash)
	assert.True(t, updates[1].Canonical)
	assert.False(t, updates[1].WasCanonical)
}

// S3 — Branch replacement with one block.
func TestBranchReplacement(t *testing.T) {
	e := New(11)
	e.Handle(nb(1, "G", "", "g"))
	e.Handle(nb(2, "A", "G", "a"))
	e.Handle(nb(3, "C", "A", "c"))

	bUpdates := e.Handle(nb(2, "B", "G", "b"))
	require.Len(t, bUpdates, 1)
	assert.False(t, bUpdates[0].Canonical, "B is shorter than the current best tip C")

	dUpdates := e.Handle(nb(3, "D", "B", "d"))
	require.Len(t, dUpdates, 4)
	assert.Equal(t, common.StateHash("C"), dUpdates[0].StateHash)
	assert.False(t, dUpdates[0].Canonical)
	assert.Equal(t, common.StateHash("A"), dUpdates[1].StateHash)
	assert.False(t, dUpdates[1].Canonical)
	assert.Equal(t, common.StateHash("B"), dUpdates[2].StateHash)
	assert.True(t, dUpdates[2].Canonical)
	assert.Equal(t, common.StateHash("D"), dUpdates[3].StateHash)
	assert.True(t, dUpdates[3].Canonical)
}

func TestOrphanBlockDropped(t *testing.T) {
	e := New(11)
	e.Handle(nb(1, "G", "", "g"))
	updates := e.Handle(nb(5, "X", "NOPE", "x"))
	assert.Nil(t, updates)
}

func TestReorgMaxDepthEqualsW(t *testing.T) {
	const w = 5
	e := New(w)
	e.Handle(nb(0, "G", "", "g"))

	// Canonical chain A1..A5, each extending the prior best tip.
	aPrev := "G"
	for h := uint64(1); h <= w; h++ {
		sh := fmt.Sprintf("a%d", h)
		e.Handle(nb(h, sh, aPrev, "a"+sh))
		aPrev = sh
	}

	// Competing branch B1..B4 off G, never overtaking the A chain (lower
	// VRF than the corresponding A node at every height so each stays
	// non-canonical individually).
	bPrev := "G"
	for h := uint64(1); h < w; h++ {
		sh := fmt.Sprintf("b%d", h)
		u := e.Handle(nb(h, sh, bPrev, "0"+sh))
		require.Len(t, u, 1)
		assert.False(t, u[0].Canonical)
		bPrev = sh
	}

	// B5 ties A5's height with a higher VRF, forcing a reorg whose unapply
	// and apply paths both run all the way back to the shared root G —
	// exactly w blocks each, the maximum a w-bounded tree can represent.
	final := e.Handle(nb(w, "Z", bPrev, "zzzzzzzz"))
	require.Len(t, final, 2*w)
	for i := 0; i < w; i++ {
		assert.False(t, final[i].Canonical)
		assert.True(t, final[i].WasCanonical)
	}
	for i := w; i < 2*w; i++ {
		assert.True(t, final[i].Canonical)
		assert.False(t, final[i].WasCanonical)
	}
}
