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

package confirmations

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/router"
)

func nb(h uint64, sh, prev string) router.NewBlock {
	return router.NewBlock{
		Height:            h,
		StateHash:         common.StateHash(sh),
		PreviousStateHash: common.StateHash(prev),
		LastVRFOutput:     "v",
	}
}

// S4 — Confirmation.
func TestConfirmationExactlyOnceAtThreshold(t *testing.T) {
	tr, err := New(11, 10)
	require.NoError(t, err)
	tr.Handle(nb(0, "h0", ""))

	var all []router.BlockConfirmation
	prev := "h0"
	for h := uint64(1); h <= 11; h++ {
		sh := fmt.Sprintf("h%d", h)
		all = append(all, tr.Handle(nb(h, sh, prev))...)
		prev = sh
	}

	require.Len(t, all, 1)
	assert.Equal(t, common.StateHash("h1"), all[0].StateHash)
	assert.Equal(t, uint8(10), all[0].Confirmations)
}

func TestConfirmationEmittedAtMostOnce(t *testing.T) {
	tr, err := New(50, 2)
	require.NoError(t, err)
	tr.Handle(nb(0, "h0", ""))
	tr.Handle(nb(1, "h1", "h0"))
	tr.Handle(nb(2, "h2", "h1"))
	first := tr.Handle(nb(3, "h3", "h2"))
	require.Len(t, first, 1)
	assert.Equal(t, common.StateHash("h1"), first[0].StateHash)

	// Further descendants must not re-emit for h1.
	second := tr.Handle(nb(4, "h4", "h3"))
	for _, c := range second {
		assert.NotEqual(t, common.StateHash("h1"), c.StateHash)
	}
}
