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

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/router"
)

func TestBestBlockAdoptsFirstUpdateRegardlessOfCanonicity(t *testing.T) {
	b := NewBestBlock()
	got, ok := b.Handle(router.BlockCanonicityUpdate{Height: 1, StateHash: "G", Canonical: false})
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.Height)
}

func TestBestBlockDropsNonCanonicalAndRegressions(t *testing.T) {
	b := NewBestBlock()
	b.Handle(router.BlockCanonicityUpdate{Height: 5, StateHash: "A", Canonical: true})

	_, ok := b.Handle(router.BlockCanonicityUpdate{Height: 6, StateHash: "B", Canonical: false})
	assert.False(t, ok)

	_, ok = b.Handle(router.BlockCanonicityUpdate{Height: 4, StateHash: "C", Canonical: true})
	assert.False(t, ok)

	got, ok := b.Handle(router.BlockCanonicityUpdate{Height: 5, StateHash: "D", Canonical: true})
	require.True(t, ok, "equal height canonical updates are adopted")
	assert.Equal(t, "D", string(got.StateHash))
}
