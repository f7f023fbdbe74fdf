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

func TestFrontierRepublishesOnceAdvanceExceedsW(t *testing.T) {
	f, err := NewFrontier(10, t.TempDir())
	require.NoError(t, err)
	defer f.Close()

	_, ok, err := f.Handle(router.ActorHeight{ActorName: "block_log", Height: 5})
	require.NoError(t, err)
	assert.False(t, ok, "max height 5 is below w=10, no watermark yet")

	fr, ok, err := f.Handle(router.ActorHeight{ActorName: "block_log", Height: 15})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5), fr.Height)

	// Once the watermark has caught up to max-W, any further increase in
	// the observed max height exceeds it by more than w and republishes.
	fr2, ok, err := f.Handle(router.ActorHeight{ActorName: "block_log", Height: 16})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(6), fr2.Height)

	_, ok, err = f.Handle(router.ActorHeight{ActorName: "block_log", Height: 16})
	require.NoError(t, err)
	assert.False(t, ok, "a repeated, non-advancing height does not republish")
}

func TestFrontierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	f1, err := NewFrontier(10, dir)
	require.NoError(t, err)
	_, ok, err := f1.Handle(router.ActorHeight{ActorName: "block_log", Height: 30})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, f1.Close())

	f2, err := NewFrontier(10, dir)
	require.NoError(t, err)
	defer f2.Close()
	assert.Equal(t, uint64(20), f2.watermark)
	assert.True(t, f2.haveWmark)
}
