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

// This exercises the wiring between the canonicity engine, confirmations
// tracker, best-block tracker and the coordinator actors without any
// external resource (MySQL/Kafka/Redis): the sinks a full New(cfg) opens
// are replaced with an in-memory fake that only needs the real badger
// checkpoint store for the frontier tracker.
package supervisor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/canonicity"
	"github.com/chainindex/pos-indexer/confirmations"
	"github.com/chainindex/pos-indexer/coordinator"
	"github.com/chainindex/pos-indexer/parser"
	"github.com/chainindex/pos-indexer/router"
	"github.com/chainindex/pos-indexer/tracker"
)

type recordingSink struct {
	mu    sync.Mutex
	items []coordinator.CanonicalItem
}

func (r *recordingSink) Handle(ci coordinator.CanonicalItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, ci)
}

func (r *recordingSink) snapshot() []coordinator.CanonicalItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]coordinator.CanonicalItem, len(r.items))
	copy(out, r.items)
	return out
}

func newTestSupervisor(t *testing.T) (*Supervisor, *recordingSink) {
	t.Helper()
	frontier, err := tracker.NewFrontier(290, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { frontier.Close() })

	confirmationsTracker, err := confirmations.New(290, 10)
	require.NoError(t, err)

	rec := &recordingSink{}
	s := &Supervisor{
		classifier:    parser.NewClassifier(1 << 20),
		canonicity:    canonicity.New(290),
		confirmations: confirmationsTracker,
		bestBlock:     tracker.NewBestBlock(),
		frontier:      frontier,
		actors:        make(map[router.ItemKind]*coordinator.Actor),
		sinks:         nil,
	}
	for _, kind := range allKinds {
		s.actors[kind] = coordinator.NewActor(kind, 58, rec, 256)
	}
	return s, rec
}

func TestHandleMainnetBlockEmitsBlockLogOnceCanonical(t *testing.T) {
	s, rec := newTestSupervisor(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, a := range s.actors {
		go a.Run(ctx)
	}

	b := &parser.MainnetBlock{
		Height:                 1,
		StateHash:              "h1",
		PreviousStateHash:      "",
		CoinbaseReceiver:       "receiver",
		CoinbaseRewardNanomina: 720000000000,
	}
	require.NoError(t, s.handleMainnetBlock(ctx, b))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) > 0
	}, time.Second, 5*time.Millisecond)

	var sawCanonical bool
	for _, ci := range rec.snapshot() {
		if ci.Canonical {
			sawCanonical = true
		}
	}
	assert.True(t, sawCanonical, "genesis block should be emitted as canonical")

	best, ok := s.BestBlock()
	require.True(t, ok)
	assert.Equal(t, uint64(1), best.Height)
}

func TestHandleBerkeleyBlockFansOutAncestryOnlyAndReturnsNoErr(t *testing.T) {
	s, rec := newTestSupervisor(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, a := range s.actors {
		go a.Run(ctx)
	}

	b := &parser.BerkeleyBlock{Height: 1, StateHash: "h1"}
	// The unimplemented derivation processors are logged against
	// ErrBerkeleyDerivationUnsupported rather than returned: a berkeley
	// block must still advance canonicity/confirmations/best-block.
	require.NoError(t, s.handleBerkeleyBlock(ctx, b))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "berkeley blocks carry no derived items to coordinate")

	best, ok := s.BestBlock()
	require.True(t, ok)
	assert.Equal(t, uint64(1), best.Height)
}
