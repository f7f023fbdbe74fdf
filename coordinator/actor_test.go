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

package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/derive"
	"github.com/chainindex/pos-indexer/router"
)

type recordingSink struct {
	mu   sync.Mutex
	seen []CanonicalItem
}

func (r *recordingSink) Handle(ci CanonicalItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ci)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestActorForwardsMatchedItemsToSink(t *testing.T) {
	sink := &recordingSink{}
	actor := NewActor(router.KindBlockLog, 100, sink, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	require.NoError(t, actor.Submit(ctx, router.ItemCount{Height: 1, StateHash: "sh", Count: 1}))
	require.NoError(t, actor.Submit(ctx, derive.BlockLog{Height: 1, StateHash: "sh"}))
	require.NoError(t, actor.Submit(ctx, router.BlockCanonicityUpdate{Height: 1, StateHash: "sh", Canonical: true}))

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-actor.Done()
}
