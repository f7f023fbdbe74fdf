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

	"github.com/chainindex/pos-indexer/derive"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/router"
)

// Sink receives items once they have been paired with a canonicity
// decision.
type Sink interface {
	Handle(CanonicalItem)
}

// Actor owns one Manager for a single derived-item kind and drains a
// single mailbox, so every message touching that kind's join table is
// handled strictly in arrival order.
type Actor struct {
	kind    router.ItemKind
	mgr     *Manager
	sink    Sink
	mailbox chan interface{}
	log     *log.Logger
	done    chan struct{}
}

// NewActor builds an actor for kind, owning a Manager bounded to window
// heights, forwarding matched items to sink. mailboxSize bounds how many
// unprocessed messages may queue before Submit blocks.
func NewActor(kind router.ItemKind, window uint64, sink Sink, mailboxSize int) *Actor {
	return &Actor{
		kind:    kind,
		mgr:     NewManager(window, string(kind)),
		sink:    sink,
		mailbox: make(chan interface{}, mailboxSize),
		log:     log.New("coordinator.actor." + string(kind)),
		done:    make(chan struct{}),
	}
}

// Submit enqueues a message for the actor's mailbox, blocking if it is
// full. Accepted message types: router.ItemCount, router.BlockCanonicityUpdate,
// and any derive.Item belonging to this actor's kind.
func (a *Actor) Submit(ctx context.Context, msg interface{}) error {
	select {
	case a.mailbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the mailbox until ctx is cancelled. It is intended to run in
// its own goroutine.
func (a *Actor) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.mailbox:
			a.handle(msg)
		}
	}
}

// Done reports when Run has returned.
func (a *Actor) Done() <-chan struct{} { return a.done }

func (a *Actor) handle(msg interface{}) {
	switch m := msg.(type) {
	case router.ItemCount:
		a.mgr.AddItemsCount(m.Height, m.StateHash, m.Count)
		a.emit(m.Height)
	case router.BlockCanonicityUpdate:
		a.mgr.AddBlockCanonicityUpdate(m)
		a.emit(m.Height)
	case derive.Item:
		a.mgr.AddItem(m)
		a.emit(m.Height_())
	default:
		a.log.Warn("unrecognized message, dropping", "kind", a.kind, "type", msg)
	}
	a.mgr.Prune()
}

func (a *Actor) emit(height uint64) {
	for _, ci := range a.mgr.GetUpdates(height) {
		a.sink.Handle(ci)
	}
}
