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

// Package router holds the message variants flowing between components
// and the ToNewBlock ancestry projection. The fan-out of each message to
// its fixed set of consumers lives in package supervisor.
package router

import "github.com/chainindex/pos-indexer/common"

// PrecomputedBlockPath is a raw file path awaiting classification by the
// parser.
type PrecomputedBlockPath struct {
	Path string
}

// MainnetBlockPath and BerkeleyBlockPath carry a path already classified
// by network, for the corresponding format-specific parser.
type MainnetBlockPath struct {
	Path      string
	Height    uint64
	StateHash common.StateHash
}

type BerkeleyBlockPath struct {
	Path      string
	Height    uint64
	StateHash common.StateHash
}

// NewBlock is the minimal ancestry projection consumed by the canonicity
// engine and confirmations tracker.
type NewBlock struct {
	Height            uint64
	StateHash         common.StateHash
	PreviousStateHash common.StateHash
	LastVRFOutput     common.VRFOutput
}

// BlockCanonicityUpdate is the canonicity engine's output.
type BlockCanonicityUpdate struct {
	Height       uint64
	StateHash    common.StateHash
	Canonical    bool
	WasCanonical bool
}

// BestBlock is emitted by the best-block tracker.
type BestBlock struct {
	Height    uint64
	StateHash common.StateHash
}

// BlockConfirmation is emitted once per node by the confirmations tracker.
type BlockConfirmation struct {
	Height        uint64
	StateHash     common.StateHash
	Confirmations uint8
}

// ActorHeight is emitted by a persistence sink after a successful
// insert, reporting the height it just committed.
type ActorHeight struct {
	ActorName string
	Height    uint64
}

// Frontier is published by the transition-frontier tracker.
type Frontier struct {
	Height uint64
}

// ItemKind identifies which per-kind coordinator and sink a derived item
// belongs to.
type ItemKind string

const (
	KindBlockLog    ItemKind = "block_log"
	KindUserCommand ItemKind = "user_command_log"
	KindInternalCmd ItemKind = "internal_command_log"
	KindSnarkWork   ItemKind = "snark_work_summary"
)

// ItemCount tells a canonical-items coordinator how many items of its
// kind to expect for a given block, published up front so the
// coordinator can admit items before or after the count itself arrives.
type ItemCount struct {
	Height    uint64
	StateHash common.StateHash
	Count     uint64
}
