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

package router

import "github.com/chainindex/pos-indexer/common"

// NewBlockOf projects the ancestry fields any parsed block must expose so
// the router can feed it to the canonicity engine and confirmations
// tracker without depending on the parser package directly.
type NewBlockOf interface {
	NewBlockAncestry() (height uint64, stateHash, previousStateHash common.StateHash, vrf common.VRFOutput)
}

// ToNewBlock converts any block exposing ancestry fields into the
// NewBlock message the canonicity engine and confirmations tracker
// consume.
func ToNewBlock(b NewBlockOf) NewBlock {
	height, stateHash, previousStateHash, vrf := b.NewBlockAncestry()
	return NewBlock{
		Height:            height,
		StateHash:         stateHash,
		PreviousStateHash: previousStateHash,
		LastVRFOutput:     vrf,
	}
}
