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

// Package derive implements the stateless derivation processors that turn
// a block payload into derived-item logs.
package derive

import "github.com/chainindex/pos-indexer/common"

// BlockLog is the header-level projection of a block.
type BlockLog struct {
	Height            uint64
	GlobalSlot        uint64
	StateHash         common.StateHash
	PreviousStateHash common.StateHash
	LastVRFOutput     common.VRFOutput
	Timestamp         uint64
	IsBerkeleyBlock   bool
}

func (b BlockLog) Height_() uint64              { return b.Height }
func (b BlockLog) StateHash_() common.StateHash { return b.StateHash }

// UserCommandLog is one user command entry.
type UserCommandLog struct {
	Height         uint64
	GlobalSlot     uint64
	StateHash      common.StateHash
	TxnHash        common.TxnHash
	Timestamp      uint64
	TxnType        string
	Status         string
	Sender         string
	Receiver       string
	Nonce          uint64
	FeeNanomina    uint64
	FeePayer       string
	AmountNanomina uint64
}

func (u UserCommandLog) Height_() uint64              { return u.Height }
func (u UserCommandLog) StateHash_() common.StateHash { return u.StateHash }

// InternalCommandKind distinguishes the three internal-command flavors.
type InternalCommandKind string

const (
	Coinbase               InternalCommandKind = "Coinbase"
	FeeTransfer            InternalCommandKind = "FeeTransfer"
	FeeTransferViaCoinbase InternalCommandKind = "FeeTransferViaCoinbase"
)

// InternalCommandLog is one internal-command entry.
type InternalCommandLog struct {
	Type            InternalCommandKind
	Height          uint64
	StateHash       common.StateHash
	Timestamp       uint64
	Recipient       string
	AmountNanomina  uint64
	Source          string // only set for FeeTransferViaCoinbase
}

func (i InternalCommandLog) Height_() uint64              { return i.Height }
func (i InternalCommandLog) StateHash_() common.StateHash { return i.StateHash }

// SnarkWorkSummary is one snark-work entry.
type SnarkWorkSummary struct {
	Height      uint64
	StateHash   common.StateHash
	Timestamp   uint64
	Prover      string
	FeeNanomina uint64
}

func (s SnarkWorkSummary) Height_() uint64              { return s.Height }
func (s SnarkWorkSummary) StateHash_() common.StateHash { return s.StateHash }

// Item is the common shape the canonical-items coordinator needs from any
// derived item: its height and owning block's state hash.
type Item interface {
	Height_() uint64
	StateHash_() common.StateHash
}
