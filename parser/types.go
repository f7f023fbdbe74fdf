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

// Package parser classifies block files by their top-level JSON keys and
// extracts typed block payloads.
package parser

import "github.com/chainindex/pos-indexer/common"

// Network identifies the wire format a block file was written in.
type Network string

const (
	Mainnet  Network = "mainnet"
	Berkeley Network = "berkeley"
)

// UserCommand is one entry of a block's ordered user_commands sequence.
type UserCommand struct {
	TxnHash       common.TxnHash
	TxnType       string
	Status        string
	Sender        string
	Receiver      string
	Nonce         uint64
	FeeNanomina   uint64
	FeePayer      string
	AmountNanomina uint64
}

// SnarkWorkEntry is one entry of a block's snark_work sequence.
type SnarkWorkEntry struct {
	Prover      string
	FeeNanomina uint64
}

// FeeTransfer is a {recipient, fee_nanomina} entry.
type FeeTransfer struct {
	Recipient   string
	FeeNanomina uint64
}

// FeeTransferViaCoinbase is a {receiver, fee} entry; fee is in whole
// units and converted to nanomina by the fee-transfer-via-coinbase
// processor.
type FeeTransferViaCoinbase struct {
	Receiver string
	Fee      float64
}

// MainnetBlock is the full block payload the mainnet parser populates.
type MainnetBlock struct {
	Height            uint64
	GlobalSlot        uint64
	StateHash         common.StateHash
	PreviousStateHash common.StateHash
	LastVRFOutput     common.VRFOutput
	Timestamp         uint64

	UserCommands     []UserCommand
	UserCommandCount uint32

	SnarkWork      []SnarkWorkEntry
	SnarkWorkCount uint32

	CoinbaseReceiver       string
	CoinbaseRewardNanomina uint64

	FeeTransfers           []FeeTransfer
	FeeTransferViaCoinbase []FeeTransferViaCoinbase

	ExcessBlockFees uint64
}

// InternalCommandCount returns the number of internal-command-log rows
// this block will produce across all three internal-command processors.
func (b *MainnetBlock) InternalCommandCount() uint32 {
	count := uint32(1) // coinbase, always exactly one
	if b.ExcessBlockFees > 0 {
		count++
	}
	count += uint32(len(b.FeeTransfers))
	count += uint32(len(b.FeeTransferViaCoinbase))
	return count
}

// NewBlockAncestry projects the fields the canonicity/confirmations
// trackers require out of a mainnet block.
func (b *MainnetBlock) NewBlockAncestry() (height uint64, stateHash, previousStateHash common.StateHash, vrf common.VRFOutput) {
	return b.Height, b.StateHash, b.PreviousStateHash, b.LastVRFOutput
}

// BerkeleyBlock is the subset of fields the berkeley parser populates:
// only the ancestry projection the canonicity engine and confirmations
// tracker need. Other derivations are explicitly out of scope for
// berkeley blocks.
type BerkeleyBlock struct {
	Height            uint64
	StateHash         common.StateHash
	PreviousStateHash common.StateHash
	LastVRFOutput     common.VRFOutput
}

func (b *BerkeleyBlock) NewBlockAncestry() (height uint64, stateHash, previousStateHash common.StateHash, vrf common.VRFOutput) {
	return b.Height, b.StateHash, b.PreviousStateHash, b.LastVRFOutput
}
