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

package parser

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/common"
)

// mainnetWire is the on-disk JSON shape for a mainnet precomputed block.
// Only the fields this indexer derives from are decoded; the rest of the
// real schema is explicitly out of scope.
type mainnetWire struct {
	Height            uint64 `json:"height"`
	GlobalSlot        uint64 `json:"global_slot"`
	StateHash         string `json:"state_hash"`
	PreviousStateHash string `json:"previous_state_hash"`
	LastVRFOutput     string `json:"last_vrf_output"`
	Timestamp         uint64 `json:"timestamp"`

	UserCommands []struct {
		TxnHash        string `json:"txn_hash"`
		TxnType        string `json:"txn_type"`
		Status         string `json:"status"`
		Sender         string `json:"sender"`
		Receiver       string `json:"receiver"`
		Nonce          uint64 `json:"nonce"`
		FeeNanomina    uint64 `json:"fee_nanomina"`
		FeePayer       string `json:"fee_payer"`
		AmountNanomina uint64 `json:"amount_nanomina"`
	} `json:"user_commands"`
	UserCommandCount uint32 `json:"user_command_count"`

	SnarkWork []struct {
		Prover      string `json:"prover"`
		FeeNanomina uint64 `json:"fee_nanomina"`
	} `json:"snark_work"`
	SnarkWorkCount uint32 `json:"snark_work_count"`

	CoinbaseReceiver       string `json:"coinbase_receiver"`
	CoinbaseRewardNanomina uint64 `json:"coinbase_reward_nanomina"`

	FeeTransfers []struct {
		Recipient   string `json:"recipient"`
		FeeNanomina uint64 `json:"fee_nanomina"`
	} `json:"fee_transfers"`

	FeeTransferViaCoinbase []struct {
		Receiver string  `json:"receiver"`
		Fee      float64 `json:"fee"`
	} `json:"fee_transfer_via_coinbase"`

	ExcessBlockFees uint64 `json:"excess_block_fees"`
}

// ParseMainnet decodes a mainnet block file, populating every field of
// MainnetBlock.
func ParseMainnet(raw []byte) (*MainnetBlock, error) {
	var w mainnetWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(err, "parser: mainnet decode")
	}
	if w.StateHash == "" {
		return nil, errors.New("parser: mainnet block missing state_hash")
	}

	b := &MainnetBlock{
		Height:                 w.Height,
		GlobalSlot:             w.GlobalSlot,
		StateHash:              common.StateHash(w.StateHash),
		PreviousStateHash:      common.StateHash(w.PreviousStateHash),
		LastVRFOutput:          common.VRFOutput(w.LastVRFOutput),
		Timestamp:              w.Timestamp,
		UserCommandCount:       w.UserCommandCount,
		SnarkWorkCount:         w.SnarkWorkCount,
		CoinbaseReceiver:       w.CoinbaseReceiver,
		CoinbaseRewardNanomina: w.CoinbaseRewardNanomina,
		ExcessBlockFees:        w.ExcessBlockFees,
	}

	for _, uc := range w.UserCommands {
		b.UserCommands = append(b.UserCommands, UserCommand{
			TxnHash:        common.TxnHash(uc.TxnHash),
			TxnType:        uc.TxnType,
			Status:         uc.Status,
			Sender:         uc.Sender,
			Receiver:       uc.Receiver,
			Nonce:          uc.Nonce,
			FeeNanomina:    uc.FeeNanomina,
			FeePayer:       uc.FeePayer,
			AmountNanomina: uc.AmountNanomina,
		})
	}
	for _, sw := range w.SnarkWork {
		b.SnarkWork = append(b.SnarkWork, SnarkWorkEntry{Prover: sw.Prover, FeeNanomina: sw.FeeNanomina})
	}
	for _, ft := range w.FeeTransfers {
		b.FeeTransfers = append(b.FeeTransfers, FeeTransfer{Recipient: ft.Recipient, FeeNanomina: ft.FeeNanomina})
	}
	for _, ftc := range w.FeeTransferViaCoinbase {
		b.FeeTransferViaCoinbase = append(b.FeeTransferViaCoinbase, FeeTransferViaCoinbase{Receiver: ftc.Receiver, Fee: ftc.Fee})
	}
	return b, nil
}

// RoundToNanomina converts a whole-unit fee to nanomina (×10⁹), rounding
// to the nearest integer, for the fee-transfer-via-coinbase processor.
func RoundToNanomina(fee float64) uint64 {
	return uint64(math.Round(fee * 1e9))
}
