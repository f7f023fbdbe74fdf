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

package derive

import "github.com/chainindex/pos-indexer/parser"

// BlockLogFromMainnet produces the single BlockLog per block.
func BlockLogFromMainnet(b *parser.MainnetBlock) BlockLog {
	return BlockLog{
		Height:            b.Height,
		GlobalSlot:        b.GlobalSlot,
		StateHash:         b.StateHash,
		PreviousStateHash: b.PreviousStateHash,
		LastVRFOutput:     b.LastVRFOutput,
		Timestamp:         b.Timestamp,
		IsBerkeleyBlock:   false,
	}
}

// UserCommandLogsFromMainnet produces one UserCommandLog per element of
// user_commands.
func UserCommandLogsFromMainnet(b *parser.MainnetBlock) []UserCommandLog {
	logs := make([]UserCommandLog, 0, len(b.UserCommands))
	for _, uc := range b.UserCommands {
		logs = append(logs, UserCommandLog{
			Height:         b.Height,
			GlobalSlot:     b.GlobalSlot,
			StateHash:      b.StateHash,
			TxnHash:        uc.TxnHash,
			Timestamp:      b.Timestamp,
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
	return logs
}

// CoinbaseLogFromMainnet produces the single Coinbase InternalCommandLog
// per block: amount = coinbase_reward_nanomina, recipient =
// coinbase_receiver.
func CoinbaseLogFromMainnet(b *parser.MainnetBlock) InternalCommandLog {
	return InternalCommandLog{
		Type:           Coinbase,
		Height:         b.Height,
		StateHash:      b.StateHash,
		Timestamp:      b.Timestamp,
		Recipient:      b.CoinbaseReceiver,
		AmountNanomina: b.CoinbaseRewardNanomina,
	}
}

// FeeTransferLogsFromMainnet produces, if excess_block_fees > 0, one
// InternalCommandLog(FeeTransfer) to the coinbase receiver with amount
// excess_block_fees, then one per entry in fee_transfers.
func FeeTransferLogsFromMainnet(b *parser.MainnetBlock) []InternalCommandLog {
	var logs []InternalCommandLog
	if b.ExcessBlockFees > 0 {
		logs = append(logs, InternalCommandLog{
			Type:           FeeTransfer,
			Height:         b.Height,
			StateHash:      b.StateHash,
			Timestamp:      b.Timestamp,
			Recipient:      b.CoinbaseReceiver,
			AmountNanomina: b.ExcessBlockFees,
		})
	}
	for _, ft := range b.FeeTransfers {
		logs = append(logs, InternalCommandLog{
			Type:           FeeTransfer,
			Height:         b.Height,
			StateHash:      b.StateHash,
			Timestamp:      b.Timestamp,
			Recipient:      ft.Recipient,
			AmountNanomina: ft.FeeNanomina,
		})
	}
	return logs
}

// FeeTransferViaCoinbaseLogsFromMainnet produces zero or more
// InternalCommandLog(FeeTransferViaCoinbase) entries, with amount rounded
// to nanomina and source = coinbase_receiver.
func FeeTransferViaCoinbaseLogsFromMainnet(b *parser.MainnetBlock) []InternalCommandLog {
	logs := make([]InternalCommandLog, 0, len(b.FeeTransferViaCoinbase))
	for _, ftc := range b.FeeTransferViaCoinbase {
		logs = append(logs, InternalCommandLog{
			Type:           FeeTransferViaCoinbase,
			Height:         b.Height,
			StateHash:      b.StateHash,
			Timestamp:      b.Timestamp,
			Recipient:      ftc.Receiver,
			AmountNanomina: parser.RoundToNanomina(ftc.Fee),
			Source:         b.CoinbaseReceiver,
		})
	}
	return logs
}

// InternalCommandLogsFromMainnet produces every internal-command log for
// a block across all three processors, in the fixed order coinbase, fee
// transfer, fee-transfer-via-coinbase.
func InternalCommandLogsFromMainnet(b *parser.MainnetBlock) []InternalCommandLog {
	logs := []InternalCommandLog{CoinbaseLogFromMainnet(b)}
	logs = append(logs, FeeTransferLogsFromMainnet(b)...)
	logs = append(logs, FeeTransferViaCoinbaseLogsFromMainnet(b)...)
	return logs
}

// SnarkWorkSummariesFromMainnet produces one SnarkWorkSummary per snark
// work entry.
func SnarkWorkSummariesFromMainnet(b *parser.MainnetBlock) []SnarkWorkSummary {
	summaries := make([]SnarkWorkSummary, 0, len(b.SnarkWork))
	for _, sw := range b.SnarkWork {
		summaries = append(summaries, SnarkWorkSummary{
			Height:      b.Height,
			StateHash:   b.StateHash,
			Timestamp:   b.Timestamp,
			Prover:      sw.Prover,
			FeeNanomina: sw.FeeNanomina,
		})
	}
	return summaries
}
