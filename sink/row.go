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

// Package sink adapts canonical items into upsert operations against a
// relational store, each reporting the persisted height back once
// exactly one row was affected.
package sink

import "github.com/chainindex/pos-indexer/derive"

// Row is a single persistable record: its table, the columns defining
// uniqueness for deduplication, and the full column set to write. Every
// row carries a "timestamp" column; on a conflict the row with the
// greater timestamp wins.
type Row interface {
	TableName() string
	DistinctColumns() []string
	Columns() map[string]interface{}
	Height() uint64
}

// BlockLogRow is the persistable form of a BlockLog.
type BlockLogRow struct {
	Item        derive.BlockLog
	IsCanonical bool
}

func (r BlockLogRow) TableName() string           { return "block_logs" }
func (r BlockLogRow) DistinctColumns() []string   { return []string{"height", "state_hash"} }
func (r BlockLogRow) Height() uint64              { return r.Item.Height }
func (r BlockLogRow) Columns() map[string]interface{} {
	return map[string]interface{}{
		"height":              r.Item.Height,
		"global_slot":         r.Item.GlobalSlot,
		"state_hash":          string(r.Item.StateHash),
		"previous_state_hash": string(r.Item.PreviousStateHash),
		"last_vrf_output":     string(r.Item.LastVRFOutput),
		"timestamp":           r.Item.Timestamp,
		"is_berkeley_block":   r.Item.IsBerkeleyBlock,
		"is_canonical":        r.IsCanonical,
	}
}

// UserCommandLogRow is the persistable form of a UserCommandLog.
type UserCommandLogRow struct {
	Item        derive.UserCommandLog
	IsCanonical bool
}

func (r UserCommandLogRow) TableName() string        { return "user_command_logs" }
func (r UserCommandLogRow) DistinctColumns() []string {
	return []string{"height", "state_hash", "txn_hash"}
}
func (r UserCommandLogRow) Height() uint64 { return r.Item.Height }
func (r UserCommandLogRow) Columns() map[string]interface{} {
	return map[string]interface{}{
		"height":          r.Item.Height,
		"global_slot":     r.Item.GlobalSlot,
		"state_hash":      string(r.Item.StateHash),
		"txn_hash":        string(r.Item.TxnHash),
		"timestamp":       r.Item.Timestamp,
		"txn_type":        r.Item.TxnType,
		"status":          r.Item.Status,
		"sender":          r.Item.Sender,
		"receiver":        r.Item.Receiver,
		"nonce":           r.Item.Nonce,
		"fee_nanomina":    r.Item.FeeNanomina,
		"fee_payer":       r.Item.FeePayer,
		"amount_nanomina": r.Item.AmountNanomina,
		"is_canonical":    r.IsCanonical,
	}
}

// InternalCommandLogRow is the persistable form of an InternalCommandLog.
type InternalCommandLogRow struct {
	Item        derive.InternalCommandLog
	IsCanonical bool
}

func (r InternalCommandLogRow) TableName() string { return "internal_command_logs" }
func (r InternalCommandLogRow) DistinctColumns() []string {
	return []string{"height", "type", "state_hash", "recipient", "amount_nanomina"}
}
func (r InternalCommandLogRow) Height() uint64 { return r.Item.Height }
func (r InternalCommandLogRow) Columns() map[string]interface{} {
	return map[string]interface{}{
		"height":          r.Item.Height,
		"type":            string(r.Item.Type),
		"state_hash":      string(r.Item.StateHash),
		"timestamp":       r.Item.Timestamp,
		"recipient":       r.Item.Recipient,
		"amount_nanomina": r.Item.AmountNanomina,
		"source":          r.Item.Source,
		"is_canonical":    r.IsCanonical,
	}
}

// SnarkWorkSummaryRow is the persistable form of a SnarkWorkSummary.
type SnarkWorkSummaryRow struct {
	Item        derive.SnarkWorkSummary
	IsCanonical bool
}

func (r SnarkWorkSummaryRow) TableName() string { return "snark_work_summaries" }
func (r SnarkWorkSummaryRow) DistinctColumns() []string {
	return []string{"height", "state_hash", "timestamp", "prover", "fee_nanomina"}
}
func (r SnarkWorkSummaryRow) Height() uint64 { return r.Item.Height }
func (r SnarkWorkSummaryRow) Columns() map[string]interface{} {
	return map[string]interface{}{
		"height":       r.Item.Height,
		"state_hash":   string(r.Item.StateHash),
		"timestamp":    r.Item.Timestamp,
		"prover":       r.Item.Prover,
		"fee_nanomina": r.Item.FeeNanomina,
		"is_canonical": r.IsCanonical,
	}
}

// RowFromItem converts a canonical derived item into its persistable row.
// It panics on an unrecognized item type, since the set of item kinds is
// closed and fixed at compile time.
func RowFromItem(item derive.Item, canonical bool) Row {
	switch v := item.(type) {
	case derive.BlockLog:
		return BlockLogRow{Item: v, IsCanonical: canonical}
	case derive.UserCommandLog:
		return UserCommandLogRow{Item: v, IsCanonical: canonical}
	case derive.InternalCommandLog:
		return InternalCommandLogRow{Item: v, IsCanonical: canonical}
	case derive.SnarkWorkSummary:
		return SnarkWorkSummaryRow{Item: v, IsCanonical: canonical}
	default:
		panic("sink: unrecognized derived item type")
	}
}
