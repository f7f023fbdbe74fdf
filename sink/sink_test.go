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

package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/common"
	"github.com/chainindex/pos-indexer/derive"
)

func TestBuildUpsertSQLKeepsNewerTimestampOnConflict(t *testing.T) {
	query, args := buildUpsertSQL(
		"block_logs",
		[]string{"height", "state_hash"},
		map[string]interface{}{
			"height":     uint64(10),
			"state_hash": "abc",
			"timestamp":  uint64(1000),
		},
	)

	assert.Contains(t, query, "INSERT INTO block_logs (height, state_hash, timestamp) VALUES (?, ?, ?)")
	assert.Contains(t, query, "ON DUPLICATE KEY UPDATE")
	// distinct columns are never part of the UPDATE clause
	assert.NotContains(t, query, "height = IF")
	assert.NotContains(t, query, "state_hash = IF")
	assert.Contains(t, query, "timestamp = IF(VALUES(timestamp) >= timestamp, VALUES(timestamp), timestamp)")
	require.Len(t, args, 3)
	assert.Equal(t, uint64(10), args[0])
	assert.Equal(t, "abc", args[1])
	assert.Equal(t, uint64(1000), args[2])
}

func TestBuildUpsertSQLColumnOrderIsDeterministic(t *testing.T) {
	q1, _ := buildUpsertSQL("t", []string{"a"}, map[string]interface{}{"a": 1, "b": 2, "c": 3, "timestamp": 4})
	q2, _ := buildUpsertSQL("t", []string{"a"}, map[string]interface{}{"c": 3, "a": 1, "timestamp": 4, "b": 2})
	assert.Equal(t, q1, q2)
}

func TestRowFromItemDispatchesByConcreteType(t *testing.T) {
	row := RowFromItem(derive.BlockLog{Height: 4, StateHash: common.StateHash("h4")}, true)
	blockLog, ok := row.(BlockLogRow)
	require.True(t, ok)
	assert.True(t, blockLog.IsCanonical)
	assert.Equal(t, []string{"height", "state_hash"}, blockLog.DistinctColumns())

	row = RowFromItem(derive.SnarkWorkSummary{Height: 4, StateHash: common.StateHash("h4"), Prover: "p"}, false)
	snark, ok := row.(SnarkWorkSummaryRow)
	require.True(t, ok)
	assert.False(t, snark.IsCanonical)
	assert.Equal(t, "p", snark.Item.Prover)
}

func TestRowFromItemPanicsOnUnknownType(t *testing.T) {
	assert.Panics(t, func() {
		RowFromItem(unknownItem{}, true)
	})
}

type unknownItem struct{}

func (unknownItem) Height_() uint64              { return 0 }
func (unknownItem) StateHash_() common.StateHash { return "" }
