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

// Package common holds identifier types and small shared utilities used
// across every indexer component.
package common

// StateHash, LedgerHash and TxnHash are opaque byte-string identifiers.
// They carry no semantic meaning beyond byte-wise equality and, for
// StateHash and VRF output, lexicographic ordering.
type StateHash string

type LedgerHash string

type TxnHash string

// Empty reports whether the hash is the zero value, used to detect the
// absence of a previous-state-hash (i.e. a root/genesis block).
func (h StateHash) Empty() bool { return h == "" }

// Less implements the byte-wise lexicographic comparison used for
// VRF-output and state-hash tiebreaks.
func (h StateHash) Less(other StateHash) bool { return h < other }

// VRFOutput is a base64-encoded string whose lexicographic ordering is
// significant for tip-selection tiebreaks.
type VRFOutput string

func (v VRFOutput) Less(other VRFOutput) bool { return v < other }
