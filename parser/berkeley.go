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

	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/common"
)

// berkeleyWire mirrors only the {"data", "version"} envelope and the
// ancestry fields nested under "data" that the canonicity engine and
// confirmations tracker need. Other derivations for berkeley blocks are
// out of scope.
type berkeleyWire struct {
	Version int `json:"version"`
	Data    struct {
		Height            uint64 `json:"height"`
		StateHash         string `json:"state_hash"`
		PreviousStateHash string `json:"previous_state_hash"`
		LastVRFOutput     string `json:"last_vrf_output"`
	} `json:"data"`
}

// ParseBerkeley decodes a berkeley block file's ancestry fields only.
func ParseBerkeley(raw []byte) (*BerkeleyBlock, error) {
	var w berkeleyWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(err, "parser: berkeley decode")
	}
	if w.Data.StateHash == "" {
		return nil, errors.New("parser: berkeley block missing state_hash")
	}
	return &BerkeleyBlock{
		Height:            w.Data.Height,
		StateHash:         common.StateHash(w.Data.StateHash),
		PreviousStateHash: common.StateHash(w.Data.PreviousStateHash),
		LastVRFOutput:     common.VRFOutput(w.Data.LastVRFOutput),
	}, nil
}

// ErrBerkeleyDerivationUnsupported marks the berkeley derivations beyond
// the ancestor projection, which do not exist for that format. No function
// returns it: the supervisor logs it at error level for every berkeley
// block, so the skipped derivations are visible instead of silent.
var ErrBerkeleyDerivationUnsupported = errors.New("parser: berkeley block derivation beyond ancestry is not yet implemented")
