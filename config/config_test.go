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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/naoina/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indexer.toml")

	partial := struct {
		SinkDSN       string
		KafkaReplicas int16
	}{SinkDSN: "user:pass@tcp(127.0.0.1:3306)/indexer", KafkaReplicas: 3}
	data, err := toml.Marshal(partial)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user:pass@tcp(127.0.0.1:3306)/indexer", got.SinkDSN)
	assert.Equal(t, int16(3), got.KafkaReplicas)
	// fields absent from the file keep Default()'s values
	assert.Equal(t, Default().TransitionFrontierDistance, got.TransitionFrontierDistance)
	assert.Equal(t, Default().ConfirmationDepth, got.ConfirmationDepth)
}

func TestCoordinatorWindowIsWOverFive(t *testing.T) {
	c := Config{TransitionFrontierDistance: 290}
	assert.Equal(t, uint64(58), c.CoordinatorWindow())
}
