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

// Package config holds the indexer's Config struct and its TOML
// load/save path.
package config

import (
	"os"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
)

// Config holds every tunable the indexer's components are built from.
type Config struct {
	// TransitionFrontierDistance (W) bounds how far behind the best tip a
	// node may fall before being pruned from the trees, and sizes the
	// coordinator windows (W/5) passed to CanonicalItemsManager.
	TransitionFrontierDistance uint64

	// ConfirmationDepth (k) is the descendant-depth threshold the
	// confirmations tracker emits at.
	ConfirmationDepth uint8

	// MailboxSize bounds every component's mailbox.
	MailboxSize int

	// ParserDedupCacheBytes sizes the classifier's duplicate-file cache.
	ParserDedupCacheBytes int

	// SinkDSN is a go-sql-driver/mysql data source name.
	SinkDSN string

	// BadgerPath is the directory the frontier tracker checkpoints to.
	BadgerPath string

	// EventLogEnabled turns the auxiliary Kafka event mirror on.
	EventLogEnabled bool
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaGroupID    string
	KafkaReplicas   int16

	// KVStoreEnabled turns the auxiliary Redis watermark mirror on.
	KVStoreEnabled bool
	RedisAddr      string
}

// Default returns a Config with the values spec.md names as defaults
// (W unspecified, k=10) and conservative sizes for everything else.
func Default() Config {
	return Config{
		TransitionFrontierDistance: 290,
		ConfirmationDepth:          10,
		MailboxSize:                4096,
		ParserDedupCacheBytes:      32 << 20,
		BadgerPath:                 "./frontier-checkpoint",
		KafkaTopic:                 "indexer.events",
		KafkaGroupID:               "pos-indexer",
		KafkaReplicas:              1,
	}
}

// Load reads a TOML config file at path, overlaying it onto Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: read file")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: parse toml")
	}
	return cfg, nil
}

// CoordinatorWindow is W/5, the window size spec.md assigns the
// canonical-items coordinators.
func (c Config) CoordinatorWindow() uint64 {
	return c.TransitionFrontierDistance / 5
}
