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

// MarshalTOML marshals as TOML.
func (c Config) MarshalTOML() (interface{}, error) {
	type Config struct {
		TransitionFrontierDistance uint64
		ConfirmationDepth          uint8
		MailboxSize                int           `toml:",omitempty"`
		ParserDedupCacheBytes      int           `toml:",omitempty"`
		SinkDSN                    string        `toml:",omitempty"`
		BadgerPath                 string        `toml:",omitempty"`
		EventLogEnabled            bool
		KafkaBrokers               []string `toml:",omitempty"`
		KafkaTopic                 string   `toml:",omitempty"`
		KafkaGroupID               string   `toml:",omitempty"`
		KafkaReplicas              int16    `toml:",omitempty"`
		KVStoreEnabled             bool
		RedisAddr                  string `toml:",omitempty"`
	}
	var enc Config
	enc.TransitionFrontierDistance = c.TransitionFrontierDistance
	enc.ConfirmationDepth = c.ConfirmationDepth
	enc.MailboxSize = c.MailboxSize
	enc.ParserDedupCacheBytes = c.ParserDedupCacheBytes
	enc.SinkDSN = c.SinkDSN
	enc.BadgerPath = c.BadgerPath
	enc.EventLogEnabled = c.EventLogEnabled
	enc.KafkaBrokers = c.KafkaBrokers
	enc.KafkaTopic = c.KafkaTopic
	enc.KafkaGroupID = c.KafkaGroupID
	enc.KafkaReplicas = c.KafkaReplicas
	enc.KVStoreEnabled = c.KVStoreEnabled
	enc.RedisAddr = c.RedisAddr
	return &enc, nil
}

// UnmarshalTOML unmarshals from TOML, leaving any field absent from the
// document at whatever value Config already held (normally Default()'s).
func (c *Config) UnmarshalTOML(unmarshal func(interface{}) error) error {
	type Config struct {
		TransitionFrontierDistance *uint64
		ConfirmationDepth          *uint8
		MailboxSize                *int
		ParserDedupCacheBytes      *int
		SinkDSN                    *string
		BadgerPath                 *string
		EventLogEnabled            *bool
		KafkaBrokers               []string
		KafkaTopic                 *string
		KafkaGroupID               *string
		KafkaReplicas              *int16
		KVStoreEnabled             *bool
		RedisAddr                  *string
	}
	var dec Config
	if err := unmarshal(&dec); err != nil {
		return err
	}
	if dec.TransitionFrontierDistance != nil {
		c.TransitionFrontierDistance = *dec.TransitionFrontierDistance
	}
	if dec.ConfirmationDepth != nil {
		c.ConfirmationDepth = *dec.ConfirmationDepth
	}
	if dec.MailboxSize != nil {
		c.MailboxSize = *dec.MailboxSize
	}
	if dec.ParserDedupCacheBytes != nil {
		c.ParserDedupCacheBytes = *dec.ParserDedupCacheBytes
	}
	if dec.SinkDSN != nil {
		c.SinkDSN = *dec.SinkDSN
	}
	if dec.BadgerPath != nil {
		c.BadgerPath = *dec.BadgerPath
	}
	if dec.EventLogEnabled != nil {
		c.EventLogEnabled = *dec.EventLogEnabled
	}
	if dec.KafkaBrokers != nil {
		c.KafkaBrokers = dec.KafkaBrokers
	}
	if dec.KafkaTopic != nil {
		c.KafkaTopic = *dec.KafkaTopic
	}
	if dec.KafkaGroupID != nil {
		c.KafkaGroupID = *dec.KafkaGroupID
	}
	if dec.KafkaReplicas != nil {
		c.KafkaReplicas = *dec.KafkaReplicas
	}
	if dec.KVStoreEnabled != nil {
		c.KVStoreEnabled = *dec.KVStoreEnabled
	}
	if dec.RedisAddr != nil {
		c.RedisAddr = *dec.RedisAddr
	}
	return nil
}
