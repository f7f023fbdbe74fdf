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

// Package kvstore mirrors the latest ActorHeight per sink and the
// published Frontier watermark into Redis, for external readers that
// want the indexer's progress without querying the relational sinks.
// It is a best-effort mirror, not a source of truth: the sinks and the
// badger-backed frontier checkpoint remain authoritative.
package kvstore

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"

	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/router"
)

const keyPrefix = "indexer:"

// Mirror writes progress markers to Redis.
type Mirror struct {
	client *redis.Client
	log    *log.Logger
}

// Open connects to a Redis instance at addr.
func Open(addr string) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return &Mirror{client: client, log: log.New("kvstore")}, nil
}

// MirrorActorHeight records the latest height reported by a named sink.
// Failures are logged, not returned: a dropped mirror write must never
// stall the pipeline that produced it.
func (m *Mirror) MirrorActorHeight(a router.ActorHeight) {
	key := keyPrefix + "actor_height:" + a.ActorName
	if err := m.client.Set(key, fmt.Sprintf("%d", a.Height), 0).Err(); err != nil {
		m.log.Warn("failed to mirror actor height", "actor", a.ActorName, "err", err)
	}
}

// MirrorFrontier records the most recently published transition-frontier
// watermark.
func (m *Mirror) MirrorFrontier(f router.Frontier) {
	key := keyPrefix + "frontier"
	if err := m.client.Set(key, fmt.Sprintf("%d", f.Height), 0).Err(); err != nil {
		m.log.Warn("failed to mirror frontier", "err", err)
	}
}

// ActorHeight reads back the last mirrored height for a named sink.
func (m *Mirror) ActorHeight(actorName string) (uint64, bool, error) {
	key := keyPrefix + "actor_height:" + actorName
	var height uint64
	val, err := m.client.Get(key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if _, err := fmt.Sscanf(val, "%d", &height); err != nil {
		return 0, false, err
	}
	return height, true, nil
}

// Close releases the underlying connection pool.
func (m *Mirror) Close() error {
	return m.client.Close()
}
