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

package tracker

import (
	"encoding/binary"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
	"github.com/chainindex/pos-indexer/router"
)

var frontierKey = []byte("frontier/watermark")

// Frontier tracks the maximum ActorHeight.Height observed across every
// persistence sink and publishes a new watermark, height-W. With no
// watermark yet, one is published once the maximum reaches W; after that,
// a new one is published whenever the maximum exceeds the last watermark
// by more than W, so once caught up every increase of the maximum
// publishes again.
// The watermark is returned to the caller only: the canonical-items
// coordinators and the confirmations tracker do not receive it and prune
// by their own local windows.
//
// The current watermark is checkpointed to an embedded store and restored
// by NewFrontier, so a restarted tracker never publishes a watermark at or
// below the one it last published.
type Frontier struct {
	mu sync.Mutex

	w uint64

	maxHeight uint64
	haveMax   bool
	watermark uint64
	haveWmark bool

	db  *badger.DB
	log *log.Logger
	met *metrics.Frontier
}

// NewFrontier opens (or creates) a badger checkpoint store at dir and
// restores any previously published watermark from it.
func NewFrontier(w uint64, dir string) (*Frontier, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "tracker: open frontier checkpoint store")
	}

	f := &Frontier{
		w:   w,
		db:  db,
		log: log.New("tracker.frontier"),
		met: metrics.NewFrontier(),
	}

	if wmark, ok, err := f.loadCheckpoint(); err != nil {
		db.Close()
		return nil, err
	} else if ok {
		f.watermark = wmark
		f.haveWmark = true
		f.met.Watermark.Update(int64(wmark))
	}
	return f, nil
}

func (f *Frontier) loadCheckpoint() (uint64, bool, error) {
	var value uint64
	found := false
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(frontierKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			if len(raw) != 8 {
				return errors.New("tracker: corrupt frontier checkpoint")
			}
			value = binary.BigEndian.Uint64(raw)
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, errors.Wrap(err, "tracker: read frontier checkpoint")
	}
	return value, found, nil
}

func (f *Frontier) saveCheckpoint(value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	err := f.db.Update(func(txn *badger.Txn) error {
		return txn.Set(frontierKey, buf)
	})
	return errors.Wrap(err, "tracker: write frontier checkpoint")
}

// Handle records a sink's reported height and returns a new Frontier
// message if the watermark advanced, or (Frontier{}, false) otherwise.
func (f *Frontier) Handle(a router.ActorHeight) (router.Frontier, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.haveMax || a.Height > f.maxHeight {
		f.maxHeight = a.Height
		f.haveMax = true
	}

	if f.haveWmark && f.maxHeight <= f.watermark+f.w {
		return router.Frontier{}, false, nil
	}
	if f.maxHeight < f.w {
		return router.Frontier{}, false, nil
	}

	newWatermark := f.maxHeight - f.w
	if f.haveWmark && newWatermark <= f.watermark {
		return router.Frontier{}, false, nil
	}

	if err := f.saveCheckpoint(newWatermark); err != nil {
		f.log.Error("failed to persist frontier checkpoint", "err", err)
		return router.Frontier{}, false, err
	}
	f.watermark = newWatermark
	f.haveWmark = true
	f.met.Watermark.Update(int64(newWatermark))
	return router.Frontier{Height: newWatermark}, true, nil
}

// Close releases the checkpoint store.
func (f *Frontier) Close() error {
	return f.db.Close()
}
