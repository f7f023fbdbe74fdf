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
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/metrics"
	"github.com/chainindex/pos-indexer/router"
)

// timestampColumn is the column every Row carries; on a conflict the
// write with the greater timestampColumn value wins, regardless of
// arrival order.
const timestampColumn = "timestamp"

// Sink persists Rows into a MySQL table via an upsert that always keeps
// whichever write carries the newer timestamp, and reports the height
// it just committed via ActorHeight.
type Sink struct {
	actorName string
	db        *gorm.DB
	log       *log.Logger
	met       *metrics.Sink
}

// Open connects to dsn (a go-sql-driver/mysql data source name) and
// returns a Sink that reports itself as actorName in every ActorHeight
// it emits.
func Open(actorName, dsn string) (*Sink, error) {
	db, err := gorm.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sink: open database")
	}
	db.DB().SetMaxIdleConns(4)
	return &Sink{
		actorName: actorName,
		db:        db,
		log:       log.New("sink." + actorName),
		met:       metrics.NewSink(actorName),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Insert upserts row and, once exactly one row ends up holding row's
// write, reports the ActorHeight for the router's frontier tracker.
//
// MySQL's ON DUPLICATE KEY UPDATE reports 1 affected row for a fresh
// insert, 2 for an update that actually changed a column, and 0 for an
// update whose values were already identical — all three are a
// successful write of exactly one logical row, so Insert normalizes
// them before reporting.
func (s *Sink) Insert(row Row) (router.ActorHeight, error) {
	start := time.Now()
	query, args := buildUpsertSQL(row.TableName(), row.DistinctColumns(), row.Columns())

	result := s.db.Exec(query, args...)
	s.met.InsertTime.UpdateSince(start)
	if result.Error != nil {
		s.met.Errors.Inc(1)
		return router.ActorHeight{}, errors.Wrapf(result.Error, "sink: upsert into %s", row.TableName())
	}

	affected := result.RowsAffected
	if affected != 0 && affected != 1 && affected != 2 {
		s.met.Errors.Inc(1)
		return router.ActorHeight{}, errors.Errorf("sink: upsert into %s affected %d rows, want 0, 1 or 2", row.TableName(), affected)
	}

	s.met.Inserted.Inc(1)
	s.met.Height.Update(int64(row.Height()))
	height := router.ActorHeight{ActorName: s.actorName, Height: row.Height()}
	s.log.Debug("upserted row", "table", row.TableName(), "height", row.Height(), "affected", affected)
	return height, nil
}

// buildUpsertSQL renders a MySQL INSERT ... ON DUPLICATE KEY UPDATE
// statement for table, using distinct as the unique key the conflict is
// detected on. Every non-distinct column is only overwritten when the
// incoming row's timestamp is greater than or equal to the stored one,
// so a late-arriving, out-of-order write can never clobber a newer one.
func buildUpsertSQL(table string, distinct []string, cols map[string]interface{}) (string, []interface{}) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	isDistinct := make(map[string]bool, len(distinct))
	for _, d := range distinct {
		isDistinct[d] = true
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = cols[name]
	}

	updates := make([]string, 0, len(names))
	for _, name := range names {
		if isDistinct[name] {
			continue
		}
		updates = append(updates, fmt.Sprintf(
			"%s = IF(VALUES(%s) >= %s, VALUES(%s), %s)",
			name, timestampColumn, timestampColumn, name, name,
		))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
	return query, args
}
