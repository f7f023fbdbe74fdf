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

// Package metrics exposes the go-metrics gauges/counters/timers
// instrumenting the indexer components: live/pruned tree nodes, reorg
// depth, coordinator window occupancy, and sink insertion latency.
package metrics

import gometrics "github.com/rcrowley/go-metrics"

func registerGauge(name string) gometrics.Gauge {
	return gometrics.GetOrRegisterGauge(name, gometrics.DefaultRegistry)
}

func registerCounter(name string) gometrics.Counter {
	return gometrics.GetOrRegisterCounter(name, gometrics.DefaultRegistry)
}

func registerTimer(name string) gometrics.Timer {
	return gometrics.GetOrRegisterTimer(name, gometrics.DefaultRegistry)
}

// Tree groups the gauges/counters for one blockchain tree instance (the
// canonicity engine's tree or the confirmations tracker's tree).
type Tree struct {
	Nodes  gometrics.Gauge
	Pruned gometrics.Counter
}

func NewTree(name string) *Tree {
	return &Tree{
		Nodes:  registerGauge("tree/" + name + "/nodes"),
		Pruned: registerCounter("tree/" + name + "/pruned"),
	}
}

// Canonicity groups the counters for the canonicity engine.
type Canonicity struct {
	Admitted      gometrics.Counter
	Orphaned      gometrics.Counter
	Extensions    gometrics.Counter
	Reorgs        gometrics.Counter
	ReorgDepth    gometrics.Gauge
	UpdatesEmitted gometrics.Counter
}

func NewCanonicity() *Canonicity {
	return &Canonicity{
		Admitted:       registerCounter("canonicity/admitted"),
		Orphaned:       registerCounter("canonicity/orphaned"),
		Extensions:     registerCounter("canonicity/extensions"),
		Reorgs:         registerCounter("canonicity/reorgs"),
		ReorgDepth:     registerGauge("canonicity/reorg_depth"),
		UpdatesEmitted: registerCounter("canonicity/updates_emitted"),
	}
}

// Confirmations groups the counters for the confirmations tracker.
type Confirmations struct {
	Confirmed gometrics.Counter
}

func NewConfirmations() *Confirmations {
	return &Confirmations{
		Confirmed: registerCounter("confirmations/confirmed"),
	}
}

// Coordinator groups the per-kind gauges for a canonical-items coordinator
// actor.
type Coordinator struct {
	WindowHeights gometrics.Gauge
	Pending       gometrics.Gauge
	Emitted       gometrics.Counter
}

func NewCoordinator(kind string) *Coordinator {
	return &Coordinator{
		WindowHeights: registerGauge("coordinator/" + kind + "/window_heights"),
		Pending:       registerGauge("coordinator/" + kind + "/pending"),
		Emitted:       registerCounter("coordinator/" + kind + "/emitted"),
	}
}

// Sink groups the per-sink gauges/timers for a persistence sink.
type Sink struct {
	Inserted     gometrics.Counter
	Errors       gometrics.Counter
	InsertTime   gometrics.Timer
	Height       gometrics.Gauge
}

func NewSink(name string) *Sink {
	return &Sink{
		Inserted:   registerCounter("sink/" + name + "/inserted"),
		Errors:     registerCounter("sink/" + name + "/errors"),
		InsertTime: registerTimer("sink/" + name + "/insert_time"),
		Height:     registerGauge("sink/" + name + "/height"),
	}
}

// Frontier groups the gauge for the transition-frontier watermark.
type Frontier struct {
	Watermark gometrics.Gauge
}

func NewFrontier() *Frontier {
	return &Frontier{Watermark: registerGauge("frontier/watermark")}
}

// Parser groups the counters for file classification/parsing.
type Parser struct {
	Parsed     gometrics.Counter
	ParseErr   gometrics.Counter
	Duplicates gometrics.Counter
}

func NewParser() *Parser {
	return &Parser{
		Parsed:     registerCounter("parser/parsed"),
		ParseErr:   registerCounter("parser/errors"),
		Duplicates: registerCounter("parser/duplicates"),
	}
}
