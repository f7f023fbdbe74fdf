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

// Package supervisor wires every component together and implements the
// static message fan-out table: each message variant is delivered to a
// fixed set of consumers, in the fixed order the table declares.
package supervisor

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/canonicity"
	"github.com/chainindex/pos-indexer/confirmations"
	"github.com/chainindex/pos-indexer/config"
	"github.com/chainindex/pos-indexer/coordinator"
	"github.com/chainindex/pos-indexer/derive"
	"github.com/chainindex/pos-indexer/eventlog"
	"github.com/chainindex/pos-indexer/kvstore"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/parser"
	"github.com/chainindex/pos-indexer/router"
	"github.com/chainindex/pos-indexer/sink"
	"github.com/chainindex/pos-indexer/tracker"
)

// Supervisor owns one instance of every component and fans out messages
// between them per spec's closed routing table. It is itself the
// PrecomputedBlockPath/MainnetBlockPath/BerkeleyBlockPath agent: file
// classification and parsing run inline in SubmitPath, the same
// cooperative-scheduling handler-runs-to-completion discipline every
// other component follows.
type Supervisor struct {
	cfg config.Config

	classifier    *parser.Classifier
	canonicity    *canonicity.Engine
	confirmations *confirmations.Tracker
	bestBlock     *tracker.BestBlock
	frontier      *tracker.Frontier

	actors map[router.ItemKind]*coordinator.Actor
	sinks  map[router.ItemKind]*sink.Sink

	events *eventlog.Publisher
	kv     *kvstore.Mirror

	// OnConfirmation, if set, is called for every BlockConfirmation the
	// confirmations tracker emits. It is spec's only terminal C6 output:
	// the routing table does not forward it anywhere further, so there is
	// nothing to wire it to beyond an optional observer.
	OnConfirmation func(router.BlockConfirmation)

	log *log.Logger
}

// New wires every component from cfg. Sinks are opened eagerly; the
// event log and KV mirror are opened only if cfg enables them.
func New(cfg config.Config) (*Supervisor, error) {
	confirmationsTracker, err := confirmations.New(cfg.TransitionFrontierDistance, cfg.ConfirmationDepth)
	if err != nil {
		return nil, errors.Wrap(err, "supervisor: build confirmations tracker")
	}

	s := &Supervisor{
		cfg:           cfg,
		classifier:    parser.NewClassifier(cfg.ParserDedupCacheBytes),
		canonicity:    canonicity.New(cfg.TransitionFrontierDistance),
		confirmations: confirmationsTracker,
		bestBlock:     tracker.NewBestBlock(),
		actors:        make(map[router.ItemKind]*coordinator.Actor),
		sinks:         make(map[router.ItemKind]*sink.Sink),
		log:           log.New("supervisor"),
	}

	frontier, err := tracker.NewFrontier(cfg.TransitionFrontierDistance, cfg.BadgerPath)
	if err != nil {
		return nil, errors.Wrap(err, "supervisor: open frontier tracker")
	}
	s.frontier = frontier

	for _, kind := range allKinds {
		sk, err := sink.Open(string(kind), cfg.SinkDSN)
		if err != nil {
			return nil, errors.Wrapf(err, "supervisor: open sink %s", kind)
		}
		s.sinks[kind] = sk
		s.actors[kind] = coordinator.NewActor(kind, cfg.CoordinatorWindow(), &sinkHandler{
			kind: kind,
			sup:  s,
		}, cfg.MailboxSize)
	}

	if cfg.EventLogEnabled {
		pub, err := eventlog.Open(cfg.KafkaGroupID, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaReplicas)
		if err != nil {
			return nil, errors.Wrap(err, "supervisor: open event log")
		}
		s.events = pub
	}
	if cfg.KVStoreEnabled {
		mirror, err := kvstore.Open(cfg.RedisAddr)
		if err != nil {
			return nil, errors.Wrap(err, "supervisor: open kv mirror")
		}
		s.kv = mirror
	}

	return s, nil
}

var allKinds = []router.ItemKind{
	router.KindBlockLog,
	router.KindUserCommand,
	router.KindInternalCmd,
	router.KindSnarkWork,
}

// Start launches every coordinator actor's mailbox-draining goroutine and
// returns without waiting for them; cancelling ctx stops them.
func (s *Supervisor) Start(ctx context.Context) {
	for _, a := range s.actors {
		go a.Run(ctx)
	}
}

// Close releases every open resource. Safe to call after canceling the
// context passed to Start.
func (s *Supervisor) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(s.frontier.Close())
	for _, sk := range s.sinks {
		record(sk.Close())
	}
	if s.events != nil {
		record(s.events.Close())
	}
	if s.kv != nil {
		record(s.kv.Close())
	}
	return firstErr
}

// SubmitPath reads path from disk, classifies it, and feeds it through
// the full derivation/canonicity/confirmation pipeline. This is the
// router's PrecomputedBlockPath handler: file discovery itself is out of
// scope, so callers push paths in (cmd/indexer submits each path given
// with its -block flag).
func (s *Supervisor) SubmitPath(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "supervisor: read block file")
	}

	info, err := s.classifier.Classify(path, raw)
	if err != nil {
		if errors.Is(err, parser.ErrDuplicateFile) {
			s.log.Debug("skipping duplicate block file", "path", path)
			return nil
		}
		return errors.Wrap(err, "supervisor: classify block file")
	}

	switch info.Network {
	case parser.Mainnet:
		block, err := parser.ParseMainnet(raw)
		if err != nil {
			return errors.Wrap(err, "supervisor: parse mainnet block")
		}
		return s.handleMainnetBlock(ctx, block)
	case parser.Berkeley:
		block, err := parser.ParseBerkeley(raw)
		if err != nil {
			return errors.Wrap(err, "supervisor: parse berkeley block")
		}
		return s.handleBerkeleyBlock(ctx, block)
	default:
		return errors.Errorf("supervisor: unrecognized network %q", info.Network)
	}
}

// handleBerkeleyBlock fans a BerkeleyBlock out to the canonicity engine
// and confirmations tracker. The routing table also names the block-log,
// user-command, internal-command and snark-work processors as consumers
// of BerkeleyBlock, but none of them are implemented for this format yet;
// rather than silently producing nothing, every skipped derivation is
// logged against ErrBerkeleyDerivationUnsupported so the gap is visible
// instead of looking like a zero-activity block.
func (s *Supervisor) handleBerkeleyBlock(ctx context.Context, b *parser.BerkeleyBlock) error {
	newBlock := router.ToNewBlock(b)
	if err := s.fanOutNewBlock(ctx, newBlock); err != nil {
		return err
	}
	s.log.Error("skipping derivation for berkeley block", "height", b.Height, "stateHash", b.StateHash, "err", parser.ErrBerkeleyDerivationUnsupported)
	return nil
}

// handleMainnetBlock fans a MainnetBlock out to the canonicity engine,
// confirmations tracker, and every derivation processor, submitting item
// counts and derived items to the matching coordinator actors.
func (s *Supervisor) handleMainnetBlock(ctx context.Context, b *parser.MainnetBlock) error {
	if err := s.fanOutNewBlock(ctx, router.ToNewBlock(b)); err != nil {
		return err
	}

	counts := map[router.ItemKind]uint64{
		router.KindBlockLog:    1,
		router.KindUserCommand: uint64(b.UserCommandCount),
		router.KindSnarkWork:   uint64(b.SnarkWorkCount),
		router.KindInternalCmd: uint64(b.InternalCommandCount()),
	}
	for kind, n := range counts {
		if err := s.submitToActor(ctx, kind, router.ItemCount{Height: b.Height, StateHash: b.StateHash, Count: n}); err != nil {
			return err
		}
	}

	if err := s.submitItems(ctx, router.KindBlockLog, derive.BlockLogFromMainnet(b)); err != nil {
		return err
	}
	if err := s.submitItems(ctx, router.KindUserCommand, derive.UserCommandLogsFromMainnet(b)...); err != nil {
		return err
	}
	if err := s.submitItems(ctx, router.KindInternalCmd, derive.InternalCommandLogsFromMainnet(b)...); err != nil {
		return err
	}
	if err := s.submitItems(ctx, router.KindSnarkWork, derive.SnarkWorkSummariesFromMainnet(b)...); err != nil {
		return err
	}
	return nil
}

// fanOutNewBlock delivers a NewBlock ancestry projection to the
// canonicity engine and confirmations tracker, then forwards every
// resulting BlockCanonicityUpdate to the best-block tracker and all four
// coordinator actors, in that order.
func (s *Supervisor) fanOutNewBlock(ctx context.Context, b router.NewBlock) error {
	if s.OnConfirmation != nil {
		for _, c := range s.confirmations.Handle(b) {
			s.OnConfirmation(c)
		}
	} else {
		s.confirmations.Handle(b)
	}

	updates := s.canonicity.Handle(b)
	for _, u := range updates {
		s.bestBlock.Handle(u)
		for _, kind := range allKinds {
			if err := s.submitToActor(ctx, kind, u); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Supervisor) submitItems(ctx context.Context, kind router.ItemKind, items ...derive.Item) error {
	for _, item := range items {
		if err := s.submitToActor(ctx, kind, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) submitToActor(ctx context.Context, kind router.ItemKind, msg interface{}) error {
	a, ok := s.actors[kind]
	if !ok {
		return errors.Errorf("supervisor: no coordinator actor for kind %s", kind)
	}
	return a.Submit(ctx, msg)
}

// BestBlock exposes the current best block, for status reporting.
func (s *Supervisor) BestBlock() (router.BestBlock, bool) {
	return s.bestBlock.Current()
}

// sinkHandler adapts a Supervisor + item kind into a coordinator.Sink:
// it persists the item, then forwards the resulting ActorHeight to the
// frontier tracker and the auxiliary mirrors.
type sinkHandler struct {
	kind router.ItemKind
	sup  *Supervisor
}

func (h *sinkHandler) Handle(ci coordinator.CanonicalItem) {
	row := sink.RowFromItem(ci.Item, ci.Canonical)
	sk := h.sup.sinks[h.kind]

	height, err := sk.Insert(row)
	if err != nil {
		h.sup.log.Error("sink insert failed", "kind", h.kind, "err", err)
		return
	}

	frontier, published, err := h.sup.frontier.Handle(height)
	if err != nil {
		h.sup.log.Error("frontier checkpoint failed", "kind", h.kind, "err", err)
	}
	if h.sup.events != nil {
		h.sup.events.Publish(string(ci.Item.StateHash_()), row)
	}
	if h.sup.kv != nil {
		h.sup.kv.MirrorActorHeight(height)
		if published {
			h.sup.kv.MirrorFrontier(frontier)
		}
	}
}
