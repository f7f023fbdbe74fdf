// Copyright 2024 The pos-indexer Authors
// This file is part of pos-indexer.
//
// pos-indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pos-indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pos-indexer. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli"

	"github.com/chainindex/pos-indexer/config"
	"github.com/chainindex/pos-indexer/log"
	"github.com/chainindex/pos-indexer/router"
	"github.com/chainindex/pos-indexer/supervisor"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML config file; flags below override it",
	}
	sinkDSNFlag = cli.StringFlag{
		Name:  "sink-dsn",
		Usage: "go-sql-driver/mysql data source name for the persistence sinks",
	}
	badgerPathFlag = cli.StringFlag{
		Name:  "frontier-checkpoint-dir",
		Usage: "Directory the transition-frontier tracker checkpoints to",
	}
	windowFlag = cli.Uint64Flag{
		Name:  "w",
		Usage: "Transition-frontier distance bounding the trees and coordinator windows",
	}
	confirmationDepthFlag = cli.UintFlag{
		Name:  "k",
		Usage: "Descendant-depth threshold the confirmations tracker emits at",
	}
	eventLogFlag = cli.BoolFlag{
		Name:  "eventlog",
		Usage: "Mirror every persisted item to the Kafka event log",
	}
	kafkaBrokersFlag = cli.StringSliceFlag{
		Name:  "kafka-broker",
		Usage: "Kafka broker address (repeatable)",
	}
	kvstoreFlag = cli.BoolFlag{
		Name:  "kvstore",
		Usage: "Mirror ActorHeight/Frontier watermarks into Redis",
	}
	redisAddrFlag = cli.StringFlag{
		Name:  "redis-addr",
		Usage: "Redis address for the watermark mirror",
	}
	devLogFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "Use human-readable development logging instead of JSON",
	}
	pathsFlag = cli.StringSliceFlag{
		Name:  "block",
		Usage: "Path to a precomputed block file to ingest (repeatable)",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pos-indexer"
	app.Usage = "blockchain indexer: ingests precomputed block files, resolves canonicity, persists derived views"
	app.Flags = []cli.Flag{
		configFlag,
		sinkDSNFlag,
		badgerPathFlag,
		windowFlag,
		confirmationDepthFlag,
		eventLogFlag,
		kafkaBrokersFlag,
		kvstoreFlag,
		redisAddrFlag,
		devLogFlag,
		pathsFlag,
	}
	app.Action = run
	return app
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	if v := ctx.String(sinkDSNFlag.Name); v != "" {
		cfg.SinkDSN = v
	}
	if v := ctx.String(badgerPathFlag.Name); v != "" {
		cfg.BadgerPath = v
	}
	if v := ctx.Uint64(windowFlag.Name); v != 0 {
		cfg.TransitionFrontierDistance = v
	}
	if v := ctx.Uint(confirmationDepthFlag.Name); v != 0 {
		cfg.ConfirmationDepth = uint8(v)
	}
	if ctx.Bool(eventLogFlag.Name) {
		cfg.EventLogEnabled = true
	}
	if brokers := ctx.StringSlice(kafkaBrokersFlag.Name); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}
	if ctx.Bool(kvstoreFlag.Name) {
		cfg.KVStoreEnabled = true
	}
	if v := ctx.String(redisAddrFlag.Name); v != "" {
		cfg.RedisAddr = v
	}
	return cfg, nil
}

func run(ctx *cli.Context) error {
	log.SetDevelopment(ctx.Bool(devLogFlag.Name))
	logger := log.New("cmd.indexer")

	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("load config: %v", err), 1)
	}

	sup, err := supervisor.New(cfg)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("wire supervisor: %v", err), 1)
	}
	sup.OnConfirmation = func(c router.BlockConfirmation) {
		logger.Info("block confirmed", "height", c.Height, "stateHash", c.StateHash, "confirmations", c.Confirmations)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sup.Start(runCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	for _, path := range ctx.StringSlice(pathsFlag.Name) {
		abs, err := filepath.Abs(path)
		if err != nil {
			logger.Error("invalid block path", "path", path, "err", err)
			continue
		}
		if err := sup.SubmitPath(runCtx, abs); err != nil {
			logger.Error("failed to submit block path", "path", abs, "err", err)
		}
	}

	<-runCtx.Done()
	if err := sup.Close(); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
