// Package main provides the entry point for the federation vote monitor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fedvote-monitor/internal/chain"
	"fedvote-monitor/internal/config"
	"fedvote-monitor/internal/contract"
	"fedvote-monitor/internal/logger"
	"fedvote-monitor/internal/monitor"
	"fedvote-monitor/internal/notify"

	dbpkg "fedvote-monitor/internal/db"

	"github.com/joho/godotenv"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	lookbackFlag = cli.Uint64Flag{
		Name:  "lookback",
		Usage: "blocks to scan back from tip (0 = 3x federation size; members with no block in the window go unseen, raise this for sensitivity)",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "enable verbose logging",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "fedvote-monitor"
	app.Usage = "audits federation voting participation and reports delinquent members"
	app.Flags = []cli.Flag{
		lookbackFlag,
		debugFlag,
	}
	app.Action = runAction
	app.Commands = []cli.Command{
		{
			Name:  "bot",
			Usage: "post the report to Discord on a fixed interval",
			Flags: []cli.Flag{
				lookbackFlag,
				debugFlag,
			},
			Action: botAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the monitor. Shared by both modes.
func setup(cliCtx *cli.Context) (config.Config, *monitor.Monitor, *logger.Logger) {
	// Try to load .env from CWD if present; otherwise use environment as-is
	if _, statErr := os.Stat(".env"); statErr == nil {
		_ = godotenv.Load(".env")
	}

	cfg := config.Load()
	if cliCtx.IsSet(lookbackFlag.Name) {
		cfg.Lookback = cliCtx.Uint64(lookbackFlag.Name)
	}
	if cliCtx.Bool(debugFlag.Name) {
		cfg.Debug = true
	}

	log := logger.New(cfg.Debug)
	log.Printf("config loaded: %s", cfg.DebugString())

	node := chain.NewClient(cfg.NodeAPIURL)
	dao := contract.NewDAO(node, cfg.ContractAddress, cfg.SenderAddress)
	return cfg, monitor.New(node, dao, log, cfg.Lookback), log
}

// runAction executes one audit and prints the report to stdout.
func runAction(cliCtx *cli.Context) error {
	cfg, mon, log := setup(cliCtx)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if gormDB != nil {
		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("DB connected, migrations applied")
	} else {
		log.Printf("DATABASE_URL not provided – persistence disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := mon.Run(ctx)
	if err != nil {
		return err
	}

	if err := dbpkg.RecordRun(gormDB, res); err != nil {
		log.Printf("audit trail write failed: %v", err)
	}

	fmt.Println(res.Report)
	return nil
}

// botAction runs the scheduler: one post immediately, then one per interval.
func botAction(cliCtx *cli.Context) error {
	cfg, mon, log := setup(cliCtx)
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if gormDB != nil {
		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("DB connected, migrations applied")
	} else {
		log.Printf("DATABASE_URL not provided – persistence disabled")
	}

	sink, err := notify.NewDiscordSink(cfg.DiscordToken, cfg.DiscordChannel)
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := notify.NewScheduler(mon, sink, cfg.PostInterval, log)
	sched.OnResult(func(res monitor.Result) {
		if err := dbpkg.RecordRun(gormDB, res); err != nil {
			log.Printf("audit trail write failed: %v", err)
		}
	})

	log.Printf("bot started, posting every %s", cfg.PostInterval)
	if err := sched.Loop(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Println("shutting down...")
	return nil
}
