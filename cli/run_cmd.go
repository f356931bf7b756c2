package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nox-hq/chatrelay/discord"
)

// runRun connects the bot to Discord and serves until interrupted.
func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var (
		common commonFlags
		watch  bool
	)
	common.register(fs)
	fs.BoolVar(&watch, "watch", false, "reload the persona when the config file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(os.Stderr, common.verbose)

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if err := cfg.RequireDiscord(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if err := requireCompletionKey(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if len(cfg.Discord.AllowedServerIDs) == 0 {
		logger.Warn("no allowed servers configured, every message will be ignored")
	}

	st := newStack(cfg, newProvider(cfg), logger, nil)
	bot, err := discord.New(cfg.Discord.Token, st.relay, st.persona,
		discord.WithLogger(logger),
		discord.WithInviteURL(cfg.Discord.InviteURL()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	if watch {
		g.Go(func() error { return watchPersona(gctx, common.configPath, st.persona, logger) })
	}

	logger.Info("chatrelay starting", "version", version, "default_model", cfg.Completion.DefaultModel,
		"servers", len(cfg.Discord.AllowedServerIDs))
	err = g.Wait()
	st.logUsage(logger)
	if err != nil {
		logger.Error("chatrelay stopped", "error", err)
		return 1
	}
	logger.Info("chatrelay stopped")
	return 0
}
