package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/nox-hq/chatrelay/cli/tui"
)

// runConsole chats with the bot in the terminal, without Discord. Threads
// live in memory and are gone on exit.
func runConsole(args []string) int {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	var (
		common  commonFlags
		logPath string
		name    string
	)
	common.register(fs)
	fs.StringVar(&logPath, "log", "", "write logs to this file (default: discard)")
	fs.StringVar(&name, "name", defaultUserName(), "your display name in the conversation")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "error: console requires an interactive terminal")
		return 2
	}

	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening log file: %v\n", err)
			return 2
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, common.verbose)

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if err := requireCompletionKey(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	st := newStack(cfg, newProvider(cfg), logger, []string{tui.ServerID})
	console := tui.NewConsole(cfg.Persona.Name, name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.New(ctx, console, st.relay), tea.WithAltScreen())
	_, err = p.Run()
	st.logUsage(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func defaultUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "you"
}
