package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nox-hq/chatrelay/core"
)

func TestWatchPersonaReloads(t *testing.T) {
	path := writeConfig(t, testConfig)
	holder := core.NewPersonaHolder(core.Persona{Name: "Relay", Instructions: "old"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchPersona(ctx, path, holder, logger) }()

	// Give the watcher time to subscribe, then change the file once.
	time.Sleep(300 * time.Millisecond)
	updated := strings.Replace(testConfig, "You are a friendly assistant.", "You are a pirate.", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	deadline := time.Now().Add(reloadDebounce + 3*time.Second)
	for holder.Persona().Instructions != "You are a pirate." {
		if time.Now().After(deadline) {
			t.Fatalf("persona not reloaded, instructions %q", holder.Persona().Instructions)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watchPersona: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchPersona did not stop")
	}
}

func TestWatchPersonaKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, testConfig)
	holder := core.NewPersonaHolder(core.Persona{Name: "Relay", Instructions: "keep me"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watchPersona(ctx, path, holder, logger) }()

	time.Sleep(300 * time.Millisecond)
	if err := os.WriteFile(path, []byte("persona: [not, a, mapping"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	time.Sleep(reloadDebounce + 500*time.Millisecond)

	if got := holder.Persona().Instructions; got != "keep me" {
		t.Fatalf("instructions = %q, want previous persona kept", got)
	}
}
