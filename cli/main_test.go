package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `persona:
  name: Relay
  instructions: You are a friendly assistant.
  example_conversations:
    - messages:
        - user: alice
          text: hi
        - user: Relay
          text: hello!
discord:
  client_id: "12345"
  allowed_server_ids: ["g1"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatrelay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// clearEnv blanks every variable the config reads so the host environment
// does not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DISCORD_BOT_TOKEN", "DISCORD_CLIENT_ID", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL_DEFAULT", "DEFAULT_MODEL", "ALLOWED_SERVER_IDS",
	} {
		t.Setenv(k, "")
	}
}

func TestRun_VersionFlag(t *testing.T) {
	code := run([]string{"--version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for --version, got %d", code)
	}
}

func TestRun_VersionCommand(t *testing.T) {
	code := run([]string{"version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for version command, got %d", code)
	}
}

func TestRun_NoArgs(t *testing.T) {
	code := run([]string{})
	if code != 2 {
		t.Fatalf("expected exit code 2 for no args, got %d", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code := run([]string{"invalid"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
}

func TestRun_RunMissingConfig(t *testing.T) {
	clearEnv(t)
	code := run([]string{"run", "-env", "", "-config", filepath.Join(t.TempDir(), "missing.yaml")})
	if code != 2 {
		t.Fatalf("expected exit code 2 for missing config, got %d", code)
	}
}

func TestRun_RunMissingToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	code := run([]string{"run", "-env", "", "-config", writeConfig(t, testConfig)})
	if code != 2 {
		t.Fatalf("expected exit code 2 without DISCORD_BOT_TOKEN, got %d", code)
	}
}

func TestRun_RunMissingAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	code := run([]string{"run", "-env", "", "-config", writeConfig(t, testConfig)})
	if code != 2 {
		t.Fatalf("expected exit code 2 without OPENAI_API_KEY, got %d", code)
	}
}

func TestRun_RunBadFlag(t *testing.T) {
	code := run([]string{"run", "--no-such-flag"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown flag, got %d", code)
	}
}
