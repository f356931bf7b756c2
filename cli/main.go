// Package main is the entry point for the chatrelay CLI.
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = clean exit, 1 = runtime failure or failed check, 2 = usage or config error.
func run(args []string) int {
	fs := flag.NewFlagSet("chatrelay", flag.ContinueOnError)

	var versionFlag bool
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chatrelay <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run        Connect to Discord and relay conversations\n")
		fmt.Fprintf(os.Stderr, "  console    Chat with the bot locally in the terminal\n")
		fmt.Fprintf(os.Stderr, "  check      Validate configuration and print the invite URL\n")
		fmt.Fprintf(os.Stderr, "  completion Generate shell completions\n")
		fmt.Fprintf(os.Stderr, "  version    Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		printVersion()
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: chatrelay <command> [flags]")
		return 2
	}

	command := remaining[0]
	switch command {
	case "run":
		return runRun(remaining[1:])
	case "console":
		return runConsole(remaining[1:])
	case "check":
		return runCheck(remaining[1:])
	case "completion":
		return runCompletion(remaining[1:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: chatrelay <command> [flags]")
		return 2
	}
}

func printVersion() {
	fmt.Printf("chatrelay %s (commit: %s, built: %s)\n", version, commit, date)
}
