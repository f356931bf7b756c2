package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// runCheck validates the configuration and environment without connecting
// anywhere.
func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	fmt.Printf("[config] %s\n", common.configPath)
	fmt.Printf("[persona] %s (%d example conversations)\n", cfg.Persona.Name, len(cfg.Persona.ExampleConversations))
	fmt.Printf("[models] default %s, titles %s\n", cfg.Completion.DefaultModel, cfg.Completion.TitleModel)
	if len(cfg.Discord.AllowedServerIDs) > 0 {
		fmt.Printf("[servers] %s\n", strings.Join(cfg.Discord.AllowedServerIDs, ", "))
	}

	var problems []string
	if err := cfg.RequireDiscord(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := requireCompletionKey(cfg); err != nil {
		problems = append(problems, err.Error())
	}
	if len(cfg.Discord.AllowedServerIDs) == 0 {
		problems = append(problems, "no allowed servers: set discord.allowed_server_ids or ALLOWED_SERVER_IDS")
	}

	if url := cfg.Discord.InviteURL(); url != "" {
		fmt.Printf("[invite] %s\n", url)
	} else {
		fmt.Println("[invite] set DISCORD_CLIENT_ID to print the invite URL")
	}

	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "problem: %s\n", p)
	}
	if len(problems) > 0 {
		return 1
	}
	fmt.Println("[done] configuration ok")
	return 0
}
