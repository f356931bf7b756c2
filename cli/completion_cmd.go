package main

import (
	"fmt"
	"os"
)

func runCompletion(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: chatrelay completion <bash|zsh|fish|powershell>")
		return 2
	}

	switch shell := args[0]; shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	case "powershell":
		fmt.Print(powershellCompletion)
	default:
		fmt.Fprintf(os.Stderr, "unsupported shell: %s\n", shell)
		fmt.Fprintln(os.Stderr, "Supported shells: bash, zsh, fish, powershell")
		return 2
	}
	return 0
}

const bashCompletion = `# chatrelay bash completion
_chatrelay_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    commands="run console check version completion"

    case "${prev}" in
        chatrelay)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        -config|--config|-env|--env|-log|--log)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "-config -env -verbose -watch -log -name -version" -- "${cur}") )
        return 0
    fi
}
complete -F _chatrelay_completions chatrelay
`

const zshCompletion = `#compdef chatrelay
# chatrelay zsh completion

_chatrelay() {
    local -a commands
    commands=(
        'run:Connect to Discord and relay conversations'
        'console:Chat with the bot locally in the terminal'
        'check:Validate configuration and print the invite URL'
        'version:Print version and exit'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '-version[Print version]' \
        '1:command:->cmds' \
        '*::arg:->args'

    case "$state" in
        cmds)
            _describe 'command' commands
            ;;
        args)
            case "${words[1]}" in
                run)
                    _arguments '-config[Config file]:file:_files' '-env[Env file]:file:_files' \
                        '-verbose[Debug logging]' '-watch[Reload persona on change]'
                    ;;
                console)
                    _arguments '-config[Config file]:file:_files' '-env[Env file]:file:_files' \
                        '-verbose[Debug logging]' '-log[Log file]:file:_files' '-name[Display name]:name:'
                    ;;
                check)
                    _arguments '-config[Config file]:file:_files' '-env[Env file]:file:_files'
                    ;;
                completion)
                    _values 'shell' bash zsh fish powershell
                    ;;
            esac
            ;;
    esac
}

_chatrelay "$@"
`

const fishCompletion = `# chatrelay fish completion
complete -c chatrelay -n '__fish_use_subcommand' -a 'run' -d 'Connect to Discord and relay conversations'
complete -c chatrelay -n '__fish_use_subcommand' -a 'console' -d 'Chat with the bot locally in the terminal'
complete -c chatrelay -n '__fish_use_subcommand' -a 'check' -d 'Validate configuration and print the invite URL'
complete -c chatrelay -n '__fish_use_subcommand' -a 'version' -d 'Print version and exit'
complete -c chatrelay -n '__fish_use_subcommand' -a 'completion' -d 'Generate shell completions'
complete -c chatrelay -o config -d 'Config file' -rF
complete -c chatrelay -o env -d 'Env file' -rF
complete -c chatrelay -o verbose -d 'Debug logging'
complete -c chatrelay -n '__fish_seen_subcommand_from run' -o watch -d 'Reload persona on change'
complete -c chatrelay -n '__fish_seen_subcommand_from console' -o log -d 'Log file' -rF
complete -c chatrelay -n '__fish_seen_subcommand_from console' -o name -d 'Display name'
complete -c chatrelay -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
`

const powershellCompletion = `# chatrelay PowerShell completion
Register-ArgumentCompleter -Native -CommandName chatrelay -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @('run', 'console', 'check', 'version', 'completion')

    $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
