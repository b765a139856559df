// Command wtmux is a terminal multiplexer: tiled panes, tabs, copy
// mode, and mouse passthrough on one host terminal.
package main

import (
	"fmt"
	"os"

	wtmux "github.com/phroun/wtmux"
	"github.com/phroun/wtmux/cli"
	"github.com/phroun/wtmux/config"
)

const version = "0.5.0"

const usage = `wtmux %s - terminal multiplexer

Usage: wtmux [options]

Options:
  -1, --simple       Single pane, no tab or status bar
  -c, --cmd          Use cmd as the shell
  -p, --powershell   Use Windows PowerShell as the shell
  -7, --pwsh         Use PowerShell 7 (pwsh) as the shell
  -w, --wsl          Use WSL as the shell
  -s, --shell CMD    Use a custom shell command
      --sjis         Use Shift-JIS (codepage 932) instead of UTF-8
  -v, --version      Print version and exit
  -h, --help         Print this help and exit

Shell precedence: command line > config file > built-in default (cmd).
Configuration: %s
`

type cliArgs struct {
	simple   bool
	shell    *wtmux.Shell
	codepage int
}

func parseArgs(args []string) (cliArgs, error) {
	var out cliArgs
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-1", "--simple":
			out.simple = true
		case "-c", "--cmd":
			out.shell = &wtmux.Shell{Kind: wtmux.CmdShell}
		case "-p", "--powershell":
			out.shell = &wtmux.Shell{Kind: wtmux.PowerShell}
		case "-7", "--pwsh":
			out.shell = &wtmux.Shell{Kind: wtmux.Pwsh}
		case "-w", "--wsl":
			out.shell = &wtmux.Shell{Kind: wtmux.Wsl}
		case "-s", "--shell":
			if i+1 >= len(args) {
				return out, fmt.Errorf("%s requires an argument", args[i])
			}
			i++
			out.shell = &wtmux.Shell{Kind: wtmux.CustomShell, Path: args[i]}
		case "--sjis":
			out.codepage = wtmux.CodepageShiftJIS
		case "-v", "--version":
			fmt.Printf("wtmux %s\n", version)
			os.Exit(0)
		case "-h", "--help":
			fmt.Printf(usage, version, config.Path(config.Dir()))
			os.Exit(0)
		default:
			return out, fmt.Errorf("unknown option %q (try --help)", args[i])
		}
	}
	return out, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wtmux: %v\n", err)
		return 2
	}

	dir := config.Dir()
	_ = os.MkdirAll(dir, 0o755)

	cfg, err := config.Load(config.Path(dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "wtmux: %v\n", err)
		return 2
	}

	// Shell precedence: command line > config file > default.
	shell := wtmux.Shell{Kind: wtmux.CmdShell}
	if cfg.Shell != "" {
		shell = shellFromConfig(cfg.Shell)
	}
	if args.shell != nil {
		shell = *args.shell
	}

	codepage := cfg.Codepage
	if args.codepage != 0 {
		codepage = args.codepage
	}

	app, err := cli.NewApp(cli.Options{
		Config:    cfg,
		Shell:     shell,
		Codepage:  codepage,
		Simple:    args.simple,
		ConfigDir: dir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wtmux: %v\n", err)
		return 2
	}

	if app.InitialSpawnFailed() {
		fmt.Fprintf(os.Stderr, "wtmux: failed to start shell\n")
		return 1
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wtmux: %v\n", err)
		return 2
	}
	return 0
}

// shellFromConfig maps the config shell key to a shell spec; an
// unrecognized value is treated as a custom command path.
func shellFromConfig(value string) wtmux.Shell {
	switch value {
	case "cmd", "cmd.exe":
		return wtmux.Shell{Kind: wtmux.CmdShell}
	case "powershell", "powershell.exe":
		return wtmux.Shell{Kind: wtmux.PowerShell}
	case "pwsh", "pwsh.exe":
		return wtmux.Shell{Kind: wtmux.Pwsh}
	case "wsl", "wsl.exe":
		return wtmux.Shell{Kind: wtmux.Wsl}
	default:
		return wtmux.Shell{Kind: wtmux.CustomShell, Path: value}
	}
}
