// Package console provides a simple interactive command line for a running
// server, mirroring the teacher's own server/console package but against
// emberforge's much smaller command surface (§9).
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/emberforge/core/server"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Console reads commands from an io.Reader (os.Stdin by default) and runs
// them against srv.
type Console struct {
	srv     *server.Server
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console bound to srv. A nil log falls back to
// slog.Default().
func New(srv *server.Server, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{srv: srv, log: log, reader: os.Stdin}
}

// WithReader overrides the console's input source, for testing without
// os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run blocks consuming commands until ctx is cancelled or the reader
// reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if c.execute(line) {
			return
		}
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("Emberforge Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if c.execute(line) {
			return
		}
	}
}

// execute runs line against the command table, returning true if it
// requested a shutdown.
func (c *Console) execute(line string) (shutdown bool) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	if line == "" {
		return false
	}

	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("unknown command: %s\n", name)
		return false
	}
	return cmd.run(c.srv, args)
}

type command struct {
	usage string
	run   func(srv *server.Server, args []string) (shutdown bool)
}

var commands = map[string]command{
	"stop": {
		usage: "/stop",
		run: func(srv *server.Server, _ []string) bool {
			fmt.Println("stopping server...")
			srv.Stop()
			return true
		},
	},
	"tps": {
		usage: "/tps",
		run: func(srv *server.Server, _ []string) bool {
			fmt.Printf("tps: %.2f\n", srv.TPS())
			return false
		},
	},
	"list": {
		usage: "/list",
		run: func(srv *server.Server, _ []string) bool {
			names := srv.PlayerNames()
			fmt.Printf("%d player(s): %s\n", len(names), strings.Join(names, ", "))
			return false
		},
	},
	"whitelist": {
		usage: "/whitelist <on|off|add|remove|list> [name]",
		run:   runWhitelist,
	},
}

func runWhitelist(srv *server.Server, args []string) bool {
	wl := srv.Whitelist()
	if wl == nil {
		fmt.Println("whitelist is not configured")
		return false
	}
	if len(args) == 0 {
		fmt.Println(commands["whitelist"].usage)
		return false
	}
	switch strings.ToLower(args[0]) {
	case "on":
		wl.SetEnabled(true)
		fmt.Println("whitelist enabled")
	case "off":
		wl.SetEnabled(false)
		fmt.Println("whitelist disabled")
	case "list":
		fmt.Println(strings.Join(wl.Players(), ", "))
	case "add":
		if len(args) < 2 {
			fmt.Println("usage: /whitelist add <name>")
			return false
		}
		added, err := wl.Add(args[1])
		if err != nil {
			fmt.Println("error:", err)
		} else if added {
			fmt.Printf("added %s to the whitelist\n", args[1])
		} else {
			fmt.Printf("%s is already whitelisted\n", args[1])
		}
	case "remove":
		if len(args) < 2 {
			fmt.Println("usage: /whitelist remove <name>")
			return false
		}
		removed, err := wl.Remove(args[1])
		if err != nil {
			fmt.Println("error:", err)
		} else if removed {
			fmt.Printf("removed %s from the whitelist\n", args[1])
		} else {
			fmt.Printf("%s was not whitelisted\n", args[1])
		}
	default:
		fmt.Println(commands["whitelist"].usage)
	}
	return false
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	if strings.Contains(doc.TextBeforeCursor(), " ") {
		return nil
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: commands[name].usage})
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}
