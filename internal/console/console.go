// Package console provides the readline keypad used by the interactive lock
// commands. A line is either a command (help, quit, or one registered with
// Handle) or a run of keys such as "12345#" that is pressed in order.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

type command struct {
	help string
	run  func(args []string)
}

// Console reads keypad input and commands from the terminal.
type Console struct {
	rl       *readline.Instance
	keypad   *hal.ChannelKeypad
	commands map[string]command
}

// New creates a console pressing keys on keypad.
func New(prompt string, keypad *hal.ChannelKeypad) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{
		rl:       rl,
		keypad:   keypad,
		commands: make(map[string]command),
	}, nil
}

// Handle registers a named command.
func (c *Console) Handle(name, help string, fn func(args []string)) {
	c.commands[name] = command{help: help, run: fn}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run reads lines until ctx is done, EOF, or quit.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		name := strings.ToLower(parts[0])
		switch name {
		case "help", "?":
			c.printHelp()
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
		if cmd, ok := c.commands[name]; ok {
			cmd.run(parts[1:])
			continue
		}

		keys, rejected := ParseKeys(input)
		if len(rejected) > 0 {
			fmt.Fprintf(c.rl.Stdout(), "Ignored keys: %s (type 'help' for commands)\n", string(rejected))
		}
		for _, k := range keys {
			if !c.keypad.Press(k) {
				fmt.Fprintln(c.rl.Stdout(), "Keypad buffer full, key dropped")
				break
			}
		}
	}
}

func (c *Console) printHelp() {
	out := c.rl.Stdout()
	fmt.Fprintln(out, `
Keypad:
  0-9                - Digits
  +                  - Open door
  -                  - Change password
  #                  - Confirm entry
  ^                  - Select
  Several keys may be typed on one line, e.g. 12345#

Commands:`)
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-18s - %s\n", name, c.commands[name].help)
	}
	fmt.Fprintf(out, "  %-18s - %s\n", "help", "Show this help")
	fmt.Fprintf(out, "  %-18s - %s\n", "quit", "Exit")
}

// ParseKeys splits input into keypad symbols. Whitespace is skipped; any
// other character that is not a keypad key is returned in rejected.
func ParseKeys(input string) (keys []wire.Symbol, rejected []rune) {
	for _, r := range input {
		switch {
		case r == ' ' || r == '\t':
		case r < 0x80 && (wire.Symbol(r).IsDigit() || wire.Symbol(r).IsControl()):
			keys = append(keys, wire.Symbol(r))
		default:
			rejected = append(rejected, r)
		}
	}
	return keys, rejected
}
