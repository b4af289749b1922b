// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the dotiam engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLI handles line-oriented terminal interaction with the player.
type CLI struct {
	Session   *Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI over a session, reading stdin and writing stdout.
func New(s *Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run prints intro, then loops: prompt → input → dispatch → output. It
// returns when input ends or the player quits.
func (c *CLI) Run(ctx context.Context, intro []string) {
	for _, line := range intro {
		c.printLine(line)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		reply := c.Session.Exec(ctx, input)
		c.printReply(reply)
		if reply.Quit {
			return
		}
	}
}

func (c *CLI) printReply(r Reply) {
	for _, line := range r.Lines {
		if r.System {
			c.printSystem(line)
		} else {
			c.printLine(line)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
