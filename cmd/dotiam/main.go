// Dotiam is a text adventure engine over an authorable world graph.
// Usage: dotiam [--version] [--plain] [--script <file>] [--world <path>]
// [--store <backend>] [--run <id>] [--player <name>] [--log <file>]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nathoo/dotiam/cli"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/internal/config"
	"github.com/nathoo/dotiam/internal/logger"
	"github.com/nathoo/dotiam/internal/runs"
	"github.com/nathoo/dotiam/internal/storage"
	"github.com/nathoo/dotiam/loader"
	"github.com/nathoo/dotiam/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: dotiam [--version] [--plain] [--script <file>] [--world <path>] [--store <backend>] [--run <id>] [--player <name>] [--log <file>]"

type options struct {
	plain      bool
	scriptFile string
	runID      string
	logFile    string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var opts options
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--version":
			fmt.Printf("dotiam %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--script", "--world", "--store", "--run", "--player", "--log":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", arg)
				os.Exit(1)
			}
			i++
			val := args[i]
			switch arg {
			case "--script":
				opts.scriptFile = val
			case "--world":
				cfg.WorldPath = val
			case "--store":
				cfg.Store = val
			case "--run":
				opts.runID = val
			case "--player":
				cfg.PlayerName = val
			case "--log":
				opts.logFile = val
			}
		default:
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuiMode := opts.scriptFile == "" && !opts.plain && isTerminal()

	// The TUI owns the screen, so its logs only go to an explicit file.
	var logOut io.Writer = os.Stderr
	if tuiMode {
		logOut = io.Discard
	}
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.Setup(cfg, logOut)

	w, err := loadWorld(cfg.WorldPath)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}
	log.Info("World loaded", "title", w.Title, "nodes", len(w.Nodes), "source", worldSource(cfg.WorldPath))

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	defer store.Close()

	svc := runs.NewService(store, log)
	session, intro, err := cli.NewSession(ctx, svc, w, cfg.PlayerName, opts.runID)
	if err != nil {
		return err
	}
	logger.WithRunID(log, session.RunID).Info("Session started", "store", cfg.Store)

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(session)
		c.In = f
		c.EchoInput = true
		c.Run(ctx, intro)
		return nil
	}

	if !tuiMode {
		cli.New(session).Run(ctx, intro)
		return nil
	}
	return tui.Run(ctx, session, intro)
}

// loadWorld reads the world at path, or the built-in demo when path is empty.
func loadWorld(path string) (*world.World, error) {
	if path == "" {
		return loader.Demo()
	}
	return loader.Load(path)
}

func worldSource(path string) string {
	if path == "" {
		return "demo"
	}
	return path
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
